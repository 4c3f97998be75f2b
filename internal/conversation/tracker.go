// Package conversation keeps per-user short-term context: bounded message
// history plus the referents needed to resolve pronouns and ordinals.
package conversation

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	defaultHistoryLimit = 20
	defaultIdleWindow   = 30 * time.Minute
)

// Entity is a lightweight reference to a catalog item.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is one exchanged turn.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type userContext struct {
	history      []Message
	lastEntity   *Entity
	lastList     []Entity
	pending      []Entity
	lastActivity time.Time
}

// Tracker owns all per-user conversation contexts. Idle contexts are purged
// lazily on next access rather than by a background sweep.
type Tracker struct {
	mu           sync.Mutex
	historyLimit int
	idleWindow   time.Duration
	now          func() time.Time
	contexts     map[string]*userContext
}

func NewTracker(historyLimit int, idleWindow time.Duration) *Tracker {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	if idleWindow <= 0 {
		idleWindow = defaultIdleWindow
	}
	return &Tracker{
		historyLimit: historyLimit,
		idleWindow:   idleWindow,
		now:          time.Now,
		contexts:     make(map[string]*userContext),
	}
}

// SetClock overrides the time source, for tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// contextLocked returns the live context for a user, discarding it first if
// it has been idle past the window.
func (t *Tracker) contextLocked(userID string) *userContext {
	now := t.now()
	ctx, ok := t.contexts[userID]
	if ok && now.Sub(ctx.lastActivity) > t.idleWindow {
		delete(t.contexts, userID)
		ok = false
	}
	if !ok {
		ctx = &userContext{}
		t.contexts[userID] = ctx
	}
	ctx.lastActivity = now
	return ctx
}

// Record appends a turn to the user's history, evicting the oldest entry
// once the bound is exceeded.
func (t *Tracker) Record(userID, role, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx := t.contextLocked(userID)
	ctx.history = append(ctx.history, Message{Role: role, Text: text, At: t.now()})
	if len(ctx.history) > t.historyLimit {
		ctx.history = append([]Message(nil), ctx.history[len(ctx.history)-t.historyLimit:]...)
	}
}

// Recent returns up to maxMessages of the user's history, oldest first.
func (t *Tracker) Recent(userID string, maxMessages int) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx := t.contextLocked(userID)
	h := ctx.history
	if maxMessages > 0 && maxMessages < len(h) {
		h = h[len(h)-maxMessages:]
	}
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

// SetLastEntity records the most recently referenced entity.
func (t *Tracker) SetLastEntity(userID string, e Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx := t.contextLocked(userID)
	c := e
	ctx.lastEntity = &c
}

// SetLastList records the list most recently rendered to the user, enabling
// "pick number K" follow-ups.
func (t *Tracker) SetLastList(userID string, list []Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx := t.contextLocked(userID)
	ctx.lastList = append([]Entity(nil), list...)
}

// SetPendingCandidates stores a disambiguation list awaiting the user's pick.
func (t *Tracker) SetPendingCandidates(userID string, list []Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx := t.contextLocked(userID)
	ctx.pending = append([]Entity(nil), list...)
	ctx.lastList = append([]Entity(nil), list...)
}

// HasPendingCandidates reports whether a disambiguation pick is outstanding.
func (t *Tracker) HasPendingCandidates(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.contextLocked(userID).pending) > 0
}

// ClearPendingCandidates drops an outstanding disambiguation list.
func (t *Tracker) ClearPendingCandidates(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.contextLocked(userID).pending = nil
}

var (
	ordinalRe  = regexp.MustCompile(`^(?:(?:number|item|no\.?|#)\s*)?(\d+)$`)
	pronounSet = map[string]bool{
		"it": true, "this": true, "that": true,
		"this one": true, "that one": true,
	}
)

// ResolveReferent maps an ordinal or pronoun phrase onto a known entity.
// Ordinals resolve against the last shown list (1-based); pronouns resolve
// to the last referenced entity. A successful resolution clears any pending
// disambiguation and becomes the new last referenced entity. Explicit names
// return nil so the caller can go to the entity resolver.
func (t *Tracker) ResolveReferent(userID, text string) *Entity {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx := t.contextLocked(userID)

	in := strings.ToLower(strings.TrimSpace(text))
	if m := ordinalRe.FindStringSubmatch(in); m != nil {
		idx := 0
		for _, ch := range m[1] {
			idx = idx*10 + int(ch-'0')
		}
		list := ctx.pending
		if len(list) == 0 {
			list = ctx.lastList
		}
		if idx < 1 || idx > len(list) {
			return nil
		}
		e := list[idx-1]
		ctx.pending = nil
		ctx.lastEntity = &e
		c := e
		return &c
	}

	if pronounSet[in] && ctx.lastEntity != nil {
		c := *ctx.lastEntity
		return &c
	}
	return nil
}

// Reset drops all context for a user.
func (t *Tracker) Reset(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.contexts, userID)
}
