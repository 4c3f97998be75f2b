// Package confirm holds pending confirmations for irreversible actions.
package confirm

import (
	"strings"
	"sync"
	"time"
)

// Status is the outcome of resolving a reply against the gate.
type Status int

const (
	StatusNoPending Status = iota
	StatusConfirmed
	StatusCancelled
)

// Pending is a deferred action awaiting explicit user approval.
type Pending struct {
	Command   string
	Args      []string
	CreatedAt time.Time
}

// Outcome carries the released action when Status is StatusConfirmed.
type Outcome struct {
	Status  Status
	Command string
	Args    []string
}

// Gate tracks at most one pending confirmation per user. A second request
// for the same user overwrites the first; Request reports the replacement
// so callers can warn about the dropped action.
type Gate struct {
	mu          sync.Mutex
	acceptToken string
	pending     map[string]Pending
	now         func() time.Time
}

func NewGate(acceptToken string) *Gate {
	if strings.TrimSpace(acceptToken) == "" {
		acceptToken = "yes"
	}
	return &Gate{
		acceptToken: strings.ToLower(strings.TrimSpace(acceptToken)),
		pending:     make(map[string]Pending),
		now:         time.Now,
	}
}

// AcceptToken returns the literal a user must send to confirm.
func (g *Gate) AcceptToken() string { return g.acceptToken }

// Request arms the gate for a user. The returned Pending is the previous
// entry when one was overwritten; replaced reports whether that happened.
func (g *Gate) Request(userID, command string, args []string) (previous Pending, replaced bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	previous, replaced = g.pending[userID]
	g.pending[userID] = Pending{
		Command:   command,
		Args:      append([]string(nil), args...),
		CreatedAt: g.now().UTC(),
	}
	return previous, replaced
}

// HasPending reports whether a confirmation is outstanding for the user.
func (g *Gate) HasPending(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[userID]
	return ok
}

// Resolve consumes the pending entry. A reply case-insensitively equal to
// the accept token confirms; any other reply cancels. Resolving with no
// pending entry is not an error, it signals ordinary input.
func (g *Gate) Resolve(userID, reply string) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pending[userID]
	if !ok {
		return Outcome{Status: StatusNoPending}
	}
	delete(g.pending, userID)

	if strings.EqualFold(strings.TrimSpace(reply), g.acceptToken) {
		return Outcome{Status: StatusConfirmed, Command: p.Command, Args: p.Args}
	}
	return Outcome{Status: StatusCancelled, Command: p.Command, Args: p.Args}
}
