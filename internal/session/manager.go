package session

import (
	"context"
	"time"
)

// Manager tracks per-user workflow sessions on top of an injectable Store.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	onExpire    func(*Session)
}

func NewManager(store Store, idleTimeout time.Duration) *Manager {
	if store == nil {
		store = NewInMemoryStore()
	}
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &Manager{store: store, idleTimeout: idleTimeout}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.onExpire = hook
}

// Start begins a workflow for a user, overwriting any prior session. Menu
// workflows start at step 0, guided workflows at step 1.
func (m *Manager) Start(userID string, kind WorkflowKind) *Session {
	step := 0
	switch kind {
	case WorkflowCreateCampaign, WorkflowGenerateMedia:
		step = 1
	}
	s := &Session{
		UserID:         userID,
		Workflow:       kind,
		Step:           step,
		LastActivityAt: time.Now().UTC(),
	}
	if kind == WorkflowCreateCampaign {
		s.Campaign = &CampaignDraft{}
	}
	if kind == WorkflowGenerateMedia {
		s.Media = &MediaDraft{}
	}
	if kind == WorkflowManageProducts {
		s.Product = &ProductDraft{}
	}
	m.store.Put(s)
	return clone(s)
}

// Get returns the user's session snapshot, if any.
func (m *Manager) Get(userID string) (*Session, bool) {
	return m.store.Get(userID)
}

// Active reports whether the user has a workflow in progress.
func (m *Manager) Active(userID string) bool {
	s, ok := m.store.Get(userID)
	return ok && s.Workflow != WorkflowNone
}

// Save persists a mutated session snapshot and refreshes its activity time.
func (m *Manager) Save(s *Session) {
	s.LastActivityAt = time.Now().UTC()
	m.store.Put(s)
}

// Clear drops the user's session. Clearing an already-clear session is a
// no-op, so cancel is idempotent.
func (m *Manager) Clear(userID string) {
	m.store.Delete(userID)
}

// ActiveCount returns the number of live sessions.
func (m *Manager) ActiveCount() int {
	return len(m.store.All())
}

// StartJanitor expires idle sessions in the background.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireIdle()
			}
		}
	}()
}

func (m *Manager) expireIdle() {
	now := time.Now().UTC()
	for _, s := range m.store.All() {
		if now.Sub(s.LastActivityAt) < m.idleTimeout {
			continue
		}
		m.store.Delete(s.UserID)
		if m.onExpire != nil {
			m.onExpire(s)
		}
	}
}
