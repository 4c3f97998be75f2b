package session

import (
	"context"
	"testing"
	"time"
)

func TestStartGetClear(t *testing.T) {
	m := NewManager(NewInMemoryStore(), time.Minute)
	s := m.Start("u1", WorkflowCreateCampaign)
	if s.Step != 1 {
		t.Fatalf("Step = %d, want 1", s.Step)
	}
	if s.Campaign == nil {
		t.Fatalf("create-campaign session should carry a campaign draft")
	}

	got, ok := m.Get("u1")
	if !ok || got.Workflow != WorkflowCreateCampaign {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}

	m.Clear("u1")
	if _, ok := m.Get("u1"); ok {
		t.Fatalf("session should be gone after Clear")
	}
	// Idempotent.
	m.Clear("u1")
	if _, ok := m.Get("u1"); ok {
		t.Fatalf("double Clear should leave session cleared")
	}
}

func TestMenuWorkflowsStartAtStepZero(t *testing.T) {
	m := NewManager(NewInMemoryStore(), time.Minute)
	s := m.Start("u1", WorkflowMainMenu)
	if s.Step != 0 {
		t.Fatalf("menu Step = %d, want 0", s.Step)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	m := NewManager(NewInMemoryStore(), time.Minute)
	m.Start("u1", WorkflowCreateCampaign)

	s, _ := m.Get("u1")
	s.Campaign.ProductName = "mutated"

	again, _ := m.Get("u1")
	if again.Campaign.ProductName != "" {
		t.Fatalf("stored session mutated through snapshot: %+v", again.Campaign)
	}

	s.Step = 3
	m.Save(s)
	saved, _ := m.Get("u1")
	if saved.Step != 3 || saved.Campaign.ProductName != "mutated" {
		t.Fatalf("Save() did not persist snapshot: %+v", saved)
	}
}

func TestJanitorExpiresIdle(t *testing.T) {
	m := NewManager(NewInMemoryStore(), 20*time.Millisecond)
	expired := make(chan string, 1)
	m.SetExpireHook(func(s *Session) { expired <- s.UserID })
	m.Start("u1", WorkflowCreateCampaign)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case id := <-expired:
		if id != "u1" {
			t.Fatalf("expired user = %q, want u1", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("janitor did not expire idle session")
	}
	if _, ok := m.Get("u1"); ok {
		t.Fatalf("expired session should be removed")
	}
}
