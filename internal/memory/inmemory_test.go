package memory

import (
	"context"
	"testing"
)

func TestInMemoryStoreSaveAndRecent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if err := s.SaveTurn(ctx, Turn{UserID: "u1", Role: "user", Text: text}); err != nil {
			t.Fatalf("SaveTurn() error = %v", err)
		}
	}

	got, err := s.RecentTurns(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Text != "two" || got[1].Text != "three" {
		t.Fatalf("unexpected turns: %+v", got)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Fatalf("turn should have generated ID and timestamp: %+v", got[0])
	}
}

func TestInMemoryStoreUnknownUser(t *testing.T) {
	s := NewInMemoryStore()
	got, err := s.RecentTurns(context.Background(), "missing", 5)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
