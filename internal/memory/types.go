package memory

import (
	"context"
	"time"
)

// Turn stores a single user or assistant conversational turn.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store archives conversational turns beyond the in-process context window.
type Store interface {
	SaveTurn(ctx context.Context, turn Turn) error
	RecentTurns(ctx context.Context, userID string, limit int) ([]Turn, error)
	Close() error
}
