package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process catalog for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	byOwner  map[string][]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]Product),
		byOwner:  make(map[string][]string),
	}
}

func (s *InMemoryStore) GetProduct(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := p
	return &c, nil
}

func (s *InMemoryStore) ListProducts(_ context.Context, ownerID string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byOwner[ownerID]
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) UpsertProduct(_ context.Context, ownerID string, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.products[p.ID]; !exists {
		s.byOwner[ownerID] = append(s.byOwner[ownerID], p.ID)
	}
	s.products[p.ID] = *p
	return nil
}

func (s *InMemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	for owner, ids := range s.byOwner {
		out := ids[:0]
		for _, pid := range ids {
			if pid != id {
				out = append(out, pid)
			}
		}
		s.byOwner[owner] = out
	}
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
