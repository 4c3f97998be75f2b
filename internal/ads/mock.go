package ads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockPlatform keeps campaigns in memory for local/dev use.
type MockPlatform struct {
	mu        sync.RWMutex
	campaigns map[string]Campaign
	byUser    map[string][]string
}

func NewMockPlatform() *MockPlatform {
	return &MockPlatform{
		campaigns: make(map[string]Campaign),
		byUser:    make(map[string][]string),
	}
}

func (m *MockPlatform) CreateCampaign(_ context.Context, spec CampaignSpec) (CampaignRefs, error) {
	refs := CampaignRefs{
		CampaignID: uuid.NewString(),
		AdSetID:    uuid.NewString(),
		AdID:       uuid.NewString(),
	}
	c := Campaign{
		CampaignRefs: refs,
		Spec:         spec,
		Status:       "active",
		CreatedAt:    time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[refs.CampaignID] = c
	m.byUser[spec.UserID] = append(m.byUser[spec.UserID], refs.CampaignID)
	return refs, nil
}

func (m *MockPlatform) ListCampaigns(_ context.Context, userID string) ([]Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byUser[userID]
	out := make([]Campaign, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.campaigns[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockPlatform) DeleteCampaign(_ context.Context, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[campaignID]; !ok {
		return ErrCampaignNotFound
	}
	delete(m.campaigns, campaignID)
	for user, ids := range m.byUser {
		out := ids[:0]
		for _, id := range ids {
			if id != campaignID {
				out = append(out, id)
			}
		}
		m.byUser[user] = out
	}
	return nil
}
