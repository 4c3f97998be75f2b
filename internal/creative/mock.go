package creative

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockGenerator produces placeholder assets for local/dev use.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Generate(_ context.Context, kind Kind, params Params) (*Asset, error) {
	id := uuid.NewString()
	return &Asset{
		ID:      id,
		Kind:    kind,
		URL:     fmt.Sprintf("https://assets.invalid/%s/%s", kind, id),
		Caption: fmt.Sprintf("%s creative for %s", kind, params.ProductName),
	}, nil
}

func (g *MockGenerator) SuggestDefaults(_ context.Context, productName, objective string) (Defaults, error) {
	return Defaults{
		Audience:    "Adults 18-54 interested in " + productName,
		Headline:    productName,
		PrimaryText: fmt.Sprintf("Discover %s. Built for %s.", productName, objective),
	}, nil
}
