// Package creative defines the generative-media collaborator boundary.
package creative

import "context"

// Kind selects the asset type to generate.
type Kind string

const (
	KindImage     Kind = "image"
	KindImagePack Kind = "image_pack"
	KindVideo     Kind = "video"
)

// Params shapes a generation request.
type Params struct {
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description,omitempty"`
	Style              string `json:"style,omitempty"`
}

// Asset is a generated creative.
type Asset struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Defaults are generated audience and copy suggestions for a campaign.
type Defaults struct {
	Audience    string `json:"audience"`
	Headline    string `json:"headline"`
	PrimaryText string `json:"primary_text"`
}

// Generator is the generative-media collaborator.
type Generator interface {
	Generate(ctx context.Context, kind Kind, params Params) (*Asset, error)
	SuggestDefaults(ctx context.Context, productName, objective string) (Defaults, error)
}
