// Package transport defines the messaging collaborator boundary and a
// websocket delivery hub for the dev console.
package transport

import "context"

// ContentKind tags deliverable content.
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
	KindVideo ContentKind = "video"
)

// Content is one outbound message: text, or media plus caption.
type Content struct {
	Kind    ContentKind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	URL     string      `json:"url,omitempty"`
	Caption string      `json:"caption,omitempty"`
}

// Text wraps a plain text reply.
func Text(s string) Content {
	return Content{Kind: KindText, Text: s}
}

// Deliverer pushes content to an end user asynchronously, outside the
// request/response cycle of the inbound message.
type Deliverer interface {
	Deliver(ctx context.Context, userID string, content Content) error
}
