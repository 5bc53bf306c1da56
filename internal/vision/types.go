// Package vision talks to vision-capable language models: it checks that the
// model server is reachable, lists the models it serves, and asks a model to
// suggest a filename for an image.
//
// The default backend is an OpenAI-compatible local server (LM Studio and
// friends) reached over plain HTTP. A Gemini backend is available for users
// without a local server.
package vision

import "context"

// ModelDescriptor identifies a model the user can pick.
type ModelDescriptor struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}

// Describer asks a model for a filename suggestion for one image.
type Describer interface {
	// DescribeImage returns the model's raw, trimmed suggestion. The caller
	// sanitizes it.
	DescribeImage(ctx context.Context, image []byte, mimeType, modelID string) (string, error)
}

// Service is a model backend the CLI can drive end to end.
type Service interface {
	Describer

	// CheckConnection reports whether the backend answers within a bounded
	// time. It never returns an error.
	CheckConnection(ctx context.Context) bool

	// ListModels returns the models the backend offers, in server order.
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
}
