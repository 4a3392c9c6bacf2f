package gen

import (
	"context"
	"errors"
	"fmt"
)

// ErrGenerationFailed indicates the generation backend returned a
// non-success response; the backend's message is attached by wrapping.
var ErrGenerationFailed = errors.New("generation failed")

// TextRequest is a prompt-driven text generation call.
type TextRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// ImageRequest is a prompt-driven image generation call.
type ImageRequest struct {
	Prompt string
	Size   string
}

// Gateway abstracts the generation backends. Calls are synchronous; a
// failed call returns an error wrapping ErrGenerationFailed and nothing
// is persisted by callers.
type Gateway interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
}

// Placeholder is a Gateway used when no backend is configured. Every call
// fails with ErrGenerationFailed.
type Placeholder struct{}

func (Placeholder) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	return "", fmt.Errorf("%w: generation backend not configured", ErrGenerationFailed)
}

func (Placeholder) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	return nil, fmt.Errorf("%w: generation backend not configured", ErrGenerationFailed)
}
