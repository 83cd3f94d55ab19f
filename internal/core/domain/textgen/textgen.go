package textgen

import (
	"context"
	"errors"
	"medbot/internal/core/domain/user"
)

var ErrNotAllowed = errors.New("text generation is not enabled for the user")

type Request struct {
	OwnerID user.ID
	Prompt  string
}

// Generator produces short free-form text. Callers fall back to fixed text on error.
type Generator interface {
	Generate(ctx context.Context, request Request) (string, error)
}
