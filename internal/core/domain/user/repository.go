package user

import (
	"context"
	"time"
)

type EnsureInput struct {
	ID        ID
	CreatedAt time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id ID) (User, error)
	// Ensure creates the user when it does not exist yet and returns the stored row.
	Ensure(ctx context.Context, input EnsureInput) (User, error)
	SetTimezone(ctx context.Context, id ID, timezone string) (User, error)
}
