package services

import "context"

// Service is a single use case. Decorators such as rate limiting wrap it.
type Service[T any, S any] interface {
	Run(ctx context.Context, input T) (S, error)
}
