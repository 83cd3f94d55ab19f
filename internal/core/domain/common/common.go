package common

import (
	"fmt"
)

type Optional[T any] struct {
	Value     T
	IsPresent bool
}

func (p Optional[T]) String() string {
	if !p.IsPresent {
		return "[-]"
	}
	return fmt.Sprintf("[%v]", p.Value)
}

// ValueOr returns the wrapped value or fallback when the value is absent.
func (p Optional[T]) ValueOr(fallback T) T {
	if !p.IsPresent {
		return fallback
	}
	return p.Value
}

func NewOptional[T any](value T, isPresent bool) Optional[T] {
	return Optional[T]{Value: value, IsPresent: isPresent}
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, IsPresent: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}
