package service

import (
	"errors"

	"auren-studio/internal/domain"
)

// ErrNotFound is returned when an entity or its parent does not resolve.
var ErrNotFound = errors.New("not found")

// ConflictError is returned by a conditional update whose If-Match token no
// longer matches the entity's current revision. It carries the entity as the
// server holds it now, so the caller can present both sides of the conflict.
type ConflictError struct {
	Latest *domain.Component
}

func (e *ConflictError) Error() string {
	return "conflict: component was modified by another user"
}
