// Package service holds the league operations exposed to the HTTP layer and
// the leaguectl command. Each service validates input, runs writes inside a
// store transaction and records outbox events alongside the change.
package service

import (
	"github.com/tenpin/leaguebook/internal/domain"
)

// wrapErr keeps AppErrors produced further down and hides anything else
// behind an internal error.
func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsAppError(err); ok {
		return err
	}
	return domain.ErrInternal(msg, err)
}

// orEmpty turns a nil slice into an empty one so JSON encodes [] not null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
