package catalog

import "errors"

var (
	// ErrNotFound is returned when no entity has the requested identifier.
	ErrNotFound = errors.New("entity not found")

	// ErrNoRenderer is returned by Entity.WebPage when no page renderer is configured.
	ErrNoRenderer = errors.New("no page renderer configured")
)
