package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when a file extension maps to no decoder.
	ErrUnsupportedFormat = errors.New("unsupported graph format")
)

// ParseError reports a graph file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
