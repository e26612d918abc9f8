package compiler

import "errors"

var (
	// ErrNoImages is returned for an entity that has no images and
	// therefore no manifest.
	ErrNoImages = errors.New("entity has no images")

	// ErrBadIdentifier is returned by Bucket for identifiers without a
	// numeric suffix.
	ErrBadIdentifier = errors.New("identifier has no numeric suffix")

	// ErrUnknownCompiler is returned by Lookup for an unregistered name.
	ErrUnknownCompiler = errors.New("unknown compiler")
)
