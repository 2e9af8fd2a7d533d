package config

import "errors"

var (
	// ErrInvalidWidth reports a width that is zero or not a multiple of 64.
	ErrInvalidWidth = errors.New("config: width must be a positive multiple of 64")
	// ErrInvalidHeight reports a non-positive height.
	ErrInvalidHeight = errors.New("config: height must be positive")
	// ErrInvalidClientCount reports a client count below 1.
	ErrInvalidClientCount = errors.New("config: client count must be at least 1")
	// ErrInvalidTimeout reports a non-positive read timeout.
	ErrInvalidTimeout = errors.New("config: read timeout must be positive")
	// ErrMissingScene reports an empty scene path.
	ErrMissingScene = errors.New("config: scene path is required")
)
