package errors

// Package errors provides sentinel errors for source tree discovery.

import "errors"

var (
	// ErrSourceNotFound indicates the configured source directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrSourceNotDir indicates the configured source path is not a directory.
	ErrSourceNotDir = errors.New("source path is not a directory")

	// ErrWalkFailed indicates filesystem traversal of the source tree failed.
	ErrWalkFailed = errors.New("source directory walk failed")

	// ErrFileReadFailed indicates reading a discovered file failed.
	ErrFileReadFailed = errors.New("file read failed")

	// ErrInvalidRelativePath indicates a path could not be expressed relative to the source root.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")

	// ErrInvalidPattern indicates an ignore pattern is malformed.
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)
