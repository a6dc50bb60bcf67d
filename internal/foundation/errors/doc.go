// Package errors provides the classified error primitives used across hrefrewrite.
//
// Href resolution itself never fails; errors only surface from configuration,
// filesystem access, rendering and the strict collision policy. Those paths build a
// ClassifiedError so the CLI can choose an exit code and a log level from its category
// and severity.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryFileSystem, "write output failed").
//		WithContext("path", outPath).
//		WithCause(ioErr).
//		Build()
package errors
