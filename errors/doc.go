// Package errors provides structured error types for the plugin-loader library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: module name, file path, and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConfigure, errors.KindInvalidArgument).
//		Name("Helper").
//		Detail("probing path must be absolute").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidArgument(errors.PhaseConfigure, "path must be absolute")
//	err := errors.Disposed("plugin")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
