package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfigure Phase = "configure" // builder configuration
	PhaseBuild     Phase = "build"     // load-context construction
	PhaseResolve   Phase = "resolve"   // dependency resolution
	PhaseLoad      Phase = "load"      // module loading
	PhaseUnload    Phase = "unload"    // context teardown
	PhaseHost      Phase = "host"      // host-environment lookup
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindInvalidOperation Kind = "invalid_operation"
	KindDisposed         Kind = "disposed"
	KindNotFound         Kind = "not_found"
	KindManifest         Kind = "manifest"
	KindHostLoad         Kind = "host_load"
	KindLoad             Kind = "load"
	KindUnload           Kind = "unload"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string
	Path   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" for ")
		b.WriteString(e.Name)
	}

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the module or library name the error refers to
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Path sets the file path involved in the failure
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidArgument creates a malformed-input error
func InvalidArgument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// InvalidOperation creates an error for a call made in the wrong state
func InvalidOperation(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidOperation,
		Detail: detail,
	}
}

// Disposed creates a use-after-dispose error
func Disposed(what string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindDisposed,
		Detail: fmt.Sprintf("%s has been disposed", what),
	}
}

// NotFound creates a missing-artifact error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Name:   name,
		Detail: fmt.Sprintf("%s not found", what),
	}
}

// Manifest creates a dependency-manifest parsing error
func Manifest(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindManifest,
		Path:   path,
		Detail: "malformed dependency manifest",
		Cause:  cause,
	}
}

// HostLoad creates an error for a failed host-environment load
func HostLoad(name string, cause error) *Error {
	return &Error{
		Phase: PhaseHost,
		Kind:  KindHostLoad,
		Name:  name,
		Cause: cause,
	}
}

// Load wraps a host-loader failure with the path being loaded
func Load(name, path string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  KindLoad,
		Name:  name,
		Path:  path,
		Cause: cause,
	}
}

// Unload wraps a failure while tearing down a collectible context
func Unload(cause error) *Error {
	return &Error{
		Phase: PhaseUnload,
		Kind:  KindUnload,
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
