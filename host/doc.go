// Package host provides the concrete collaborators a load context works
// against: an in-process host environment and a wazero-backed host loader.
//
// Registry is the default Environment implementation: a name-keyed set of
// modules the host has already loaded, shared read-only with every load
// context that marks a name as preferred. DefaultEnvironment returns the
// process-default registry, created once; builders capture it at
// construction so no lookup ever goes through an ad hoc global.
//
// WazeroLoader maps resolved file paths into the process by compiling them
// with a wazero runtime it owns. Closing that runtime is the unload
// machinery behind collectible contexts: best-effort, and deferred while
// external references into compiled modules are still held.
package host
