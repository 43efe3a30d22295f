package loader

import (
	"context"

	"github.com/wippyai/plugin-loader/module"
)

// Environment is the enclosing scope whose already-loaded modules can be
// selectively shared with a load context. Implementations are queried, never
// mutated, by load contexts.
type Environment interface {
	// Load returns the environment's copy of the named module.
	Load(ctx context.Context, name module.Name) (module.Module, error)
}

// HostLoader maps resolved file paths into in-process artifacts. It is the
// collaborator that owns the actual loading machinery; the load context only
// decides which path to hand it.
type HostLoader interface {
	// LoadModule maps the file at path into the process under the given name.
	LoadModule(ctx context.Context, path string, name module.Name) (module.Module, error)
	// LoadLibrary loads a native library from the exact path given,
	// bypassing any OS-level search.
	LoadLibrary(ctx context.Context, path, name string) (module.Library, error)
}

// Unloader is implemented by host loaders that can release the artifacts
// they loaded. Unload is a request: reclamation is best-effort and may be
// deferred while external references into loaded modules are still held.
type Unloader interface {
	Unload(ctx context.Context) error
}
