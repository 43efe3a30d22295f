package host

import (
	"context"
	"sync"

	"github.com/wippyai/plugin-loader/errors"
	"github.com/wippyai/plugin-loader/module"
)

// Registry is an in-process host environment: a name-keyed set of modules
// already loaded into the enclosing scope. Load contexts query it for shared
// names; they never mutate it.
//
// Registry is safe for concurrent use.
type Registry struct {
	modules map[string]module.Module
	mu      sync.RWMutex
}

// NewRegistry creates an empty host environment.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]module.Module),
	}
}

// Register makes a module available for shared-name resolution under its
// own name. Registering the same name twice replaces the earlier entry.
func (r *Registry) Register(m module.Module) error {
	name := m.Name().Value
	if name == "" {
		return errors.InvalidArgument(errors.PhaseHost, "module name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = m
	return nil
}

// Load returns the environment's copy of the named module.
func (r *Registry) Load(_ context.Context, name module.Name) (module.Module, error) {
	r.mu.RLock()
	m, ok := r.modules[name.Value]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.NotFound(errors.PhaseHost, "module", name.Value)
	}
	return m, nil
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

var (
	defaultEnv     *Registry
	defaultEnvOnce sync.Once
)

// DefaultEnvironment returns the process-default host environment, created
// on first use. Builders capture it once at construction; all later lookups
// flow through the captured reference.
func DefaultEnvironment() *Registry {
	defaultEnvOnce.Do(func() {
		defaultEnv = NewRegistry()
	})
	return defaultEnv
}

// Virtual is a host-side module handle with declared references and no
// backing file. Use it to describe modules the enclosing scope provides
// directly, including their static reference graph.
type Virtual struct {
	name module.Name
	refs []module.Name
}

// NewVirtual creates a virtual module named name that references refs.
func NewVirtual(name string, refs ...string) *Virtual {
	v := &Virtual{name: module.Neutral(name)}
	for _, r := range refs {
		v.refs = append(v.refs, module.Neutral(r))
	}
	return v
}

func (v *Virtual) Name() module.Name { return v.name }

// Path returns "" — virtual modules have no backing file.
func (v *Virtual) Path() string { return "" }

func (v *Virtual) References() []module.Name {
	refs := make([]module.Name, len(v.refs))
	copy(refs, v.refs)
	return refs
}
