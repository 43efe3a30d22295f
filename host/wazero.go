package host

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/plugin-loader/errors"
	"github.com/wippyai/plugin-loader/module"
)

// WazeroLoader maps file paths into the process by compiling them with a
// wazero runtime it owns. One loader per load context is the expected
// ownership: Unload closes the runtime, which is the reclaim machinery
// behind collectible contexts.
//
// WazeroLoader is safe for concurrent use.
type WazeroLoader struct {
	runtime  wazero.Runtime
	mu       sync.Mutex
	compiled []wazero.CompiledModule
	unloaded atomic.Bool
}

// NewWazeroLoader creates a loader with a fresh wazero runtime.
func NewWazeroLoader(ctx context.Context) *WazeroLoader {
	return &WazeroLoader{
		runtime: wazero.NewRuntime(ctx),
	}
}

// NewWazeroLoaderWithConfig creates a loader with a custom runtime
// configuration.
func NewWazeroLoaderWithConfig(ctx context.Context, cfg wazero.RuntimeConfig) *WazeroLoader {
	return &WazeroLoader{
		runtime: wazero.NewRuntimeWithConfig(ctx, cfg),
	}
}

// LoadModule reads and compiles the wasm binary at path. The returned
// module's References are derived from the binary's imported functions and
// memories, deduplicated in first-appearance order.
func (l *WazeroLoader) LoadModule(ctx context.Context, path string, name module.Name) (module.Module, error) {
	if l.unloaded.Load() {
		return nil, errors.Disposed("host loader")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(name.Value, path, err)
	}

	compiled, err := l.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Load(name.Value, path, err)
	}

	l.mu.Lock()
	l.compiled = append(l.compiled, compiled)
	l.mu.Unlock()

	refs := importedModules(compiled)
	Logger().Debug("compiled module",
		zap.String("name", name.String()),
		zap.String("path", path),
		zap.Int("references", len(refs)),
	)

	return &wazeroModule{
		name:     name,
		path:     path,
		refs:     refs,
		compiled: compiled,
	}, nil
}

// LoadLibrary loads a native library from the exact path given. The path is
// used as-is; symbol binding is the embedding host's business, so the handle
// records the canonical location after verifying it is readable.
func (l *WazeroLoader) LoadLibrary(_ context.Context, path, name string) (module.Library, error) {
	if l.unloaded.Load() {
		return nil, errors.Disposed("host loader")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load(name, path, err)
	}
	_ = f.Close()

	return &nativeLibrary{name: name, path: path}, nil
}

// Unload closes every compiled module and the runtime. It is a best-effort
// request: wazero defers freeing a compiled module's code while instances
// of it are still alive. Unload is idempotent; later calls return nil.
func (l *WazeroLoader) Unload(ctx context.Context) error {
	if !l.unloaded.CompareAndSwap(false, true) {
		return nil
	}

	l.mu.Lock()
	compiled := l.compiled
	l.compiled = nil
	l.mu.Unlock()

	var err error
	for _, c := range compiled {
		err = multierr.Append(err, c.Close(ctx))
	}
	err = multierr.Append(err, l.runtime.Close(ctx))

	Logger().Debug("host loader unloaded",
		zap.Int("modules", len(compiled)),
		zap.Error(err),
	)
	return err
}

// importedModules collects the distinct module names a compiled module
// imports, in first-appearance order.
func importedModules(c wazero.CompiledModule) []module.Name {
	seen := make(map[string]struct{})
	var refs []module.Name

	add := func(modName string) {
		if modName == "" {
			return
		}
		if _, ok := seen[modName]; ok {
			return
		}
		seen[modName] = struct{}{}
		refs = append(refs, module.Neutral(modName))
	}

	for _, fn := range c.ImportedFunctions() {
		modName, _, _ := fn.Import()
		add(modName)
	}
	for _, mem := range c.ImportedMemories() {
		modName, _, _ := mem.Import()
		add(modName)
	}
	return refs
}

type wazeroModule struct {
	name     module.Name
	path     string
	refs     []module.Name
	compiled wazero.CompiledModule
}

func (m *wazeroModule) Name() module.Name { return m.name }
func (m *wazeroModule) Path() string      { return m.path }

func (m *wazeroModule) References() []module.Name {
	refs := make([]module.Name, len(m.refs))
	copy(refs, m.refs)
	return refs
}

// Compiled returns the underlying wazero module for instantiation by the
// embedding host.
func (m *wazeroModule) Compiled() wazero.CompiledModule {
	return m.compiled
}

type nativeLibrary struct {
	name string
	path string
}

func (n *nativeLibrary) Name() string { return n.name }
func (n *nativeLibrary) Path() string { return n.path }
