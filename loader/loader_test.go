package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wippyai/plugin-loader/errors"
	"github.com/wippyai/plugin-loader/module"
)

// Shared test doubles for the loader package.

type fakeModule struct {
	name module.Name
	path string
	refs []module.Name
}

func (m *fakeModule) Name() module.Name         { return m.name }
func (m *fakeModule) Path() string              { return m.path }
func (m *fakeModule) References() []module.Name { return m.refs }

type fakeLibrary struct {
	name string
	path string
}

func (l *fakeLibrary) Name() string { return l.name }
func (l *fakeLibrary) Path() string { return l.path }

// fakeEnv is a scripted host environment recording every lookup.
type fakeEnv struct {
	mu      sync.Mutex
	modules map[string]*fakeModule
	errs    map[string]error
	loads   []string
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		modules: make(map[string]*fakeModule),
		errs:    make(map[string]error),
	}
}

func (e *fakeEnv) add(name string, refs ...string) *fakeEnv {
	m := &fakeModule{name: module.Neutral(name)}
	for _, r := range refs {
		m.refs = append(m.refs, module.Neutral(r))
	}
	e.modules[name] = m
	return e
}

func (e *fakeEnv) fail(name string, err error) *fakeEnv {
	e.errs[name] = err
	return e
}

func (e *fakeEnv) Load(_ context.Context, name module.Name) (module.Module, error) {
	e.mu.Lock()
	e.loads = append(e.loads, name.Value)
	e.mu.Unlock()

	if err, ok := e.errs[name.Value]; ok {
		return nil, err
	}
	if m, ok := e.modules[name.Value]; ok {
		return m, nil
	}
	return nil, errors.NotFound(errors.PhaseHost, "module", name.Value)
}

func (e *fakeEnv) loadCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, l := range e.loads {
		if l == name {
			n++
		}
	}
	return n
}

// fakeHostLoader records loaded paths and counts unload requests.
type fakeHostLoader struct {
	mu      sync.Mutex
	loaded  []string
	unloads int
	failAll error
}

func (l *fakeHostLoader) LoadModule(_ context.Context, path string, name module.Name) (module.Module, error) {
	if l.failAll != nil {
		return nil, l.failAll
	}
	l.mu.Lock()
	l.loaded = append(l.loaded, path)
	l.mu.Unlock()
	return &fakeModule{name: name, path: path}, nil
}

func (l *fakeHostLoader) LoadLibrary(_ context.Context, path, name string) (module.Library, error) {
	if l.failAll != nil {
		return nil, l.failAll
	}
	l.mu.Lock()
	l.loaded = append(l.loaded, path)
	l.mu.Unlock()
	return &fakeLibrary{name: name, path: path}, nil
}

func (l *fakeHostLoader) Unload(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unloads++
	return nil
}

func (l *fakeHostLoader) unloadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unloads
}

// touch creates an empty file, making parent directories as needed.
func touch(t *testing.T, elems ...string) string {
	t.Helper()
	path := filepath.Join(elems...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// plugindir creates <dir>/plugin.wasm and returns its path.
func plugindir(t *testing.T) (dir, mainPath string) {
	t.Helper()
	dir = t.TempDir()
	mainPath = touch(t, dir, "plugin.wasm")
	return dir, mainPath
}
