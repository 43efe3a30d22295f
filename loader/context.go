package loader

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/plugin-loader/manifest"
	"github.com/wippyai/plugin-loader/module"
)

// LoadContext is an isolated resolution scope: it maps module and
// native-library names to concrete artifacts using its own ordered policy,
// independent of any other scope.
//
// All fields are fixed at Build time. Concurrent resolution calls are safe
// without locking; nothing is written during resolution.
type LoadContext struct {
	id            string
	mainUnitPath  string
	basePath      string
	ext           string
	flatDirs      []string
	resourceRoots []string
	shared        map[string]struct{}
	resolver      *manifest.Resolver
	env           Environment
	hostLoader    HostLoader
	collectible   bool
}

// ID returns the context's identifier, used for log correlation.
func (c *LoadContext) ID() string {
	return c.id
}

// BasePath returns the directory containing the main unit.
func (c *LoadContext) BasePath() string {
	return c.basePath
}

// ResourceRoots returns the ordered roots searched for localized modules.
func (c *LoadContext) ResourceRoots() []string {
	roots := make([]string, len(c.resourceRoots))
	copy(roots, c.resourceRoots)
	return roots
}

// Collectible reports whether this context supports unloading.
func (c *LoadContext) Collectible() bool {
	return c.collectible
}

// Shared reports whether a name is marked to resolve against the host
// environment.
func (c *LoadContext) Shared(name string) bool {
	_, ok := c.shared[name]
	return ok
}

// ResolveModule maps a module name to a loaded artifact.
//
// The fallback chain, in order: the host environment for shared names (a
// failure there is a hint miss, never fatal), the dependency manifest,
// resource roots for localized names, and flat probing for neutral names.
// Localized requests never fall through to flat probing.
//
// A nil, nil return means "unresolvable": the caller is expected to apply
// its own default behavior.
func (c *LoadContext) ResolveModule(ctx context.Context, name module.Name) (module.Module, error) {
	if name.Value == "" {
		return nil, nil
	}

	if _, ok := c.shared[name.Value]; ok {
		m, err := c.env.Load(ctx, name)
		if err == nil && m != nil {
			return m, nil
		}
		// Shared preference is a hint, not a guarantee of presence in the
		// host; fall through to manifest-based resolution.
		Logger().Debug("shared name missed host environment",
			zap.String("context_id", c.id),
			zap.String("name", name.String()),
			zap.Error(err),
		)
	}

	if path := c.resolver.ModulePath(name.Value); path != "" && fileExists(path) {
		return c.load(ctx, path, name)
	}

	if !name.IsNeutral() {
		for _, root := range c.resourceRoots {
			path := filepath.Join(root, name.Locale, name.Value+c.ext)
			if fileExists(path) {
				return c.load(ctx, path, name)
			}
		}
		return nil, nil
	}

	for _, dir := range c.flatDirs {
		path := filepath.Join(dir, name.Value+c.ext)
		if fileExists(path) {
			return c.load(ctx, path, name)
		}
	}

	return nil, nil
}

// ResolveLibrary maps a native library name to a loaded artifact. Only the
// dependency manifest is consulted; probing paths never are. A nil, nil
// return defers to the host loader's own OS search rules.
func (c *LoadContext) ResolveLibrary(ctx context.Context, name string) (module.Library, error) {
	if name == "" {
		return nil, nil
	}

	// The manifest path is canonical already; use it as-is.
	if path := c.resolver.LibraryPath(name); path != "" && fileExists(path) {
		lib, err := c.hostLoader.LoadLibrary(ctx, path, name)
		if err != nil {
			return nil, err
		}
		Logger().Debug("native library loaded",
			zap.String("context_id", c.id),
			zap.String("name", name),
			zap.String("path", path),
		)
		return lib, nil
	}

	return nil, nil
}

// loadMain loads the configured main unit by path, bypassing the
// name-resolution chain.
func (c *LoadContext) loadMain(ctx context.Context) (module.Module, error) {
	stem := filepath.Base(c.mainUnitPath)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	return c.load(ctx, c.mainUnitPath, module.Neutral(stem))
}

func (c *LoadContext) load(ctx context.Context, path string, name module.Name) (module.Module, error) {
	m, err := c.hostLoader.LoadModule(ctx, path, name)
	if err != nil {
		return nil, err
	}
	Logger().Debug("module loaded",
		zap.String("context_id", c.id),
		zap.String("name", name.String()),
		zap.String("path", path),
	)
	return m, nil
}

// fileExists treats stat errors as "not found": for a fallback chain a
// probing directory that cannot be read is indistinguishable from one that
// lacks the candidate.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
