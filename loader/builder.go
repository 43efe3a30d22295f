package loader

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/plugin-loader/errors"
	"github.com/wippyai/plugin-loader/host"
	"github.com/wippyai/plugin-loader/manifest"
	"github.com/wippyai/plugin-loader/module"
)

// DefaultExtension is the file extension probed for when a module name is
// resolved against a directory.
const DefaultExtension = ".wasm"

// Builder accumulates load-context configuration and produces an immutable
// LoadContext. It is mutated only during single-threaded configuration and
// is NOT safe for concurrent use. Build does not consume the builder, but
// builders are not expected to be reused.
type Builder struct {
	hostLoader       HostLoader
	env              Environment
	mainUnitPath     string
	ext              string
	probingPaths     []string
	resourcePaths    []string
	resourceSubpaths []string
	shared           map[string]struct{}
	collectible      bool
}

// NewBuilder creates a builder bound to the given host loader. The host
// environment defaults to host.DefaultEnvironment(); override it with
// SetHostEnvironment before Build.
func NewBuilder(hl HostLoader) *Builder {
	return &Builder{
		hostLoader: hl,
		env:        host.DefaultEnvironment(),
		ext:        DefaultExtension,
		shared:     make(map[string]struct{}),
	}
}

// SetMainUnitPath stores the absolute path of the plugin's main unit.
func (b *Builder) SetMainUnitPath(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return errors.InvalidArgument(errors.PhaseConfigure, "main unit path must be absolute")
	}
	b.mainUnitPath = path
	return nil
}

// SetHostEnvironment replaces the default host-environment reference.
func (b *Builder) SetHostEnvironment(env Environment) error {
	if env == nil {
		return errors.InvalidArgument(errors.PhaseConfigure, "host environment must not be nil")
	}
	b.env = env
	return nil
}

// AddProbingPath appends a directory to the ordered flat-probing list.
// Duplicates are permitted and order is preserved.
func (b *Builder) AddProbingPath(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return errors.InvalidArgument(errors.PhaseConfigure, "probing path must be absolute")
	}
	b.probingPaths = append(b.probingPaths, path)
	return nil
}

// AddResourcePath appends a directory to the ordered resource-probing list,
// searched for localized satellite modules independently of probing paths.
func (b *Builder) AddResourcePath(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return errors.InvalidArgument(errors.PhaseConfigure, "resource path must be absolute")
	}
	b.resourcePaths = append(b.resourcePaths, path)
	return nil
}

// AddResourceSubpath appends a relative fragment combined with every probing
// path to synthesize extra resource roots.
func (b *Builder) AddResourceSubpath(rel string) error {
	if rel == "" || filepath.IsAbs(rel) {
		return errors.InvalidArgument(errors.PhaseConfigure, "resource subpath must be relative and non-empty")
	}
	b.resourceSubpaths = append(b.resourceSubpaths, rel)
	return nil
}

// SetModuleExtension overrides the file extension used during probing.
func (b *Builder) SetModuleExtension(ext string) error {
	if ext == "" {
		return errors.InvalidArgument(errors.PhaseConfigure, "module extension must not be empty")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	b.ext = ext
	return nil
}

// SetCollectible marks the context being built as unloadable.
func (b *Builder) SetCollectible(v bool) {
	b.collectible = v
}

// PreferHostEnvironmentName marks name, and every module name reachable from
// it through static references, to resolve against the host environment.
//
// A type shared across the plugin boundary must share its whole transitive
// closure, or cross-boundary identity checks silently fail. The walk is
// eager so that sharing failures surface before the plugin is ever loaded.
//
// The walk is breadth-first with the shared set as the sole visited guard:
// it is idempotent across repeated calls and terminates on reference cycles.
func (b *Builder) PreferHostEnvironmentName(ctx context.Context, name string) error {
	queue := []string{name}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n == "" {
			continue
		}
		if _, seen := b.shared[n]; seen {
			continue
		}
		b.shared[n] = struct{}{}

		m, err := b.env.Load(ctx, module.Neutral(n))
		if err != nil {
			return errors.HostLoad(n, err)
		}
		for _, ref := range m.References() {
			queue = append(queue, ref.Value)
		}
	}
	return nil
}

// Build constructs the immutable LoadContext. The resource roots are
// [basePath] + resourcePaths + (probingPaths x resourceSubpaths), in order.
func (b *Builder) Build() (*LoadContext, error) {
	if b.mainUnitPath == "" {
		return nil, errors.InvalidOperation(errors.PhaseBuild, "main unit path not set")
	}
	if b.hostLoader == nil {
		return nil, errors.InvalidOperation(errors.PhaseBuild, "host loader not set")
	}

	resolver, err := manifest.NewResolver(b.mainUnitPath)
	if err != nil {
		return nil, err
	}

	basePath := filepath.Dir(b.mainUnitPath)

	roots := make([]string, 0, 1+len(b.resourcePaths)+len(b.probingPaths)*len(b.resourceSubpaths))
	roots = append(roots, basePath)
	roots = append(roots, b.resourcePaths...)
	for _, p := range b.probingPaths {
		for _, sub := range b.resourceSubpaths {
			roots = append(roots, filepath.Join(p, sub))
		}
	}

	flatDirs := make([]string, 0, 1+len(b.probingPaths))
	flatDirs = append(flatDirs, basePath)
	flatDirs = append(flatDirs, b.probingPaths...)

	shared := make(map[string]struct{}, len(b.shared))
	for n := range b.shared {
		shared[n] = struct{}{}
	}

	lc := &LoadContext{
		id:            uuid.NewString(),
		mainUnitPath:  b.mainUnitPath,
		basePath:      basePath,
		ext:           b.ext,
		flatDirs:      flatDirs,
		resourceRoots: roots,
		shared:        shared,
		resolver:      resolver,
		env:           b.env,
		hostLoader:    b.hostLoader,
		collectible:   b.collectible,
	}

	Logger().Debug("load context built",
		zap.String("context_id", lc.id),
		zap.String("main_unit", lc.mainUnitPath),
		zap.Int("probing_paths", len(b.probingPaths)),
		zap.Int("resource_roots", len(roots)),
		zap.Int("shared_names", len(shared)),
		zap.Bool("collectible", lc.collectible),
	)
	return lc, nil
}
