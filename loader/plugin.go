package loader

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/plugin-loader/errors"
	"github.com/wippyai/plugin-loader/module"
)

// Config is the simple configuration Open drives a Builder with.
type Config struct {
	// MainUnitPath is the absolute path of the plugin's main unit. Required.
	MainUnitPath string
	// ProbingPaths are absolute directories searched, in order, after the
	// main unit's own directory.
	ProbingPaths []string
	// ResourcePaths are absolute directories searched for localized
	// satellite modules.
	ResourcePaths []string
	// ResourceSubpaths are relative fragments combined with every probing
	// path to synthesize extra resource roots.
	ResourceSubpaths []string
	// SharedNames are module names preferred from the host environment,
	// each expanded to its transitive reference closure.
	SharedNames []string
	// HostEnvironment overrides the default shared scope. Optional.
	HostEnvironment Environment
	// HostLoader maps resolved paths into in-process artifacts. Required.
	HostLoader HostLoader
	// Collectible marks the context as unloadable.
	Collectible bool
}

// Plugin is the lifecycle facade over a single LoadContext. It is created
// once per loaded plugin and disposed at most once; Close is idempotent and
// safe for concurrent callers.
type Plugin struct {
	lc       *LoadContext
	disposed atomic.Bool
}

// Open builds a load context from cfg and returns its facade. Any
// configuration error propagates; a Plugin is never half-built.
func Open(ctx context.Context, cfg Config) (*Plugin, error) {
	b := NewBuilder(cfg.HostLoader)

	if err := b.SetMainUnitPath(cfg.MainUnitPath); err != nil {
		return nil, err
	}
	if cfg.HostEnvironment != nil {
		if err := b.SetHostEnvironment(cfg.HostEnvironment); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.ProbingPaths {
		if err := b.AddProbingPath(p); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.ResourcePaths {
		if err := b.AddResourcePath(p); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.ResourceSubpaths {
		if err := b.AddResourceSubpath(p); err != nil {
			return nil, err
		}
	}
	b.SetCollectible(cfg.Collectible)
	for _, n := range cfg.SharedNames {
		if err := b.PreferHostEnvironmentName(ctx, n); err != nil {
			return nil, err
		}
	}

	lc, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Plugin{lc: lc}, nil
}

// LoadMainUnit loads the configured main unit by path, bypassing the
// name-resolution chain. Transitive dependencies are resolved lazily as the
// host loader asks the context for them.
func (p *Plugin) LoadMainUnit(ctx context.Context) (module.Module, error) {
	if p.disposed.Load() {
		return nil, errors.Disposed("plugin")
	}
	return p.lc.loadMain(ctx)
}

// Context exposes the load context so a host runtime can install its two
// resolve entry points.
func (p *Plugin) Context() (*LoadContext, error) {
	if p.disposed.Load() {
		return nil, errors.Disposed("plugin")
	}
	return p.lc, nil
}

// Unloadable reports whether the underlying context supports unloading.
// It never changes state.
func (p *Plugin) Unloadable() bool {
	return p.lc.Collectible()
}

// UnloadRequested reports whether Close has issued the unload request.
// It does not mean reclamation has completed.
func (p *Plugin) UnloadRequested() bool {
	return p.disposed.Load() && p.lc.Collectible()
}

// Close disposes the plugin. Exactly one caller performs the actual unload
// request; later and concurrent calls return nil without further effect.
//
// For a collectible context the unload is a request, not a synchronous
// guarantee: reclamation may be deferred while external references into the
// context's modules are still held. For a non-collectible context Close is
// a state transition only.
func (p *Plugin) Close(ctx context.Context) error {
	if !p.disposed.CompareAndSwap(false, true) {
		return nil
	}

	if !p.lc.Collectible() {
		return nil
	}

	u, ok := p.lc.hostLoader.(Unloader)
	if !ok {
		return nil
	}

	Logger().Debug("unload requested", zap.String("context_id", p.lc.ID()))
	if err := u.Unload(ctx); err != nil {
		return errors.Unload(err)
	}
	return nil
}
