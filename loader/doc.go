// Package loader implements isolated, per-plugin load contexts.
//
// # Main Types
//
//   - Builder: accumulates configuration and produces a LoadContext
//   - LoadContext: the resolution engine mapping names to artifacts
//   - Plugin: the lifecycle facade owning exactly one LoadContext
//
// # Quick Start
//
//	hl, _ := host.NewWazeroLoader(ctx)
//	p, err := loader.Open(ctx, loader.Config{
//	    MainUnitPath: "/app/plugin/plugin.wasm",
//	    ProbingPaths: []string{"/app/plugin/libs"},
//	    SharedNames:  []string{"Shared.Types"},
//	    HostLoader:   hl,
//	    Collectible:  true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close(ctx)
//
//	mod, err := p.LoadMainUnit(ctx)
//
// # Resolution Order
//
// For a module name the context consults, in order:
//
//  1. The host environment, if the name was marked shared
//  2. The dependency manifest co-located with the main unit
//  3. Resource roots (localized names only; never falls through)
//  4. The main unit's directory, then each probing path in order
//
// For a native library only the manifest is consulted; an unresolved name
// defers to the host loader's own OS search rules.
//
// # Thread Safety
//
// Builder is NOT safe for concurrent use; configure it from one goroutine
// before Build. LoadContext is immutable after Build and safe for concurrent
// resolution. Plugin.Close is safe to call from multiple goroutines; the
// unload request is issued at most once.
package loader
