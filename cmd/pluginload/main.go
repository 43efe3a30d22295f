package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/plugin-loader/host"
	"github.com/wippyai/plugin-loader/loader"
	"github.com/wippyai/plugin-loader/module"
)

func main() {
	var (
		pluginFile  = flag.String("plugin", "", "Path to the plugin's main unit")
		probes      = flag.String("probe", "", "Probing directories (comma-separated)")
		resources   = flag.String("resources", "", "Resource probing directories (comma-separated)")
		subpaths    = flag.String("subpaths", "", "Resource subpaths combined with probing dirs (comma-separated)")
		shared      = flag.String("share", "", "Module names preferred from the host environment (comma-separated)")
		resolve     = flag.String("resolve", "", "Module names to resolve after loading (comma-separated)")
		locale      = flag.String("locale", "", "Locale tag applied to resolved names")
		collectible = flag.Bool("collectible", false, "Build an unloadable context")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *pluginFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: pluginload -plugin <file.wasm> [-probe dir,...] [-share name,...]")
		fmt.Fprintln(os.Stderr, "       pluginload -plugin <file.wasm> -resolve Helper,Json [-locale fr-FR]")
		os.Exit(1)
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		loader.SetLogger(l)
		host.SetLogger(l)
	}

	if err := run(*pluginFile, *probes, *resources, *subpaths, *shared, *resolve, *locale, *collectible); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(pluginFile, probes, resources, subpaths, shared, resolve, locale string, collectible bool) error {
	ctx := context.Background()

	hl := host.NewWazeroLoader(ctx)
	p, err := loader.Open(ctx, loader.Config{
		MainUnitPath:     pluginFile,
		ProbingPaths:     split(probes),
		ResourcePaths:    split(resources),
		ResourceSubpaths: split(subpaths),
		SharedNames:      split(shared),
		HostLoader:       hl,
		Collectible:      collectible,
	})
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	unit, err := p.LoadMainUnit(ctx)
	if err != nil {
		return fmt.Errorf("load main unit: %w", err)
	}

	fmt.Printf("Plugin: %s\n", unit.Path())
	fmt.Printf("Unloadable: %v\n", p.Unloadable())

	refs := unit.References()
	fmt.Printf("References: %d\n", len(refs))
	for _, r := range refs {
		fmt.Printf("  %s\n", r)
	}

	lc, err := p.Context()
	if err != nil {
		return err
	}

	names := split(resolve)
	if len(names) == 0 {
		for _, r := range refs {
			names = append(names, r.Value)
		}
	}

	if len(names) > 0 {
		fmt.Printf("\nResolution:\n")
	}
	for _, n := range names {
		name := module.Name{Value: n, Locale: locale}
		m, err := lc.ResolveModule(ctx, name)
		switch {
		case err != nil:
			fmt.Printf("  %s: error: %v\n", name, err)
		case m == nil:
			fmt.Printf("  %s: unresolved\n", name)
		case m.Path() == "":
			fmt.Printf("  %s: shared from host environment\n", name)
		default:
			fmt.Printf("  %s: %s\n", name, m.Path())
		}
	}

	return nil
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
