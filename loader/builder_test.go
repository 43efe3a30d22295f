package loader

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	loadererrors "github.com/wippyai/plugin-loader/errors"
)

func isInvalidArgument(err error) bool {
	return errors.Is(err, &loadererrors.Error{
		Phase: loadererrors.PhaseConfigure,
		Kind:  loadererrors.KindInvalidArgument,
	})
}

func TestBuilder_ArgumentValidation(t *testing.T) {
	b := NewBuilder(&fakeHostLoader{})

	tests := []struct {
		name string
		call func() error
	}{
		{"empty main path", func() error { return b.SetMainUnitPath("") }},
		{"relative main path", func() error { return b.SetMainUnitPath("plugin/plugin.wasm") }},
		{"nil environment", func() error { return b.SetHostEnvironment(nil) }},
		{"empty probing path", func() error { return b.AddProbingPath("") }},
		{"relative probing path", func() error { return b.AddProbingPath("libs") }},
		{"empty resource path", func() error { return b.AddResourcePath("") }},
		{"relative resource path", func() error { return b.AddResourcePath("res") }},
		{"empty resource subpath", func() error { return b.AddResourceSubpath("") }},
		{"absolute resource subpath", func() error { return b.AddResourceSubpath("/res") }},
		{"empty extension", func() error { return b.SetModuleExtension("") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !isInvalidArgument(err) {
				t.Errorf("expected invalid_argument, got %v", err)
			}
		})
	}
}

func TestBuilder_BuildWithoutMainPath(t *testing.T) {
	b := NewBuilder(&fakeHostLoader{})
	_, err := b.Build()
	if !errors.Is(err, &loadererrors.Error{
		Phase: loadererrors.PhaseBuild,
		Kind:  loadererrors.KindInvalidOperation,
	}) {
		t.Fatalf("expected invalid_operation, got %v", err)
	}
}

func TestBuilder_BuildWithoutHostLoader(t *testing.T) {
	_, mainPath := plugindir(t)
	b := NewBuilder(nil)
	if err := b.SetMainUnitPath(mainPath); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error building without a host loader")
	}
}

func TestBuilder_ResourceRoots(t *testing.T) {
	dir, mainPath := plugindir(t)

	tests := []struct {
		name     string
		probing  []string
		resource []string
		subpaths []string
		want     []string
	}{
		{
			name: "base only",
			want: []string{dir},
		},
		{
			name:     "resource paths after base",
			resource: []string{"/res/a", "/res/b"},
			want:     []string{dir, "/res/a", "/res/b"},
		},
		{
			name:     "cross product preserves order",
			probing:  []string{"/p1", "/p2"},
			resource: []string{"/res"},
			subpaths: []string{"x", "y"},
			want: []string{
				dir, "/res",
				filepath.Join("/p1", "x"), filepath.Join("/p1", "y"),
				filepath.Join("/p2", "x"), filepath.Join("/p2", "y"),
			},
		},
		{
			name:    "probing paths alone add no roots",
			probing: []string{"/p1"},
			want:    []string{dir},
		},
		{
			name:     "subpaths alone add no roots",
			subpaths: []string{"x"},
			want:     []string{dir},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(&fakeHostLoader{})
			if err := b.SetMainUnitPath(mainPath); err != nil {
				t.Fatal(err)
			}
			for _, p := range tt.probing {
				if err := b.AddProbingPath(p); err != nil {
					t.Fatal(err)
				}
			}
			for _, p := range tt.resource {
				if err := b.AddResourcePath(p); err != nil {
					t.Fatal(err)
				}
			}
			for _, p := range tt.subpaths {
				if err := b.AddResourceSubpath(p); err != nil {
					t.Fatal(err)
				}
			}

			lc, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}
			if got := lc.ResourceRoots(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("roots = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder_PreferHostEnvironmentName(t *testing.T) {
	ctx := context.Background()
	_, mainPath := plugindir(t)

	t.Run("walks the reference closure", func(t *testing.T) {
		env := newFakeEnv().add("A", "B", "C").add("B", "C").add("C")
		b := NewBuilder(&fakeHostLoader{})
		if err := b.SetMainUnitPath(mainPath); err != nil {
			t.Fatal(err)
		}
		if err := b.SetHostEnvironment(env); err != nil {
			t.Fatal(err)
		}

		if err := b.PreferHostEnvironmentName(ctx, "A"); err != nil {
			t.Fatal(err)
		}

		lc, err := b.Build()
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range []string{"A", "B", "C"} {
			if !lc.Shared(n) {
				t.Errorf("%s not shared", n)
			}
		}
		if lc.Shared("D") {
			t.Error("unexpected shared name D")
		}
	})

	t.Run("terminates on cycles", func(t *testing.T) {
		env := newFakeEnv().add("A", "B").add("B", "A")
		b := NewBuilder(&fakeHostLoader{})
		if err := b.SetMainUnitPath(mainPath); err != nil {
			t.Fatal(err)
		}
		if err := b.SetHostEnvironment(env); err != nil {
			t.Fatal(err)
		}

		if err := b.PreferHostEnvironmentName(ctx, "A"); err != nil {
			t.Fatal(err)
		}
		if env.loadCount("A") != 1 || env.loadCount("B") != 1 {
			t.Errorf("cycle caused repeated loads: A=%d B=%d", env.loadCount("A"), env.loadCount("B"))
		}
	})

	t.Run("idempotent across calls", func(t *testing.T) {
		env := newFakeEnv().add("A", "B").add("B")
		b := NewBuilder(&fakeHostLoader{})
		if err := b.SetMainUnitPath(mainPath); err != nil {
			t.Fatal(err)
		}
		if err := b.SetHostEnvironment(env); err != nil {
			t.Fatal(err)
		}

		if err := b.PreferHostEnvironmentName(ctx, "A"); err != nil {
			t.Fatal(err)
		}
		if err := b.PreferHostEnvironmentName(ctx, "A"); err != nil {
			t.Fatal(err)
		}
		if env.loadCount("A") != 1 {
			t.Errorf("second call re-loaded A: %d", env.loadCount("A"))
		}
	})

	t.Run("unnamed references are skipped", func(t *testing.T) {
		env := newFakeEnv().add("A", "", "B").add("B")
		b := NewBuilder(&fakeHostLoader{})
		if err := b.SetMainUnitPath(mainPath); err != nil {
			t.Fatal(err)
		}
		if err := b.SetHostEnvironment(env); err != nil {
			t.Fatal(err)
		}

		if err := b.PreferHostEnvironmentName(ctx, "A"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("host failure surfaces at configuration time", func(t *testing.T) {
		env := newFakeEnv()
		b := NewBuilder(&fakeHostLoader{})
		if err := b.SetMainUnitPath(mainPath); err != nil {
			t.Fatal(err)
		}
		if err := b.SetHostEnvironment(env); err != nil {
			t.Fatal(err)
		}

		err := b.PreferHostEnvironmentName(ctx, "Absent")
		if !errors.Is(err, &loadererrors.Error{
			Phase: loadererrors.PhaseHost,
			Kind:  loadererrors.KindHostLoad,
		}) {
			t.Fatalf("expected host_load error, got %v", err)
		}
	})
}

func TestBuilder_BuildCopiesConfiguration(t *testing.T) {
	_, mainPath := plugindir(t)

	b := NewBuilder(&fakeHostLoader{})
	if err := b.SetMainUnitPath(mainPath); err != nil {
		t.Fatal(err)
	}
	if err := b.AddResourcePath("/res"); err != nil {
		t.Fatal(err)
	}

	lc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	before := lc.ResourceRoots()

	// Mutating the builder afterwards must not leak into the built context.
	if err := b.AddResourcePath("/res2"); err != nil {
		t.Fatal(err)
	}
	if got := lc.ResourceRoots(); !reflect.DeepEqual(got, before) {
		t.Errorf("context changed after Build: %v -> %v", before, got)
	}

	// The builder remains usable for a second Build.
	lc2, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(lc2.ResourceRoots()) != len(before)+1 {
		t.Errorf("second Build missing new resource path")
	}
	if lc2.ID() == lc.ID() {
		t.Error("contexts must have distinct IDs")
	}
}
