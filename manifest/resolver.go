package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/plugin-loader/errors"
)

// Suffix is appended to the main unit's stem to locate its manifest.
const Suffix = ".deps.json"

type document struct {
	Dependencies    map[string]string `json:"dependencies"`
	NativeLibraries map[string]string `json:"nativeLibraries"`
}

// Resolver maps module and native-library names to concrete file paths using
// the dependency manifest co-located with the main unit.
type Resolver struct {
	baseDir   string
	modules   map[string]string
	libraries map[string]string
}

// NewResolver reads the manifest next to mainUnitPath. A missing manifest
// yields a resolver that resolves nothing; a malformed one is an error.
func NewResolver(mainUnitPath string) (*Resolver, error) {
	r := &Resolver{
		baseDir:   filepath.Dir(mainUnitPath),
		modules:   map[string]string{},
		libraries: map[string]string{},
	}

	path := Path(mainUnitPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, errors.Manifest(path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Manifest(path, err)
	}

	r.modules = doc.Dependencies
	r.libraries = doc.NativeLibraries
	if r.modules == nil {
		r.modules = map[string]string{}
	}
	if r.libraries == nil {
		r.libraries = map[string]string{}
	}
	return r, nil
}

// Path returns the manifest location for a given main unit path.
func Path(mainUnitPath string) string {
	ext := filepath.Ext(mainUnitPath)
	return strings.TrimSuffix(mainUnitPath, ext) + Suffix
}

// ModulePath returns the manifest-declared path for a module name,
// or "" when the manifest has no entry for it.
func (r *Resolver) ModulePath(name string) string {
	return r.resolve(r.modules, name)
}

// LibraryPath returns the manifest-declared path for a native library name,
// or "" when the manifest has no entry for it.
func (r *Resolver) LibraryPath(name string) string {
	return r.resolve(r.libraries, name)
}

// Len returns the number of manifest entries (modules plus libraries).
func (r *Resolver) Len() int {
	return len(r.modules) + len(r.libraries)
}

func (r *Resolver) resolve(entries map[string]string, name string) string {
	rel, ok := entries[name]
	if !ok || rel == "" {
		return ""
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.baseDir, rel)
}
