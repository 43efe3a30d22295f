package module

// Name identifies a loadable module, optionally qualified by a locale tag.
// The zero value is the unnamed module, which no resolver can satisfy.
type Name struct {
	// Value is the simple module name, without extension or directory.
	Value string
	// Locale is a BCP 47 tag for localized resource modules.
	// Empty means locale-neutral.
	Locale string
}

// Neutral constructs a locale-neutral name.
func Neutral(value string) Name {
	return Name{Value: value}
}

// Localized constructs a locale-qualified name.
func Localized(value, locale string) Name {
	return Name{Value: value, Locale: locale}
}

// IsNeutral reports whether the name carries no locale tag.
func (n Name) IsNeutral() bool {
	return n.Locale == ""
}

func (n Name) String() string {
	if n.Locale == "" {
		return n.Value
	}
	return n.Value + " (" + n.Locale + ")"
}

// Module is a handle to a loaded module artifact.
type Module interface {
	// Name returns the identity the module was loaded under.
	Name() Name
	// Path returns the on-disk location the artifact was loaded from.
	// Empty for modules that exist only in a host environment.
	Path() string
	// References returns the module names this module statically imports.
	References() []Name
}

// Library is a handle to a loaded native library.
type Library interface {
	Name() string
	Path() string
}
