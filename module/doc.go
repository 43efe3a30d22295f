// Package module defines the identity and artifact types shared by the
// loader and host packages.
//
// A Name identifies a loadable module, optionally qualified by a locale tag.
// Neutral names (empty locale) resolve via the manifest and flat probing;
// localized names resolve only via resource roots.
//
// Module and Library are handles to artifacts the host loader has mapped into
// the process. References() exposes the module names a loaded module
// statically imports, which drives the shared-name closure walk.
package module
