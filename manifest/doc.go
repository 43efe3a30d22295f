// Package manifest resolves module and native-library names to file paths
// using the dependency manifest co-located with a plugin's main unit.
//
// For a main unit at /app/plugin/plugin.wasm the manifest lives at
// /app/plugin/plugin.deps.json:
//
//	{
//	  "dependencies": {
//	    "Helper": "libs/Helper.wasm"
//	  },
//	  "nativeLibraries": {
//	    "sqlite3": "runtimes/linux-x64/libsqlite3.so"
//	  }
//	}
//
// Relative entries are joined against the main unit's directory; absolute
// entries are used as-is. A missing manifest is not an error: the resolver
// simply resolves nothing and the load context falls back to probing.
//
// A Resolver is read-only after construction and safe for concurrent use.
package manifest
