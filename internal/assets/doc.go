// Package assets provides CSS styles and HTML templates for document export.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-ins)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in styles (paper, plain) and template
// sets embedded at compile time. FilesystemLoader allows users to provide
// custom assets from a directory, with path traversal protection and
// symlink resolution. AssetResolver is the loader the exporter uses: it
// tries the custom FilesystemLoader first, falling back to EmbeddedLoader
// if the asset is not found, so users can override a single template while
// keeping the rest of the defaults.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css            # CSS styles (e.g., paper.css)
//	└── templates/
//	    └── {name}/
//	        ├── titleblock.html   # Title, authors, date, abstract
//	        └── references.html   # Cited-works list
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
