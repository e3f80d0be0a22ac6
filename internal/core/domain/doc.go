// Package domain defines the core business entities for heisync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A decoded JSON:API payload (index or item list)
//   - Record: One typed, identified entry of a Document
//   - AttrValue: A remote attribute value (scalar, list or keyed map)
//   - CachedDocument: A raw payload snapshot held by the document cache
//   - FieldMap: Remote attribute name to local field name associations
//   - Institution: A locally persisted higher-education institution
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
