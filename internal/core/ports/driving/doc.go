// Package driving defines the operations the CLI calls on the core: the
// institution manager, the field mapping service and the document cache.
//
// Implementations live in internal/core/services.
package driving
