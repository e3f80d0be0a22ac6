// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ConfigStore: Application configuration (index endpoint, field mapping)
//   - CacheStore: Scoped snapshots of fetched JSON:API documents
//   - InstitutionStore: Local institution persistence
//
// # Optional Interfaces
//
//   - HTTPDoer: Outbound HTTP. Defaults to an *http.Client when nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driving package
package driven
