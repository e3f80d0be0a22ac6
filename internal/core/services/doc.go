// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The remote side is a chain: Fetcher retrieves and validates JSON:API
// documents, DocumentCache keeps them per scope and Processor turns them
// into lookup structures. InstitutionManager combines that chain with the
// field mapping and the institution store.
package services
