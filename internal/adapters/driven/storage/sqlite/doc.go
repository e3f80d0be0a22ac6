// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements two store interfaces over a single database connection:
//
//   - InstitutionStore: Institution persistence, with hei_id unique
//   - CacheStore: Scoped snapshots of fetched JSON:API documents
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.heisync/data/heisync.db
package sqlite
