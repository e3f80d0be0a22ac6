package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/heisync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
)

// DatabaseFileName is the name of the database file inside the data directory.
const DatabaseFileName = "heisync.db"

// Store is a unified SQLite-based storage that provides access to
// the store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.heisync/data/heisync.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".heisync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// InstitutionStore returns an InstitutionStore interface backed by this store.
func (s *Store) InstitutionStore() driven.InstitutionStore {
	return &institutionStore{store: s}
}

// CacheStore returns a CacheStore interface backed by this store.
func (s *Store) CacheStore() driven.CacheStore {
	return &cacheStore{store: s}
}

// migrate runs all pending migrations. Each up migration records its own
// version in schema_migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ==================== Institution Store ====================

// institutionStore implements driven.InstitutionStore.
type institutionStore struct {
	store *Store
}

var _ driven.InstitutionStore = (*institutionStore)(nil)

// columns maps the properties held in dedicated columns.
var columns = map[string]string{
	"id":                 "id",
	domain.FieldHEIID:    "hei_id",
	domain.FieldIndexKey: "index_key",
	domain.FieldLabel:    "label",
}

const institutionColumns = "id, hei_id, index_key, label, fields, created_at, updated_at"

// Save stores or updates an institution.
func (s *institutionStore) Save(ctx context.Context, inst *domain.Institution) error {
	if inst == nil || inst.ID == "" {
		return fmt.Errorf("%w: institution id is required", domain.ErrInvalidInput)
	}
	if inst.HEIID == "" {
		return fmt.Errorf("%w: hei_id is required", domain.ErrInvalidInput)
	}

	fields := inst.Fields
	if fields == nil {
		fields = map[string]domain.AttrValue{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}

	now := time.Now().UTC()
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}
	inst.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO institutions (id, hei_id, index_key, label, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hei_id = excluded.hei_id,
			index_key = excluded.index_key,
			label = excluded.label,
			fields = excluded.fields,
			updated_at = excluded.updated_at
	`, inst.ID, inst.HEIID, inst.IndexKey, inst.Label, string(fieldsJSON),
		inst.CreatedAt, inst.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: institution with hei_id %q", domain.ErrAlreadyExists, inst.HEIID)
	}
	if err != nil {
		return fmt.Errorf("saving institution: %w", err)
	}
	return nil
}

// Get retrieves an institution by local ID.
func (s *institutionStore) Get(ctx context.Context, id string) (*domain.Institution, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+institutionColumns+" FROM institutions WHERE id = ?", id)

	inst, err := scanInstitution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting institution: %w", err)
	}
	return inst, nil
}

// LoadByProperties returns every institution whose properties all match.
// Column-backed properties are filtered in SQL, the rest on the decoded fields.
func (s *institutionStore) LoadByProperties(
	ctx context.Context, props map[string]string,
) ([]domain.Institution, error) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		where []string
		args  []any
		rest  = make(map[string]string)
	)
	for _, name := range names {
		if col, ok := columns[name]; ok {
			where = append(where, col+" = ?")
			args = append(args, props[name])
			continue
		}
		rest[name] = props[name]
	}

	query := "SELECT " + institutionColumns + " FROM institutions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY lower(label), id"

	found, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Institution, 0, len(found))
	for i := range found {
		if found[i].Matches(rest) {
			out = append(out, found[i])
		}
	}
	return out, nil
}

// List returns all institutions ordered by label.
func (s *institutionStore) List(ctx context.Context) ([]domain.Institution, error) {
	return s.query(ctx, "SELECT "+institutionColumns+" FROM institutions ORDER BY lower(label), id")
}

// Delete removes an institution.
func (s *institutionStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM institutions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting institution: %w", err)
	}
	return nil
}

func (s *institutionStore) query(ctx context.Context, query string, args ...any) ([]domain.Institution, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying institutions: %w", err)
	}
	defer rows.Close()

	var out []domain.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning institution: %w", err)
		}
		out = append(out, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating institutions: %w", err)
	}
	return out, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInstitution(row scanner) (*domain.Institution, error) {
	var (
		inst       domain.Institution
		fieldsJSON string
	)
	err := row.Scan(&inst.ID, &inst.HEIID, &inst.IndexKey, &inst.Label, &fieldsJSON,
		&inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		return nil, err
	}

	inst.Fields = make(map[string]domain.AttrValue)
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &inst.Fields); err != nil {
			return nil, fmt.Errorf("unmarshalling fields: %w", err)
		}
	}
	return &inst, nil
}

// ==================== Cache Store ====================

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Get retrieves a snapshot.
func (s *cacheStore) Get(ctx context.Context, scope, key string) (*domain.CachedDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT scope, key, raw, updated_at FROM cached_documents
		WHERE scope = ? AND key = ?
	`, scope, key)

	var doc domain.CachedDocument
	err := row.Scan(&doc.Scope, &doc.Key, &doc.Raw, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached document: %w", err)
	}
	return &doc, nil
}

// Put creates or overwrites a snapshot.
func (s *cacheStore) Put(ctx context.Context, doc domain.CachedDocument) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cached_documents (scope, key, raw, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			raw = excluded.raw,
			updated_at = excluded.updated_at
	`, doc.Scope, doc.Key, doc.Raw, doc.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving cached document: %w", err)
	}
	return nil
}

// Delete removes a snapshot.
func (s *cacheStore) Delete(ctx context.Context, scope, key string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cached_documents WHERE scope = ? AND key = ?", scope, key)
	if err != nil {
		return fmt.Errorf("deleting cached document: %w", err)
	}
	return nil
}

// List returns every snapshot in a scope ordered by key.
func (s *cacheStore) List(ctx context.Context, scope string) ([]domain.CachedDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT scope, key, raw, updated_at FROM cached_documents
		WHERE scope = ? ORDER BY key
	`, scope)
	if err != nil {
		return nil, fmt.Errorf("listing cached documents: %w", err)
	}
	defer rows.Close()

	var out []domain.CachedDocument
	for rows.Next() {
		var doc domain.CachedDocument
		if err := rows.Scan(&doc.Scope, &doc.Key, &doc.Raw, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning cached document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cached documents: %w", err)
	}
	return out, nil
}
