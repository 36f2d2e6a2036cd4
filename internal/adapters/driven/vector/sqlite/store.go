package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vidhi/internal/adapters/driven/vector"
	"github.com/custodia-labs/vidhi/internal/adapters/driven/vector/sqlite/migrations"
	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store. Indexes are rows in
// vector_indexes; records are rows in vectors keyed by (index, id).
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: database path is required: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

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

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
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
		// "001_vectors.up.sql" -> 1
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
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ListIndexes returns index names in sorted order.
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM vector_indexes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning index name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateIndex creates an empty index. Creating an existing index fails.
func (s *Store) CreateIndex(ctx context.Context, spec domain.IndexSpec) error {
	if spec.Name == "" || spec.Dimension <= 0 {
		return fmt.Errorf("index spec %+v: %w", spec, domain.ErrInvalidInput)
	}
	if spec.Metric == "" {
		spec.Metric = domain.MetricCosine
	}
	if spec.Metric != domain.MetricCosine {
		return fmt.Errorf("metric %q: %w", spec.Metric, domain.ErrUnsupportedType)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vector_indexes (name, dimension, metric, region)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, spec.Name, spec.Dimension, string(spec.Metric), spec.Region)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", spec.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index %s already exists: %w", spec.Name, domain.ErrInvalidInput)
	}
	return nil
}

// DescribeIndex reports an index's dimension and record count. SQLite
// indexes are ready as soon as they exist.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*domain.IndexDescription, error) {
	desc := &domain.IndexDescription{Name: name, Ready: true}
	var metric string
	err := s.db.QueryRowContext(ctx, `
		SELECT i.dimension, i.metric, (SELECT COUNT(*) FROM vectors v WHERE v.index_name = i.name)
		FROM vector_indexes i WHERE i.name = ?
	`, name).Scan(&desc.Dimension, &metric, &desc.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("describing index %s: %w", name, err)
	}
	desc.Metric = domain.Metric(metric)
	return desc, nil
}

// Index returns a handle to a named index.
func (s *Store) Index(name string) driven.VectorIndex {
	return &index{store: s, name: name}
}

// dimension returns the index dimension or ErrNotFound.
func (s *Store) dimension(ctx context.Context, name string) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx, "SELECT dimension FROM vector_indexes WHERE name = ?", name).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading index %s: %w", name, err)
	}
	return dim, nil
}

// index implements driven.VectorIndex over one row of vector_indexes.
type index struct {
	store *Store
	name  string
}

var _ driven.VectorIndex = (*index)(nil)

// Query scans every vector in the index and returns the topK by cosine
// similarity.
func (x *index) Query(ctx context.Context, vec []float32, topK int) ([]driven.VectorMatch, error) {
	dim, err := x.store.dimension(ctx, x.name)
	if err != nil {
		return nil, err
	}
	if len(vec) != dim {
		return nil, fmt.Errorf("query has %d dimensions, index %s has %d: %w",
			len(vec), x.name, dim, domain.ErrDimensionMismatch)
	}

	rows, err := x.store.db.QueryContext(ctx,
		"SELECT id, embedding, metadata FROM vectors WHERE index_name = ?", x.name)
	if err != nil {
		return nil, fmt.Errorf("querying index %s: %w", x.name, err)
	}
	defer rows.Close()

	var matches []driven.VectorMatch
	for rows.Next() {
		var (
			id       string
			blob     []byte
			metaJSON string
		)
		if err := rows.Scan(&id, &blob, &metaJSON); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		meta, err := decodeMetadata(metaJSON)
		if err != nil {
			return nil, fmt.Errorf("decoding metadata of %s: %w", id, err)
		}
		matches = append(matches, driven.VectorMatch{
			ID:       id,
			Score:    vector.Cosine(vec, bytesToFloat32Slice(blob)),
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vector.TopK(matches, topK), nil
}

// Upsert inserts or replaces records in one transaction. Records whose
// dimension differs from the index are rejected before anything is written.
func (x *index) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	dim, err := x.store.dimension(ctx, x.name)
	if err != nil {
		return err
	}
	for _, r := range records {
		if len(r.Values) != dim {
			return fmt.Errorf("record %s has %d dimensions, index %s has %d: %w",
				r.ID, len(r.Values), x.name, dim, domain.ErrDimensionMismatch)
		}
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (index_name, id, embedding, metadata, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(index_name, id) DO UPDATE SET
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metaJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata of %s: %w", r.ID, err)
		}
		if r.Metadata == nil {
			metaJSON = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx, x.name, r.ID, float32SliceToBytes(r.Values), string(metaJSON)); err != nil {
			return fmt.Errorf("upserting %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// float32SliceToBytes encodes vectors as little-endian float32.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// decodeMetadata restores the metadata shapes written by Upsert: integral
// numbers come back as int64, other numbers as float64, and string arrays
// as []string.
func decodeMetadata(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	for k, v := range raw {
		raw[k] = restoreValue(v)
	}
	return raw, nil
}

func restoreValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		strs := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return val
			}
			strs = append(strs, s)
		}
		return strs
	default:
		return v
	}
}
