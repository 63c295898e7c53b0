package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// dbFileName is the database file inside the index directory.
const dbFileName = "index.db"

// Meta keys stored in index_meta.
const (
	metaDimensions = "dimensions"
)

// Store is a SQLite-backed vector store. The database is opened lazily
// so that constructing a Store for a not-yet-built index is valid; every
// read on an absent index fails with domain.ErrNotFound.
type Store struct {
	mu  sync.Mutex
	dir string
	db  *sql.DB
}

// New creates a store rooted at the given index directory. Nothing is
// created on disk until Rebuild runs.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the index directory.
func (s *Store) Path() string {
	return s.dir
}

// Exists reports whether a persisted index is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, dbFileName))
	return err == nil
}

// Rebuild deletes any prior index in its entirety and creates an empty
// one. Failures to remove or recreate the path surface as
// domain.ErrStorage, and no partial state is left behind as ready.
func (s *Store) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		s.db.Close()
		s.db = nil
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("%w: removing %s: %v", domain.ErrStorage, s.dir, err)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrStorage, s.dir, err)
	}

	db, err := s.openLocked()
	if err != nil {
		// Do not leave a half-initialised file behind as "ready".
		os.RemoveAll(s.dir)
		return fmt.Errorf("%w: initialising index: %v", domain.ErrStorage, err)
	}
	s.db = db
	return nil
}

// AddBatch inserts one batch of passages in a single transaction.
// Once committed, the batch survives any later batch's failure.
func (s *Store) AddBatch(ctx context.Context, passages []domain.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("%w: %d passages but %d vectors",
			domain.ErrInvalidInput, len(passages), len(vectors))
	}
	if len(passages) == 0 {
		return nil
	}

	db, err := s.handle()
	if err != nil {
		return err
	}

	dims, err := s.dimensions(ctx, db)
	if err != nil {
		return err
	}
	for i, vec := range vectors {
		if dims > 0 && len(vec) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(vec), dims)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, content, start_index, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range passages {
		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling passage metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, p.ID, p.Content, p.StartIndex,
			string(metadataJSON), float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("inserting passage: %w", err)
		}
	}

	if dims == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO index_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, metaDimensions, strconv.Itoa(len(vectors[0]))); err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Search scans all stored vectors and returns the top k by inner
// product, descending. Fewer than k entries returns all of them; an
// empty index returns an empty result.
func (s *Store) Search(ctx context.Context, vector []float32, k int) (domain.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidInput, k)
	}

	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, content, start_index, metadata, embedding FROM passages
	`)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var results domain.RetrievalResult
	for rows.Next() {
		var (
			p            domain.Passage
			metadataJSON sql.NullString
			blob         []byte
		)
		if err := rows.Scan(&p.ID, &p.Content, &p.StartIndex, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &p.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling passage metadata: %w", err)
			}
		}

		results = append(results, domain.ScoredPassage{
			Passage: p,
			Score:   innerProduct(vector, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	if results == nil {
		results = domain.RetrievalResult{}
	}
	return results, nil
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return count, nil
}

// Dimensions returns the recorded embedding dimension, 0 when the index
// is empty.
func (s *Store) Dimensions(ctx context.Context) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	return s.dimensions(ctx, db)
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// handle returns the open database, opening it if the index exists.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if !s.Exists() {
		return nil, fmt.Errorf("%w: no index at %s", domain.ErrNotFound, s.dir)
	}

	db, err := s.openLocked()
	if err != nil {
		return nil, fmt.Errorf("%w: opening index: %v", domain.ErrStorage, err)
	}
	s.db = db
	return db, nil
}

// openLocked opens the database and runs migrations. Caller holds s.mu.
func (s *Store) openLocked() (*sql.DB, error) {
	dbPath := filepath.Join(s.dir, dbFileName)

	// WAL mode for concurrent readers during long scans.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func (s *Store) dimensions(ctx context.Context, db *sql.DB) (int, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM index_meta WHERE key = ?`, metaDimensions).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading index meta: %w", err)
	}

	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing dimensions %q: %w", value, err)
	}
	return dims, nil
}

// migrate runs all pending up migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// innerProduct scores two vectors. Both sides are L2-normalised by the
// services layer, so this realises cosine similarity.
func innerProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
