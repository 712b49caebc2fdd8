package bakestore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultBatchSize is the number of bakes to buffer before flushing to the database.
	DefaultBatchSize = 16
)

// Writer writes bakes to a store.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []Bake
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New opens the store at path for writing.
// The database is created if it doesn't exist, and the schema is initialized.
// Existing bakes are kept; metadata is replaced unless metadata is the zero
// value.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 50000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if metadata != (Metadata{}) {
		if err := insertMetadata(db, metadata); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]Bake, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
		metadata:  metadata,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS bakes (
			name TEXT NOT NULL PRIMARY KEY,
			kind TEXT NOT NULL,
			params TEXT NOT NULL,
			region TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			format TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func insertMetadata(db *sql.DB, meta Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return nil
}

// Put adds a bake to the batch, replacing any bake of the same name on
// flush. When the batch is full, it is flushed.
func (w *Writer) Put(b Bake) error {
	if b.Name == "" {
		return fmt.Errorf("bake name must not be empty")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if len(b.Params) == 0 {
		b.Params = []byte("{}")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, b)

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered bakes to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered bakes to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO bakes
		(name, kind, params, region, width, height, format, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range w.batch {
		compressed, err := gzipCompress(b.Data)
		if err != nil {
			return fmt.Errorf("failed to compress bake %q: %w", b.Name, err)
		}

		if _, err := stmt.Exec(b.Name, b.Kind, string(b.Params), b.Region, b.Width, b.Height,
			b.Format, compressed, b.CreatedAt.Unix()); err != nil {
			return fmt.Errorf("failed to insert bake %q: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Delete removes a bake, flushing pending writes first.
func (w *Writer) Delete(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.flushLocked(); err != nil {
		return err
	}
	res, err := w.db.Exec("DELETE FROM bakes WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete bake %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Close flushes any remaining bakes and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
