package bakestore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"
)

// Reader reads bakes from a store.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a store for reading. The file must not change while the
// reader is open.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='bakes'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain bakes table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// Get returns a bake with its data decompressed.
func (r *Reader) Get(name string) (Bake, error) {
	var (
		b          Bake
		params     string
		compressed []byte
		created    int64
	)
	err := r.db.QueryRow(
		"SELECT name, kind, params, region, width, height, format, data, created_at FROM bakes WHERE name = ?",
		name,
	).Scan(&b.Name, &b.Kind, &params, &b.Region, &b.Width, &b.Height, &b.Format, &compressed, &created)

	if errors.Is(err, sql.ErrNoRows) {
		return Bake{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Bake{}, fmt.Errorf("failed to query bake: %w", err)
	}

	b.Data, err = gzipDecompress(compressed)
	if err != nil {
		return Bake{}, fmt.Errorf("failed to decompress bake %q: %w", name, err)
	}
	b.Params = []byte(params)
	b.CreatedAt = time.Unix(created, 0)

	return b, nil
}

// List returns every bake without data, ordered by name.
func (r *Reader) List() ([]Entry, error) {
	rows, err := r.db.Query(
		"SELECT name, kind, region, width, height, format, length(data), created_at FROM bakes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query bakes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.Name, &e.Kind, &e.Region, &e.Width, &e.Height, &e.Format, &e.Size, &created); err != nil {
			return nil, fmt.Errorf("failed to scan bake row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bakes: %w", err)
	}

	return entries, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return metadataFromMap(metaMap), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
