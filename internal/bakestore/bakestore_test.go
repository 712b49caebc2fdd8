package bakestore

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "bakes.db")

	w, err := New(dbPath, Metadata{Name: "Test", Description: "Test bakes", Version: "1", Generator: "noisy test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	return w, dbPath
}

func testBake(name string, data []byte) Bake {
	return Bake{
		Name:      name,
		Kind:      "fbm2d",
		Params:    []byte(`{"octaves":5}`),
		Region:    "0,0,4,4",
		Width:     64,
		Height:    32,
		Format:    "png",
		Data:      data,
		CreatedAt: time.Unix(1700000000, 0),
	}
}

func TestWriter_New(t *testing.T) {
	w, dbPath := newTestWriter(t)
	defer w.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	var count int
	err := w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='bakes'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected bakes table to exist, got count=%d", count)
	}

	err = w.db.QueryRow("SELECT COUNT(*) FROM metadata").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query metadata: %v", err)
	}
	if count != 4 {
		t.Errorf("Expected 4 metadata rows, got %d", count)
	}
}

func TestWriter_PutRequiresName(t *testing.T) {
	w, _ := newTestWriter(t)
	defer w.Close()

	if err := w.Put(Bake{Data: []byte("x")}); err == nil {
		t.Error("Expected error for unnamed bake")
	}
}

func TestWriter_BatchFlush(t *testing.T) {
	w, dbPath := newTestWriter(t)

	for i := range DefaultBatchSize*2 + 3 {
		if err := w.Put(testBake(fmt.Sprintf("bake-%03d", i), []byte("data"))); err != nil {
			t.Fatalf("Failed to put bake %d: %v", i, err)
		}
	}

	// two full batches are already on disk
	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM bakes").Scan(&count); err != nil {
		t.Fatalf("Failed to query bakes: %v", err)
	}
	if count != DefaultBatchSize*2 {
		t.Errorf("Expected %d flushed bakes, got %d", DefaultBatchSize*2, count)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.QueryRow("SELECT COUNT(*) FROM bakes").Scan(&count); err != nil {
		t.Fatalf("Failed to query bakes: %v", err)
	}
	if count != DefaultBatchSize*2+3 {
		t.Errorf("Expected %d bakes, got %d", DefaultBatchSize*2+3, count)
	}
}

func TestWriter_ReplaceExisting(t *testing.T) {
	w, dbPath := newTestWriter(t)

	if err := w.Put(testBake("hills", []byte("first version"))); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if err := w.Put(testBake("hills", []byte("second version"))); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	entries, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 bake (replaced), got %d", len(entries))
	}

	b, err := r.Get("hills")
	if err != nil {
		t.Fatal(err)
	}
	if string(b.Data) != "second version" {
		t.Errorf("Expected replaced data, got %q", b.Data)
	}
}

func TestWriter_ReopenKeepsBakes(t *testing.T) {
	w, dbPath := newTestWriter(t)
	if err := w.Put(testBake("a", []byte("1"))); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2, err := New(dbPath, Metadata{Name: "Renamed"})
	if err != nil {
		t.Fatal(err)
	}
	if err := w2.Put(testBake("b", []byte("2"))); err != nil {
		t.Fatal(err)
	}
	if err := w2.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	entries, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Name != "a" || entries[1].Name != "b" {
		t.Errorf("Expected bakes a and b, got %+v", entries)
	}

	meta, err := r.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta != (Metadata{Name: "Renamed"}) {
		t.Errorf("Expected replaced metadata, got %+v", meta)
	}
}

func TestWriter_ZeroMetadataKeepsStored(t *testing.T) {
	w, dbPath := newTestWriter(t)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2, err := New(dbPath, Metadata{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w2.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	meta, err := r.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "Test" || meta.Generator != "noisy test" {
		t.Errorf("Expected original metadata, got %+v", meta)
	}
}

func TestWriter_Delete(t *testing.T) {
	w, _ := newTestWriter(t)
	defer w.Close()

	if err := w.Put(testBake("gone", []byte("x"))); err != nil {
		t.Fatal(err)
	}
	if err := w.Delete("gone"); err != nil {
		t.Fatalf("Failed to delete pending bake: %v", err)
	}
	if err := w.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReader_RoundTrip(t *testing.T) {
	w, dbPath := newTestWriter(t)

	data := bytes.Repeat([]byte("noise"), 1000)
	want := testBake("clouds", data)
	if err := w.Put(want); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	got, err := r.Get("clouds")
	if err != nil {
		t.Fatalf("Failed to get bake: %v", err)
	}
	if !bytes.Equal(got.Data, data) {
		t.Error("Bake data mismatch")
	}
	if got.Kind != want.Kind || got.Region != want.Region || got.Width != 64 || got.Height != 32 || got.Format != "png" {
		t.Errorf("Bake fields mismatch: %+v", got)
	}
	if string(got.Params) != `{"octaves":5}` {
		t.Errorf("Expected params to round-trip, got %s", got.Params)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("Expected created_at %v, got %v", want.CreatedAt, got.CreatedAt)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	// gzip shrinks the repeated payload
	if entries[0].Size <= 0 || entries[0].Size >= len(data) {
		t.Errorf("Expected compressed size below %d, got %d", len(data), entries[0].Size)
	}

	meta, err := r.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "Test" || meta.Generator != "noisy test" {
		t.Errorf("Metadata mismatch: %+v", meta)
	}
}

func TestReader_NotFound(t *testing.T) {
	w, dbPath := newTestWriter(t)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty list, got %d", len(entries))
	}
}

func TestReader_MissingSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE other (x INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := OpenReader(dbPath); err == nil {
		t.Error("Expected error for database without bakes table")
	}
}
