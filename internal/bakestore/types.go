// Package bakestore keeps rendered noise images ("bakes") in a SQLite file.
package bakestore

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a bake does not exist.
var ErrNotFound = errors.New("bake not found")

// Metadata describes the store as a whole.
type Metadata struct {
	Name        string // Human-readable store identifier
	Description string
	Version     string
	Generator   string // Tool that wrote the store
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Generator != "" {
		result["generator"] = m.Generator
	}

	return result
}

func metadataFromMap(m map[string]string) Metadata {
	return Metadata{
		Name:        m["name"],
		Description: m["description"],
		Version:     m["version"],
		Generator:   m["generator"],
	}
}

// Bake is one stored image with the parameters that produced it.
type Bake struct {
	Name      string
	Kind      string
	Params    []byte // JSON
	Region    string
	Width     int
	Height    int
	Format    string // png or tiff
	Data      []byte // encoded image (gzip-compressed at rest)
	CreatedAt time.Time
}

// Entry is a bake without its image data.
type Entry struct {
	Name      string
	Kind      string
	Region    string
	Width     int
	Height    int
	Format    string
	Size      int // compressed bytes
	CreatedAt time.Time
}
