// Package backend opens the configured record source: JSON fixtures
// served from memory or a sqlite snapshot of a budget dataset.
package backend

import (
	"context"

	"actualboard/internal/actual"
)

// Kind names a record source implementation.
type Kind string

const (
	MemoryKind Kind = "memory"
	SQLiteKind Kind = "sqlite"
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is a known backend.
func (k Kind) IsValid() bool {
	switch k {
	case MemoryKind, SQLiteKind:
		return true
	default:
		return false
	}
}

// Kinds returns all valid backend kinds.
func Kinds() []Kind {
	return []Kind{MemoryKind, SQLiteKind}
}

// CleanupFunc releases a source's resources.
type CleanupFunc func() error

// Result contains the opened source and an optional cleanup function.
// Cleanup is nil for sources with nothing to release.
type Result struct {
	Source  actual.Source
	Cleanup CleanupFunc
}

// Factory opens record sources based on configuration.
type Factory interface {
	Open(ctx context.Context, config Config) (*Result, error)
}

// Config holds what a factory needs to open a source.
type Config struct {
	Kind Kind

	// Memory backend: directory holding the JSON fixture files.
	FixturesDir string

	// SQLite backend: path to the snapshot database.
	SnapshotDB string
}
