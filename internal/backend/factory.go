package backend

import (
	"context"
	"fmt"
	"log/slog"

	"actualboard/internal/actual/memory"
	"actualboard/internal/actual/sqlite"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// Open implements Factory.Open.
func (f *DefaultFactory) Open(ctx context.Context, config Config) (*Result, error) {
	if !config.Kind.IsValid() {
		return nil, fmt.Errorf("invalid backend kind: %s", config.Kind)
	}

	switch config.Kind {
	case SQLiteKind:
		return f.openSQLite(config)
	case MemoryKind:
		return f.openMemory(config)
	default:
		return nil, fmt.Errorf("unsupported backend kind: %s", config.Kind)
	}
}

func (f *DefaultFactory) openSQLite(config Config) (*Result, error) {
	store, err := sqlite.Open(config.SnapshotDB)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	f.logger.Info("Initialized sqlite backend", "db_path", config.SnapshotDB)

	return &Result{
		Source:  store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) openMemory(config Config) (*Result, error) {
	store, err := memory.NewFromFiles(config.FixturesDir)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	f.logger.Info("Initialized memory backend", "fixtures_dir", config.FixturesDir)

	return &Result{
		Source: store,
	}, nil
}
