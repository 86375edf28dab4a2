package backend

import (
	"fmt"

	"actualboard/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	kind := Kind(appConfig.Backend.Kind)
	if !kind.IsValid() {
		return Config{}, fmt.Errorf("invalid backend kind in config: %s", appConfig.Backend.Kind)
	}

	return Config{
		Kind:        kind,
		FixturesDir: appConfig.Backend.FixturesDir,
		SnapshotDB:  appConfig.Backend.SnapshotDB,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid backend kind: %s", c.Kind)
	}

	switch c.Kind {
	case SQLiteKind:
		if c.SnapshotDB == "" {
			return fmt.Errorf("snapshot database path is required for the sqlite backend")
		}
	case MemoryKind:
		// The memory backend serves its demo dataset when FixturesDir
		// is empty or holds no fixture files.
	}

	return nil
}
