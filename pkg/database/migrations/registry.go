package migrations

import (
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

type namedMigration struct {
	name string
	fn   func(*gorm.DB) error
}

var (
	registryMu sync.RWMutex
	registry   []namedMigration
)

// Register adds a migration in FIFO order. Registering a name twice keeps the first entry.
func Register(name string, fn func(*gorm.DB) error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range registry {
		if existing.name == name {
			return
		}
	}
	registry = append(registry, namedMigration{name: name, fn: fn})
}

// Names lists registered migrations in execution order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for _, m := range registry {
		names = append(names, m.name)
	}
	return names
}

// Run executes registered migrations sequentially, stopping at the first failure.
func Run(db *gorm.DB, log *slog.Logger) error {
	registryMu.RLock()
	pending := make([]namedMigration, len(registry))
	copy(pending, registry)
	registryMu.RUnlock()

	if log == nil {
		log = slog.Default()
	}

	if len(pending) == 0 {
		log.Info("no database migrations registered")
		return nil
	}

	for _, migration := range pending {
		log.Info("running migration", slog.String("name", migration.name))
		if err := migration.fn(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.name, err)
		}
	}

	log.Info("database migrations completed", slog.Int("count", len(pending)))
	return nil
}
