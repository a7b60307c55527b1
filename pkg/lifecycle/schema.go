package lifecycle

import (
	"context"
)

// SchemaManager defines the interface for the hydro-table database schema.
// It uses GORM AutoMigrate, so schema management is idempotent and safe
// to run multiple times. Configuration is provided during construction.
type SchemaManager interface {
	// Create creates the schema, dropping existing tables first when
	// drop is true.
	Create(ctx context.Context, drop bool) error

	// Migrate updates the schema to the latest version.
	Migrate(ctx context.Context) error
}

// Publisher loads aggregated hydro-tables into a database used by
// forecast lookup services.
type Publisher interface {
	// Publish loads hydroTable.csv of every HUC, replacing rows those
	// HUCs had before. It returns the number of loaded rows.
	Publish(ctx context.Context, hucs []string) (int, error)
}
