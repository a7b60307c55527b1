package db

import (
	"context"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines basic database management operations. It manages the
// connection lifecycle and exposes the pgxpool.Pool for the schema
// manager and the publisher to run their own SQL, including CopyFrom
// bulk loads. Schema creation and migration are handled by GORM
// AutoMigrate via SchemaManager.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables in the public schema.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables in the public schema.
	DropAllTables(ctx context.Context) error
}
