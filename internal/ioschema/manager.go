// Package ioschema implements the lifecycle.SchemaManager interface for
// the hydro-table database. This is an impure I/O package that wraps
// GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/db"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/lifecycle"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ lifecycle.SchemaManager = (*Manager)(nil)

// Manager creates and migrates the hydro-table schema using GORM
// AutoMigrate.
type Manager struct {
	operator db.Operator
}

// NewManager creates a new Manager on a connected operator.
func NewManager(op db.Operator) *Manager {
	return &Manager{operator: op}
}

// Create creates the schema. With drop set, all tables of the public
// schema are dropped first.
func (m *Manager) Create(ctx context.Context, drop bool) error {
	if m.operator == nil || m.operator.Pool() == nil {
		return NotConnectedError()
	}

	if drop {
		slog.Info("Dropping existing tables")
		if err := m.operator.DropAllTables(ctx); err != nil {
			return DropTablesError(err)
		}
	}

	gormDB, err := m.gorm(ctx)
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	if err := m.setCollation(ctx); err != nil {
		return err
	}
	slog.Info("Schema created", "tables", schema.TableNames())
	return nil
}

// Migrate updates the schema to the latest models.
func (m *Manager) Migrate(ctx context.Context) error {
	if m.operator == nil || m.operator.Pool() == nil {
		return NotConnectedError()
	}

	gormDB, err := m.gorm(ctx)
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(err)
	}
	slog.Info("Schema migrated", "tables", schema.TableNames())
	return nil
}

func (m *Manager) gorm(ctx context.Context) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(m.operator.Pool())
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB.WithContext(ctx), nil
}

// setCollation sets "C" collation on HUC codes so they sort byte-wise,
// the same way output directories are sorted.
func (m *Manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()

	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{schema.HydroTable{}.TableName(), "huc", 8},
	}

	for _, col := range columns {
		q := collationSQL(col.table, col.column, col.varchar)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}
	return nil
}
