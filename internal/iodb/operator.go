// Package iodb connects fim to the PostgreSQL database that receives
// published hydro-tables.
package iodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ db.Operator = (*PgxOperator)(nil)

// PgxOperator implements db.Operator with a pgx connection pool.
type PgxOperator struct {
	pool *pgxpool.Pool
}

// NewPgxOperator creates an operator without connecting.
func NewPgxOperator() *PgxOperator {
	return &PgxOperator{}
}

// dsn returns a keyword/value connection string with quoted values, so
// passwords need no URL escaping.
func dsn(cfg *config.DatabaseConfig) string {
	q := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	quote := func(s string) string { return "'" + q.Replace(s) + "'" }
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=fim",
		quote(cfg.Host), cfg.Port, quote(cfg.User), quote(cfg.Password),
		quote(cfg.Database), quote(cfg.SSLMode),
	)
}

func poolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	res, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, err
	}
	// Publishing copies one HUC at a time.
	res.MaxConns = 4
	res.MinConns = 1
	return res, nil
}

// Connect opens the pool and checks the server answers.
func (p *PgxOperator) Connect(ctx context.Context, cfg *config.DatabaseConfig) error {
	connErr := func(err error) error {
		return ConnectionError(cfg.Host, cfg.Port, cfg.Database, cfg.User, err)
	}
	pc, err := poolConfig(cfg)
	if err != nil {
		return connErr(err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return connErr(err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return connErr(err)
	}
	p.pool = pool
	return nil
}

// Close releases all connections. It is safe to call it twice.
func (p *PgxOperator) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

// Pool returns the connection pool, nil before Connect.
func (p *PgxOperator) Pool() *pgxpool.Pool {
	return p.pool
}

// TableExists reports if the public schema has the table.
func (p *PgxOperator) TableExists(ctx context.Context, table string) (bool, error) {
	if p.pool == nil {
		return false, NotConnectedError()
	}
	q := `SELECT EXISTS (
  SELECT 1 FROM pg_tables WHERE schemaname = 'public' AND tablename = $1)`
	var res bool
	if err := p.pool.QueryRow(ctx, q, table).Scan(&res); err != nil {
		return false, TableExistsCheckError(table, err)
	}
	return res, nil
}

// HasTables reports if the public schema has any table.
func (p *PgxOperator) HasTables(ctx context.Context) (bool, error) {
	if p.pool == nil {
		return false, NotConnectedError()
	}
	q := `SELECT EXISTS (SELECT 1 FROM pg_tables WHERE schemaname = 'public')`
	var res bool
	if err := p.pool.QueryRow(ctx, q).Scan(&res); err != nil {
		return false, TableCheckError(err)
	}
	return res, nil
}

// DropAllTables drops every table of the public schema in one statement.
func (p *PgxOperator) DropAllTables(ctx context.Context) error {
	if p.pool == nil {
		return NotConnectedError()
	}
	rows, err := p.pool.Query(ctx,
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public'`)
	if err != nil {
		return QueryTablesError(err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return ScanTableError(err)
	}
	if len(tables) == 0 {
		return nil
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = pgx.Identifier{t}.Sanitize()
	}
	q := "DROP TABLE IF EXISTS " + strings.Join(names, ", ") + " CASCADE"
	if _, err = p.pool.Exec(ctx, q); err != nil {
		return DropTableError(strings.Join(tables, ", "), err)
	}
	return nil
}
