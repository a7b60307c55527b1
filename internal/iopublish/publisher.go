// Package iopublish loads aggregated hydro-tables of HUCs into PostgreSQL
// for forecast lookup services.
package iopublish

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iofs"
	fim "github.com/NOAA-OWP/inundation-mapping-sub004/pkg"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/db"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/hydrotable"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/lifecycle"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/schema"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ lifecycle.Publisher = (*Publisher)(nil)

// Publisher replaces hydro-table rows of HUCs in the database with the
// content of their hydroTable.csv.
type Publisher struct {
	cfg      *config.Config
	op       db.Operator
	progress bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithProgress shows a progress bar of published HUCs.
func WithProgress(b bool) Option {
	return func(p *Publisher) { p.progress = b }
}

// New creates a Publisher on a connected operator.
func New(cfg *config.Config, op db.Operator, opts ...Option) *Publisher {
	res := &Publisher{cfg: cfg, op: op}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Publish loads hydro-tables of hucs, or of the configured HUCs when hucs
// is empty. HUCs without hydroTable.csv are skipped with a warning. Every
// HUC is replaced in its own transaction.
func (p *Publisher) Publish(ctx context.Context, hucs []string) (int, error) {
	if p.op == nil || p.op.Pool() == nil {
		return 0, NotConnectedError()
	}
	if len(hucs) == 0 {
		hucs = p.cfg.HUCs
	}
	if len(hucs) == 0 {
		return 0, NoHUCsError()
	}

	runID := uuid.New().String()
	layout := iofs.Layout{Root: p.cfg.OutputDir}
	slog.Info("Publishing hydro-tables", "run", runID, "hucs", len(hucs))

	var bar *pb.ProgressBar
	if p.progress {
		bar = pb.Full.Start(len(hucs))
		bar.Set("prefix", "Publishing HUCs: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	var total, published int
	for _, huc := range hucs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		huc = hydrotable.PadHUC(huc)
		rows, err := readHUC(layout, huc, runID)
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("HUC has no hydro-table, skipping", "huc", huc)
			if bar != nil {
				bar.Increment()
			}
			continue
		}
		if err != nil {
			return total, err
		}
		n, err := p.replaceHUC(ctx, huc, rows)
		if err != nil {
			return total, err
		}
		slog.Debug("Published HUC", "huc", huc, "rows", n)
		total += n
		published++
		if bar != nil {
			bar.Increment()
		}
	}

	if err := p.recordRun(ctx, runID, published, total); err != nil {
		return total, err
	}
	if published > 0 {
		if err := p.vacuum(ctx); err != nil {
			return total, err
		}
	}
	slog.Info("Published hydro-tables",
		"run", runID,
		"hucs", published,
		"rows", humanize.Comma(int64(total)),
	)
	return total, nil
}

func readHUC(l iofs.Layout, huc, runID string) ([]schema.HydroTable, error) {
	path := l.HUCFile(huc, iofs.HydroTable)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := hydrotable.Read(f)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	res := make([]schema.HydroTable, len(rows))
	for i, r := range rows {
		if r.HUC == "" {
			r.HUC = huc
		}
		res[i] = schema.NewHydroTable(runID, r)
	}
	return res, nil
}

func (p *Publisher) replaceHUC(
	ctx context.Context,
	huc string,
	rows []schema.HydroTable,
) (int, error) {
	tx, err := p.op.Pool().Begin(ctx)
	if err != nil {
		return 0, ReplaceHUCError(huc, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	table := schema.HydroTable{}.TableName()
	_, err = tx.Exec(ctx,
		"DELETE FROM "+pgx.Identifier{table}.Sanitize()+" WHERE huc = $1", huc)
	if err != nil {
		return 0, ReplaceHUCError(huc, err)
	}

	batchSize := p.cfg.Database.BatchSize
	if batchSize <= 0 {
		batchSize = len(rows)
	}
	var total int
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		batch := rows[i:end]

		vals := make([][]any, len(batch))
		for j, r := range batch {
			vals[j] = r.Values()
		}

		n, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{table},
			schema.HydroTableColumns,
			pgx.CopyFromRows(vals),
		)
		if err != nil {
			return total, CopyError(huc, err)
		}
		total += int(n)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, ReplaceHUCError(huc, err)
	}
	return total, nil
}

func (p *Publisher) recordRun(ctx context.Context, runID string, hucs, rows int) error {
	q := `INSERT INTO publish_runs (id, version, hucs, rows, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := p.op.Pool().Exec(ctx, q, runID, fim.Version, hucs, rows, time.Now().UTC())
	if err != nil {
		return RecordRunError(runID, err)
	}
	return nil
}

// vacuum reclaims rows deleted by replaced HUCs and refreshes planner
// statistics. It cannot run inside a transaction.
func (p *Publisher) vacuum(ctx context.Context) error {
	table := pgx.Identifier{schema.HydroTable{}.TableName()}.Sanitize()
	start := time.Now()
	if _, err := p.op.Pool().Exec(ctx, "VACUUM ANALYZE "+table); err != nil {
		return VacuumError(err)
	}
	slog.Info("VACUUM ANALYZE completed", "table", table,
		"duration", time.Since(start).String())
	return nil
}
