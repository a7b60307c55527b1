/*
Copyright © 2026 NOAA Office of Water Prediction (NOAA-OWP)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iodb"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/iopublish"
	"github.com/NOAA-OWP/inundation-mapping-sub004/internal/ioschema"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getPublishCmd returns the publish command with its schema subcommands.
func getPublishCmd() *cobra.Command {
	var (
		hucsFile string
		output   string
		quiet    bool
	)

	publishCmd := &cobra.Command{
		Use:   "publish [HUC8...]",
		Short: "Load hydro-tables into PostgreSQL",
		Long: `Load aggregated hydroTable.csv files of HUCs into the
hydro_tables table. Rows of a HUC are replaced in one transaction, so
publishing a HUC again does not duplicate it. Every publish is recorded
in publish_runs.

Create the schema first with 'fim publish schema'.

Examples:
  fim publish 12090301 12090302
  fim publish -f hucs.lst -o /data/outputs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hucs, err := hucList(args, hucsFile)
			if err == nil {
				setOutput(cmd, output)
				err = runPublish(hucs, quiet)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	publishCmd.Flags().StringVarP(&hucsFile, "hucs-file", "f", "",
		"file with HUC8 codes, one per line")
	publishCmd.Flags().StringVarP(&output, "output", "o", "",
		"root directory of HUC outputs")
	publishCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"do not show the progress bar")

	publishCmd.AddCommand(getSchemaCmd(), getMigrateCmd())
	return publishCmd
}

func runPublish(hucs []string, quiet bool) error {
	ctx, stop := signalContext()
	defer stop()

	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	p := iopublish.New(cfg, op, iopublish.WithProgress(!quiet))
	rows, err := p.Publish(ctx, hucs)
	if err != nil {
		return err
	}
	gn.Info("Published <em>%s</em> hydro-table rows", humanize.Comma(int64(rows)))
	return nil
}

// getSchemaCmd returns the command creating the publishing schema.
func getSchemaCmd() *cobra.Command {
	var force bool

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the publishing schema",
		Long: `Create hydro_tables and publish_runs in PostgreSQL.

Existing tables are dropped after confirmation. Use --force to skip
the confirmation.

Examples:
  fim publish schema
  fim publish schema --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSchema(force)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	schemaCmd.Flags().BoolVarP(&force, "force", "f", false,
		"drop existing tables without confirmation")

	return schemaCmd
}

func runSchema(force bool) error {
	ctx := context.Background()
	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}
	if hasTables && !force {
		gn.Warn("\nWarning: Database contains existing tables.")
		gn.Warn("Creating schema will drop ALL existing tables and data.")
		fmt.Print("\nDo you want to continue? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			gn.Warn("Failed to read user input")
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" && response != "y" {
			gn.Info("Aborted. No changes made.")
			return nil
		}
	}

	if err = ioschema.NewManager(op).Create(ctx, hasTables); err != nil {
		return err
	}
	gn.Info("Publishing schema is created")
	return nil
}

// getMigrateCmd returns the command updating the publishing schema.
func getMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Update the publishing schema",
		Long: `Add tables and columns of newer fim versions to an existing
publishing schema. Data is kept.

Examples:
  fim publish migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runMigrate()
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return migrateCmd
}

func runMigrate() error {
	ctx := context.Background()
	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	if err = ioschema.NewManager(op).Migrate(ctx); err != nil {
		return err
	}
	gn.Info("Publishing schema is migrated")
	return nil
}

func connect(ctx context.Context) (*iodb.PgxOperator, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}
	gn.Info("Connected to database: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}
