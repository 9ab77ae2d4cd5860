package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"cotdex/adapters/excel"
	"cotdex/adapters/sqlstore"
	"cotdex/internal"
	"cotdex/internal/migration"
	"cotdex/internal/testkit"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	databaseURL string
	driver      string
	edges       string
	nodes       string
	nodeAttrs   string
	edgeAttrs   string
	synthetic   bool
	seed        int64
}

func main() {
	_ = godotenv.Load()

	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "cotdex-migrate",
		Short: "Create the network schema and load exports into it",
		Long: `Create edge_stat, node_base, node_attr and edge_attr if missing, then
replace the contents of every table whose export is given. Exports may be
.csv or .xlsx (first sheet) with a header row named after the table columns.

Example: cotdex-migrate --edges edge_stat.csv --nodes node_base.xlsx`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Database URL (default $DATABASE_URL)")
	cmd.Flags().StringVar(&opts.driver, "driver", envOr("DATABASE_DRIVER", sqlstore.DriverPostgres), "Database driver: postgres or sqlite")
	cmd.Flags().StringVar(&opts.edges, "edges", "", "edge_stat export")
	cmd.Flags().StringVar(&opts.nodes, "nodes", "", "node_base export")
	cmd.Flags().StringVar(&opts.nodeAttrs, "node-attrs", "", "node_attr export")
	cmd.Flags().StringVar(&opts.edgeAttrs, "edge-attrs", "", "edge_attr export")
	cmd.Flags().BoolVar(&opts.synthetic, "synthetic", false, "Load a generated network into edge_stat and node_base")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Random seed for --synthetic")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, opts *migrateOptions) error {
	logger := internal.NewDefaultLogger().With("migrate")

	db, err := sqlstore.Open(ctx, opts.driver, opts.databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return err
	}
	logger.Info("schema %s ready", runner.Version())

	if opts.synthetic && (opts.edges != "" || opts.nodes != "") {
		return fmt.Errorf("--synthetic cannot be combined with --edges or --nodes")
	}
	if opts.synthetic {
		return loadSynthetic(ctx, db, opts.seed, logger)
	}
	return loadExports(ctx, db, opts, logger)
}

func loadSynthetic(ctx context.Context, db *sqlx.DB, seed int64, logger *internal.Logger) error {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Seed = seed
	records, metadata := testkit.NewGenerator(cfg).Generate()

	loader := sqlstore.NewLoader(db)
	n, err := loader.LoadAssociations(ctx, records)
	if err != nil {
		return err
	}
	logger.Info("edge_stat: %d synthetic rows", n)
	if n, err = loader.LoadMetadata(ctx, metadata); err != nil {
		return err
	}
	logger.Info("node_base: %d synthetic rows", n)
	return nil
}

func loadExports(ctx context.Context, db *sqlx.DB, opts *migrateOptions, logger *internal.Logger) error {
	loader := sqlstore.NewLoader(db)

	steps := []struct {
		table string
		path  string
		load  func(*excel.SheetData) (int, error)
	}{
		{"edge_stat", opts.edges, func(d *excel.SheetData) (int, error) {
			records, err := excel.EdgeRecords(d)
			if err != nil {
				return 0, err
			}
			return loader.LoadAssociations(ctx, records)
		}},
		{"node_base", opts.nodes, func(d *excel.SheetData) (int, error) {
			metadata, err := excel.NodeRecords(d)
			if err != nil {
				return 0, err
			}
			return loader.LoadMetadata(ctx, metadata)
		}},
		{"node_attr", opts.nodeAttrs, func(d *excel.SheetData) (int, error) {
			rows, err := excel.NodeAttributeRecords(d)
			if err != nil {
				return 0, err
			}
			return loader.LoadNodeAttributes(ctx, rows)
		}},
		{"edge_attr", opts.edgeAttrs, func(d *excel.SheetData) (int, error) {
			rows, err := excel.EdgeAttributeRecords(d)
			if err != nil {
				return 0, err
			}
			return loader.LoadEdgeAttributes(ctx, rows)
		}},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		data, err := excel.NewDataReader(step.path, logger).ReadData()
		if err != nil {
			return fmt.Errorf("%s: %w", step.table, err)
		}
		n, err := step.load(data)
		if err != nil {
			return fmt.Errorf("%s from %s: %w", step.table, step.path, err)
		}
		logger.Info("%s: %d rows loaded from %s", step.table, n, step.path)
	}
	return nil
}
