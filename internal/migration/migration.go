package migration

import (
	"context"

	"cotdex/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the comorbidity schema. Every statement is written
// so it runs unchanged on Postgres and SQLite, and is idempotent.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createEdgeStatTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create edge_stat table")
	}

	if err := r.createNodeBaseTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create node_base table")
	}

	if err := r.createNodeAttrTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create node_attr table")
	}

	if err := r.createEdgeAttrTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create edge_attr table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createEdgeStatTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS edge_stat (
			cause_abb VARCHAR(32) NOT NULL,
			outcome_abb VARCHAR(32) NOT NULL,
			fu INTEGER NOT NULL,
			rr_values DOUBLE PRECISION NOT NULL,
			log_rr_values DOUBLE PRECISION,
			adjusted_chisq_p_values DOUBLE PRECISION NOT NULL,
			adjusted_fisher_p_values DOUBLE PRECISION NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createNodeBaseTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_base (
			node_code VARCHAR(32) PRIMARY KEY,
			korean TEXT,
			english TEXT,
			width DOUBLE PRECISION,
			height DOUBLE PRECISION
		)
	`)
	return err
}

func (r *MigrationRunner) createNodeAttrTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_attr (
			node_code VARCHAR(32) NOT NULL,
			attribute_1 VARCHAR(32) NOT NULL,
			value_1 TEXT,
			attribute_2 VARCHAR(32),
			value_2 TEXT,
			"count" BIGINT NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (r *MigrationRunner) createEdgeAttrTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS edge_attr (
			fu INTEGER NOT NULL,
			cause_abb VARCHAR(32) NOT NULL,
			outcome_abb VARCHAR(32) NOT NULL,
			attribute_1 VARCHAR(32) NOT NULL,
			value_1 TEXT,
			attribute_2 VARCHAR(32),
			value_2 TEXT,
			"count" BIGINT NOT NULL DEFAULT 0
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_edge_stat_fu_rr ON edge_stat(fu, rr_values)",
		"CREATE INDEX IF NOT EXISTS idx_edge_stat_fu_log_rr ON edge_stat(fu, log_rr_values)",
		"CREATE INDEX IF NOT EXISTS idx_edge_stat_cause ON edge_stat(cause_abb)",
		"CREATE INDEX IF NOT EXISTS idx_edge_stat_outcome ON edge_stat(outcome_abb)",
		"CREATE INDEX IF NOT EXISTS idx_node_attr_code ON node_attr(node_code)",
		"CREATE INDEX IF NOT EXISTS idx_edge_attr_pair ON edge_attr(fu, cause_abb, outcome_abb)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}
