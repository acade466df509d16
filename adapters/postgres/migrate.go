package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tnatlas/internal/errors"
)

// MigrationRunner creates the analysis schema. Every statement is idempotent
// so the runner can be re-applied on startup.
type MigrationRunner struct {
	version string
}

// NewMigrationRunner creates a migration runner.
func NewMigrationRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the schema version the runner produces.
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all migrations in order.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}
	if err := r.createEstimatesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create proportion_estimates table")
	}
	if err := r.createComparisonsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create state_comparisons table")
	}
	if err := r.createContingencyTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create contingency_tests table")
	}
	if err := r.createImputationAuditTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create imputation_audit table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			condition_name VARCHAR(255) NOT NULL,
			icd10_code VARCHAR(10),
			window_start TIMESTAMP WITH TIME ZONE NOT NULL,
			window_end TIMESTAMP WITH TIME ZONE NOT NULL,
			total_patients INTEGER NOT NULL,
			strata_count INTEGER NOT NULL DEFAULT 0,
			payload JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createEstimatesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS proportion_estimates (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			category VARCHAR(100) NOT NULL,
			x INTEGER NOT NULL,
			n INTEGER NOT NULL,
			p_hat DOUBLE PRECISION NOT NULL,
			ci_lo DOUBLE PRECISION NOT NULL,
			ci_hi DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			imputed BOOLEAN NOT NULL DEFAULT false,
			UNIQUE(run_id, category)
		)
	`)
	return err
}

func (r *MigrationRunner) createComparisonsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS state_comparisons (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			state VARCHAR(100) NOT NULL,
			category VARCHAR(100) NOT NULL,
			x INTEGER NOT NULL,
			n INTEGER NOT NULL,
			p_hat DOUBLE PRECISION NOT NULL,
			ci_lo DOUBLE PRECISION NOT NULL,
			ci_hi DOUBLE PRECISION NOT NULL,
			reference DOUBLE PRECISION NOT NULL,
			z DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			significant BOOLEAN NOT NULL,
			direction VARCHAR(20) NOT NULL,
			UNIQUE(run_id, state, category)
		)
	`)
	return err
}

func (r *MigrationRunner) createContingencyTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS contingency_tests (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			label VARCHAR(255) NOT NULL,
			statistic DOUBLE PRECISION NOT NULL,
			p_value DOUBLE PRECISION NOT NULL,
			dof INTEGER NOT NULL,
			min_expected DOUBLE PRECISION NOT NULL,
			significant BOOLEAN NOT NULL,
			UNIQUE(run_id, label)
		)
	`)
	return err
}

func (r *MigrationRunner) createImputationAuditTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS imputation_audit (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			state VARCHAR(100) NOT NULL,
			category VARCHAR(100) NOT NULL,
			raw_value TEXT NOT NULL,
			imputed_value INTEGER NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_created_at ON analysis_runs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_estimates_run_id ON proportion_estimates(run_id)",
		"CREATE INDEX IF NOT EXISTS idx_comparisons_run_id ON state_comparisons(run_id)",
		"CREATE INDEX IF NOT EXISTS idx_comparisons_state ON state_comparisons(state)",
		"CREATE INDEX IF NOT EXISTS idx_contingency_run_id ON contingency_tests(run_id)",
		"CREATE INDEX IF NOT EXISTS idx_imputations_run_id ON imputation_audit(run_id)",
	}
	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return err
		}
	}
	return nil
}
