// Package postgres persists completed analysis runs. The full run is stored
// as a JSONB payload for exact reload; the headline results are also
// projected into flat tables so runs can be compared in SQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tnatlas/domain/core"
	"tnatlas/domain/estimate"
	"tnatlas/internal/errors"
	"tnatlas/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository.
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// SaveRun stores a run and its projections in one transaction.
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run *estimate.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, "marshal run payload")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, condition_name, icd10_code, window_start, window_end, total_patients, strata_count, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.ID, run.Condition.Name, run.Condition.ICD10, run.Window.Start, run.Window.End,
		run.TotalPatients, len(run.PerCapita), payload, run.CreatedAt.Time())
	if err != nil {
		return errors.Wrap(err, "insert analysis run")
	}

	if err := r.insertEstimates(ctx, tx, run); err != nil {
		return err
	}
	if err := r.insertComparisons(ctx, tx, run); err != nil {
		return err
	}
	if err := r.insertContingency(ctx, tx, run); err != nil {
		return err
	}
	if err := r.insertImputations(ctx, tx, run); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save transaction")
	}
	return nil
}

func (r *RunRepositoryImpl) insertEstimates(ctx context.Context, tx *sqlx.Tx, run *estimate.Run) error {
	for _, est := range run.National {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO proportion_estimates (run_id, category, x, n, p_hat, ci_lo, ci_hi, confidence, imputed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, run.ID, est.Category, est.X, est.N, est.PHat, est.Lo, est.Hi, est.Confidence, est.Imputed)
		if err != nil {
			return errors.Wrapf(err, "insert estimate for %s", est.Category)
		}
	}
	return nil
}

func (r *RunRepositoryImpl) insertComparisons(ctx context.Context, tx *sqlx.Tx, run *estimate.Run) error {
	for _, cmp := range run.Comparisons {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO state_comparisons (run_id, state, category, x, n, p_hat, ci_lo, ci_hi, reference, z, p_value, significant, direction)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, run.ID, cmp.State, cmp.Category, cmp.Estimate.X, cmp.Estimate.N, cmp.Estimate.PHat,
			cmp.Estimate.Lo, cmp.Estimate.Hi, cmp.Reference, cmp.Z, cmp.PValue, cmp.Significant, cmp.Direction)
		if err != nil {
			return errors.Wrapf(err, "insert comparison for %s/%s", cmp.State, cmp.Category)
		}
	}
	return nil
}

func (r *RunRepositoryImpl) insertContingency(ctx context.Context, tx *sqlx.Tx, run *estimate.Run) error {
	for _, ct := range run.Contingency {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contingency_tests (run_id, label, statistic, p_value, dof, min_expected, significant)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, run.ID, ct.Label, ct.Statistic, ct.PValue, ct.Dof, ct.MinExpected, ct.Significant)
		if err != nil {
			return errors.Wrapf(err, "insert contingency test %q", ct.Label)
		}
	}
	return nil
}

func (r *RunRepositoryImpl) insertImputations(ctx context.Context, tx *sqlx.Tx, run *estimate.Run) error {
	for _, imp := range run.Imputations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO imputation_audit (run_id, state, category, raw_value, imputed_value)
			VALUES ($1, $2, $3, $4, $5)
		`, run.ID, imp.State, imp.Category, imp.Raw, imp.Imputed)
		if err != nil {
			return errors.Wrapf(err, "insert imputation record for %s/%s", imp.State, imp.Category)
		}
	}
	return nil
}

// GetRun reloads a run from its stored payload.
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*estimate.Run, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT payload FROM analysis_runs WHERE id = $1
	`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load run payload")
	}

	var run estimate.Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, errors.Wrap(err, "unmarshal run payload")
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first.
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	query := `
		SELECT id, condition_name AS condition, total_patients, strata_count, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var summaries []ports.RunSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return summaries, nil
}
