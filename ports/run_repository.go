package ports

import (
	"context"

	"tnatlas/domain/core"
	"tnatlas/domain/estimate"
)

// RunRepository persists completed analysis runs. The pipeline is the only
// writer; the API surface reads.
type RunRepository interface {
	SaveRun(ctx context.Context, run *estimate.Run) error
	GetRun(ctx context.Context, id core.RunID) (*estimate.Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is the listing projection of a stored run.
type RunSummary struct {
	ID            core.RunID     `json:"id" db:"id"`
	Condition     string         `json:"condition" db:"condition"`
	TotalPatients int            `json:"total_patients" db:"total_patients"`
	StrataCount   int            `json:"strata_count" db:"strata_count"`
	CreatedAt     core.Timestamp `json:"created_at" db:"created_at"`
}
