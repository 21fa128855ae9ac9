// Package repo provides the reindex job repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/store"
	"indexa/internal/services/reindex/domain"
)

// Repo is the reindex persistence surface used by the service layer
type Repo interface {
	Insert(ctx context.Context, job domain.ReindexJob) error
	GetByID(ctx context.Context, id string) (domain.ReindexJob, error)
	List(ctx context.Context, limit, offset int) ([]domain.ReindexJob, int, error)
	UpdateProgress(ctx context.Context, id string, progress float64) error
	// UpdateStatus transitions the job status. Entering running sets
	// started_at if unset; entering a terminal status sets completed_at
	UpdateStatus(ctx context.Context, id string, status domain.Status, errorMessage string) error
}

type (
	// PG is a Postgres implementation of the reindex repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const selectCols = `
	id, COALESCE(domains, '{}'), COALESCE(entity_types, '{}'), COALESCE(providers, '{}'),
	mode, updated_after, updated_before, status, progress,
	started_at, completed_at, COALESCE(error_message, ''),
	created_at, updated_at, deleted_at
`

func scanJob(row repokit.Row) (domain.ReindexJob, error) {
	var j domain.ReindexJob
	err := row.Scan(
		&j.ID, &j.Domains, &j.EntityTypes, &j.Providers,
		&j.Mode, &j.UpdatedAfter, &j.UpdatedBefore, &j.Status, &j.Progress,
		&j.StartedAt, &j.CompletedAt, &j.ErrorMessage,
		&j.CreatedAt, &j.UpdatedAt, &j.DeletedAt,
	)
	return j, err
}

func (r *queries) Insert(ctx context.Context, job domain.ReindexJob) error {
	const sql = `
		INSERT INTO reindex_jobs (
			id, domains, entity_types, providers, mode,
			updated_after, updated_before, status, progress, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.q.Exec(ctx, sql,
		job.ID, job.Domains, job.EntityTypes, job.Providers, job.Mode,
		job.UpdatedAfter, job.UpdatedBefore, job.Status, job.Progress,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "reindex job insert")
	}
	return nil
}

func (r *queries) GetByID(ctx context.Context, id string) (domain.ReindexJob, error) {
	const sql = `
		SELECT ` + selectCols + `
		FROM reindex_jobs
		WHERE id = $1 AND deleted_at IS NULL
	`
	j, err := scanJob(r.q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.ReindexJob{}, perr.NotFoundf("reindex job %s not found", id)
		}
		return domain.ReindexJob{}, perr.FromPostgres(err, "reindex job get")
	}
	return j, nil
}

func (r *queries) List(ctx context.Context, limit, offset int) ([]domain.ReindexJob, int, error) {
	total, err := store.Scalar[int](ctx, r.q, `SELECT COUNT(*) FROM reindex_jobs WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "reindex job count")
	}

	const sql = `
		SELECT ` + selectCols + `
		FROM reindex_jobs
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	out, err := store.Many(ctx, r.q, scanJob, sql, limit, offset)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "reindex job list")
	}
	return out, total, nil
}

func (r *queries) UpdateProgress(ctx context.Context, id string, progress float64) error {
	const sql = `
		UPDATE reindex_jobs
		SET progress = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.q.Exec(ctx, sql, id, progress)
	if err != nil {
		return perr.FromPostgres(err, "reindex job progress")
	}
	return nil
}

func (r *queries) UpdateStatus(
	ctx context.Context, id string, status domain.Status, errorMessage string,
) error {
	const sql = `
		UPDATE reindex_jobs
		SET status = $2,
		    error_message = NULLIF($3, ''),
		    started_at = CASE
		        WHEN $2 = 'running' AND started_at IS NULL THEN NOW()
		        ELSE started_at
		    END,
		    completed_at = CASE
		        WHEN $2 IN ('completed', 'failed', 'cancelled') THEN NOW()
		        ELSE completed_at
		    END,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.q.Exec(ctx, sql, id, status, errorMessage)
	if err != nil {
		return perr.FromPostgres(err, "reindex job status")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("reindex job %s not found", id)
	}
	return nil
}
