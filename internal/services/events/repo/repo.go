// Package repo provides the events repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/store"
	"indexa/internal/services/events/domain"
)

// Repo is the events persistence surface used by the service layer
type Repo interface {
	Insert(ctx context.Context, ev domain.Event) error
	GetByID(ctx context.Context, id string) (domain.Event, error)
	List(ctx context.Context, q domain.ListQuery, limit, offset int) ([]domain.Event, int, error)
}

type (
	// PG is a Postgres implementation of the events repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const selectCols = `
	id, source, type, subject, COALESCE(event_data, '{}'),
	COALESCE(tags, '{}'), COALESCE(labels, '{}'), privy,
	COALESCE(user_id, ''), COALESCE(project_id, ''), time, created_at
`

func scanEvent(row repokit.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Source, &e.Type, &e.Subject, &e.Data,
		&e.Tags, &e.Labels, &e.Privy,
		&e.UserID, &e.ProjectID, &e.Time, &e.CreatedAt,
	)
	return e, err
}

func (r *queries) Insert(ctx context.Context, ev domain.Event) error {
	const sql = `
		INSERT INTO events (
			id, source, type, subject, event_data, tags, labels, privy,
			user_id, project_id, time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12)
	`
	_, err := r.q.Exec(ctx, sql,
		ev.ID, ev.Source, ev.Type, ev.Subject, ev.Data, ev.Tags, ev.Labels, ev.Privy,
		ev.UserID, ev.ProjectID, ev.Time, ev.CreatedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "event insert")
	}
	return nil
}

func (r *queries) GetByID(ctx context.Context, id string) (domain.Event, error) {
	const sql = `SELECT ` + selectCols + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Event{}, perr.NotFoundf("event %s not found", id)
		}
		return domain.Event{}, perr.FromPostgres(err, "event get")
	}
	return e, nil
}

func (r *queries) List(
	ctx context.Context, q domain.ListQuery, limit, offset int,
) ([]domain.Event, int, error) {
	where := " WHERE TRUE"
	args := []any{}
	if !q.IncludePrivy {
		where += " AND NOT privy"
	}
	if len(q.Tags) > 0 {
		args = append(args, q.Tags)
		where += fmt.Sprintf(" AND tags @> $%d", len(args))
	}
	if len(q.Labels) > 0 {
		args = append(args, q.Labels)
		where += fmt.Sprintf(" AND labels @> $%d", len(args))
	}

	total, err := store.Scalar[int](ctx, r.q, `SELECT COUNT(*) FROM events`+where, args...)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "event count")
	}

	args = append(args, limit, offset)
	sql := fmt.Sprintf(
		`SELECT %s FROM events%s ORDER BY time DESC, id LIMIT $%d OFFSET $%d`,
		selectCols, where, len(args)-1, len(args),
	)
	out, err := store.Many(ctx, r.q, scanEvent, sql, args...)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "event list")
	}
	return out, total, nil
}
