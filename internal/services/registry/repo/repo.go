// Package repo provides the registry repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/store"
	"indexa/internal/services/registry/domain"
)

// Repo is the registry persistence surface used by the service layer
type Repo interface {
	Insert(ctx context.Context, svc domain.DomainService) error
	GetByID(ctx context.Context, id string) (domain.DomainService, error)
	List(ctx context.Context, limit, offset int) ([]domain.DomainService, int, error)
	Update(ctx context.Context, svc domain.DomainService) error
	SoftDelete(ctx context.Context, id string) error
	ListEnabled(ctx context.Context) ([]domain.DomainService, error)
}

type (
	// PG is a Postgres implementation of the registry repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const selectCols = `
	id, name, domains, base_url,
	COALESCE(indexes_path_prefix, ''), COALESCE(excluded_entities, '{}'),
	enabled, created_at, updated_at, deleted_at
`

func scanService(row repokit.Row) (domain.DomainService, error) {
	var s domain.DomainService
	err := row.Scan(
		&s.ID, &s.Name, &s.Domains, &s.BaseURL,
		&s.IndexesPathPrefix, &s.ExcludedEntities,
		&s.Enabled, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	return s, err
}

func (r *queries) Insert(ctx context.Context, svc domain.DomainService) error {
	const sql = `
		INSERT INTO domain_services (
			id, name, domains, base_url, indexes_path_prefix, excluded_entities,
			enabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
	`
	_, err := r.q.Exec(ctx, sql,
		svc.ID, svc.Name, svc.Domains, svc.BaseURL,
		svc.IndexesPathPrefix, svc.ExcludedEntities,
		svc.Enabled, svc.CreatedAt, svc.UpdatedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "domain service insert")
	}
	return nil
}

func (r *queries) GetByID(ctx context.Context, id string) (domain.DomainService, error) {
	const sql = `
		SELECT ` + selectCols + `
		FROM domain_services
		WHERE id = $1 AND deleted_at IS NULL
	`
	s, err := scanService(r.q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.DomainService{}, perr.NotFoundf("domain service %s not found", id)
		}
		return domain.DomainService{}, perr.FromPostgres(err, "domain service get")
	}
	return s, nil
}

func (r *queries) List(ctx context.Context, limit, offset int) ([]domain.DomainService, int, error) {
	total, err := store.Scalar[int](ctx, r.q, `SELECT COUNT(*) FROM domain_services WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "domain service count")
	}

	const sql = `
		SELECT ` + selectCols + `
		FROM domain_services
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`
	out, err := store.Many(ctx, r.q, scanService, sql, limit, offset)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "domain service list")
	}
	return out, total, nil
}

func (r *queries) Update(ctx context.Context, svc domain.DomainService) error {
	const sql = `
		UPDATE domain_services
		SET name = $2, domains = $3, base_url = $4,
		    indexes_path_prefix = NULLIF($5, ''), excluded_entities = $6,
		    enabled = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.q.Exec(ctx, sql,
		svc.ID, svc.Name, svc.Domains, svc.BaseURL,
		svc.IndexesPathPrefix, svc.ExcludedEntities,
		svc.Enabled, svc.UpdatedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "domain service update")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("domain service %s not found", svc.ID)
	}
	return nil
}

func (r *queries) SoftDelete(ctx context.Context, id string) error {
	const sql = `
		UPDATE domain_services
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.q.Exec(ctx, sql, id)
	if err != nil {
		return perr.FromPostgres(err, "domain service delete")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("domain service %s not found", id)
	}
	return nil
}

func (r *queries) ListEnabled(ctx context.Context) ([]domain.DomainService, error) {
	const sql = `
		SELECT ` + selectCols + `
		FROM domain_services
		WHERE enabled AND deleted_at IS NULL
		ORDER BY created_at, id
	`
	out, err := store.Many(ctx, r.q, scanService, sql)
	if err != nil {
		return nil, perr.FromPostgres(err, "domain service list enabled")
	}
	return out, nil
}
