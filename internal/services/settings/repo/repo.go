// Package repo provides the settings repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/store"
	"indexa/internal/services/settings/domain"
)

// Repo is the settings persistence surface used by the service layer
type Repo interface {
	Get(ctx context.Context, key string) (domain.Setting, error)
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]domain.Setting, error)
}

type (
	// PG is a Postgres implementation of the settings repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Get(ctx context.Context, key string) (domain.Setting, error) {
	const sql = `SELECT key, value, updated_at FROM app_settings WHERE key = $1`
	var s domain.Setting
	row := r.q.QueryRow(ctx, sql, key)
	if err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Setting{}, perr.NotFoundf("setting %q not found", key)
		}
		return domain.Setting{}, perr.FromPostgres(err, "settings get")
	}
	return s, nil
}

func (r *queries) Upsert(ctx context.Context, key, value string) error {
	const sql = `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := r.q.Exec(ctx, sql, key, value)
	if err != nil {
		return perr.FromPostgres(err, "settings upsert")
	}
	return nil
}

func (r *queries) Delete(ctx context.Context, key string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM app_settings WHERE key = $1`, key)
	if err != nil {
		return perr.FromPostgres(err, "settings delete")
	}
	return nil
}

func scanSetting(row repokit.Row) (domain.Setting, error) {
	var s domain.Setting
	err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt)
	return s, err
}

func (r *queries) List(ctx context.Context) ([]domain.Setting, error) {
	const sql = `SELECT key, value, updated_at FROM app_settings ORDER BY key`
	out, err := store.Many(ctx, r.q, scanSetting, sql)
	if err != nil {
		return nil, perr.FromPostgres(err, "settings list")
	}
	return out, nil
}
