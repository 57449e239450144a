package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/preference"
)

type preferenceRepository struct {
	exec core.DBExecutor
}

var _ preference.Repository = (*preferenceRepository)(nil)

func NewPreferenceRepository(exec core.DBExecutor) preference.Repository {
	return &preferenceRepository{exec: exec}
}

func (repo *preferenceRepository) GetPreference(ctx context.Context, contextKey, name string) (string, error) {
	var value string
	q := repo.exec.Rebind(`SELECT value FROM preferences WHERE context_key = ? AND name = ?`)
	if err := repo.exec.GetContext(ctx, &value, q, contextKey, name); err != nil {
		return "", trapNoRowsErr(err, preference.ErrNotFound)
	}
	return value, nil
}

func (repo *preferenceRepository) SetPreference(ctx context.Context, contextKey, name, value string) error {
	q := repo.exec.Rebind(`
		INSERT INTO preferences (context_key, name, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (context_key, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := repo.exec.ExecContext(ctx, q, contextKey, name, value, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "upserting preference")
	}
	return nil
}
