package inmemdb

import (
	"context"

	"github.com/ExtCrs/extcourses/core/preference"
)

type preferenceRepository struct {
	db *preferenceTable
}

var _ preference.Repository = (*preferenceRepository)(nil)

func NewPreferenceRepository(db *DB) preference.Repository {
	return &preferenceRepository{db: db.preference}
}

func (repo *preferenceRepository) GetPreference(ctx context.Context, contextKey, name string) (string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if val, ok := repo.db.table[[2]string{contextKey, name}]; ok {
		return val, nil
	}
	return "", preference.ErrNotFound
}

func (repo *preferenceRepository) SetPreference(ctx context.Context, contextKey, name, value string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[[2]string{contextKey, name}] = value
	return nil
}
