package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/user"
)

type profileRow struct {
	ID           string      `db:"id"`
	FullName     string      `db:"full_name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	CurrentOrgID null.String `db:"current_org_id"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

const profileColumns = `id, full_name, email, role, current_org_id, created_at, updated_at`

func newProfileRow(usr user.User) profileRow {
	return profileRow{
		ID:           usr.ID,
		FullName:     usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
		CurrentOrgID: null.NewString(usr.OrgID, usr.OrgID != ""),
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
}

func (row profileRow) user() user.User {
	return user.User{
		ID:        row.ID,
		Name:      row.FullName,
		Email:     row.Email,
		Role:      row.Role,
		OrgID:     row.CurrentOrgID.String,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(exec core.DBExecutor) user.Repository {
	return &userRepository{exec: exec}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (:id, :full_name, :email, :role, :current_org_id, :created_at, :updated_at)`,
		newProfileRow(usr),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting profile")
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE profiles
		SET full_name = :full_name, email = :email, role = :role, current_org_id = :current_org_id, updated_at = :updated_at
		WHERE id = :id`,
		newProfileRow(usr),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating profile")
	}
	if n, err := res.RowsAffected(); err != nil {
		return user.User{}, errors.Wrap(err, "updating profile")
	} else if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row profileRow
	q := repo.exec.Rebind(`SELECT ` + profileColumns + ` FROM profiles WHERE ` + where)
	if err := repo.exec.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, "id = ?", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, "email = ?", email)
}
