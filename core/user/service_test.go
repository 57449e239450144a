package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/user"
	inmemdb "github.com/ExtCrs/extcourses/storage/database/inmem"
	"github.com/ExtCrs/extcourses/testutil"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo), repo
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := testutil.NewValidator()

	tests := []struct {
		name       string
		nu         user.NewUser
		wantFields map[string]string
	}{
		{
			name: "valid",
			nu:   user.NewUser{Name: " Анна ", Email: " Anna@Example.com", Role: "Learner", OrgID: "0B5F6E52-5C1A-4A8E-9E6F-6F8D1A2B3C4D"},
		},
		{
			name: "no email nor org",
			nu:   user.NewUser{Name: "Анна", Role: user.RoleReviewer},
		},
		{
			name:       "blank name",
			nu:         user.NewUser{Name: "   ", Role: user.RoleLearner},
			wantFields: map[string]string{"full_name": "this field is required"},
		},
		{
			name:       "unknown role",
			nu:         user.NewUser{Name: "Анна", Role: "supervisor"},
			wantFields: map[string]string{"role": "invalid role"},
		},
		{
			name:       "bad email and org",
			nu:         user.NewUser{Name: "Анна", Email: "anna", Role: user.RoleAdmin, OrgID: "org-1"},
			wantFields: map[string]string{"email": "email must be a valid email address", "org_id": "org_id must be a valid UUID"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			got := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}

	nu := user.NewUser{Name: " Анна ", Email: " Anna@Example.com", Role: "Learner"}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, user.NewUser{Name: "Анна", Email: "anna@example.com", Role: user.RoleLearner}, nu)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	existing := testutil.CreateUser(t, repo, "Анна", "anna@example.com", user.RoleLearner, "")

	usr, err := svc.Create(ctx, user.NewUser{Name: "Пётр", Email: "petr@example.com", Role: user.RoleReviewer})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.False(t, usr.CreatedAt.IsZero())

	got, err := svc.GetByEmail(ctx, " PETR@example.com ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.Create(ctx, user.NewUser{Name: "Анна 2", Email: existing.Email, Role: user.RoleLearner})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, user.ErrEmailExists, verr.Err)

	_, err = svc.Create(ctx, user.NewUser{Name: "Без почты", Role: user.RoleLearner})
	assert.NoError(t, err)
	_, err = svc.Create(ctx, user.NewUser{Name: "Тоже без почты", Role: user.RoleLearner})
	assert.NoError(t, err, "empty emails never collide")
}

func TestService_SetOrg(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	usr := testutil.CreateUser(t, repo, "Анна", "anna@example.com", user.RoleLearner, "")
	assert.False(t, usr.HasOrg())

	usr, err := svc.SetOrg(ctx, usr.ID, " ORG-1 ")
	require.NoError(t, err)
	assert.Equal(t, "org-1", usr.OrgID)

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.True(t, got.HasOrg())

	usr, err = svc.SetOrg(ctx, usr.ID, "")
	require.NoError(t, err)
	assert.False(t, usr.HasOrg())

	_, err = svc.SetOrg(ctx, "missing", "org-1")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestUser_roles(t *testing.T) {
	tests := []struct {
		role         string
		wantReviewer bool
		wantAdmin    bool
	}{
		{user.RoleLearner, false, false},
		{user.RoleReviewer, true, false},
		{user.RoleAdmin, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			usr := user.User{Role: tt.role}
			assert.Equal(t, tt.wantReviewer, usr.IsReviewer())
			assert.Equal(t, tt.wantAdmin, usr.IsAdmin())
		})
	}
}
