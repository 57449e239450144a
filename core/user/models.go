package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ExtCrs/extcourses/core"
)

// Roles
const (
	RoleLearner  = "learner"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

var (
	AllRoles      = []string{RoleLearner, RoleReviewer, RoleAdmin}
	ReviewerRoles = []string{RoleReviewer, RoleAdmin}

	Roles = []Role{
		{Name: "Learner", Value: RoleLearner},
		{Name: "Reviewer", Value: RoleReviewer},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is a profile: a learner enrolled in course instances or a reviewer checking them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	OrgID     string    `json:"org_id,omitempty"` // current organization
	CreatedAt time.Time `json:"created_at"`       // UTC
	UpdatedAt time.Time `json:"updated_at"`       // UTC
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsReviewer reports whether u may review lessons. Admins review too.
func (u User) IsReviewer() bool {
	return u.Role == RoleReviewer || u.Role == RoleAdmin
}

func (u User) HasOrg() bool { return u.OrgID != "" }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name  string `json:"full_name" validate:"required,notblank"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"required,role"`
	OrgID string `json:"org_id" validate:"omitempty,uuid"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.OrgID = core.CleanString(nu.OrgID, true /* lower */)
	return validate.Struct(nu)
}
