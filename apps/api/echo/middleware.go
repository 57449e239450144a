package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/user"
)

func reviewerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsReviewer() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

var contextStudentKey = "student"

// studentMiddleware loads the student named by the :student path param.
// Reviewers only reach students of their own organization, admins reach everybody.
func studentMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			reviewer, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			student, err := svc.GetByID(ctx.Request().Context(), ctx.Param("student"))
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student")
			}
			if !reviewer.IsAdmin() && (!reviewer.HasOrg() || reviewer.OrgID != student.OrgID) {
				return errHttpForbidden
			}
			ctx.Set(contextStudentKey, student)
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextStudentKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errHttpNotFound
}
