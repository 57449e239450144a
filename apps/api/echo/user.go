package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

type orgData struct {
	OrgID string `json:"org_id" validate:"omitempty,uuid"`
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := userApi{svc: svc, validate: validate}

	g.GET("/me", api.me, auth)
	g.GET("/roles", api.roles)

	ug := g.Group("/users", auth, adminMiddleware())
	ug.POST("", api.create)
	ug.GET("/:id", api.detail)
	ug.PUT("/:id/org", api.setOrg)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) roles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) create(ctx echo.Context) error {
	var nu user.NewUser
	if err := binder.BindBody(ctx, &nu); err != nil {
		return errors.Wrap(err, "binding body")
	}
	if err := nu.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), nu)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) detail(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "fetching user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setOrg(ctx echo.Context) error {
	var data orgData
	if err := bindBody(ctx, api.validate, &data); err != nil {
		return err
	}
	usr, err := api.svc.SetOrg(ctx.Request().Context(), ctx.Param("id"), data.OrgID)
	if err != nil {
		return errors.Wrap(err, "setting organization")
	}
	return ctx.JSON(http.StatusOK, usr)
}
