package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/preference"
)

// clientContextHeader identifies the browsing context (tab, device) a preference belongs to.
const clientContextHeader = "X-Client-Context"

type preferenceApi struct {
	svc      *preference.Service
	validate *validator.Validate
}

func registerPreferenceAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *preference.Service, validate *validator.Validate) {
	api := preferenceApi{svc: svc, validate: validate}

	pg := g.Group("/me/courses/:course/active-lesson", auth)
	pg.GET("", api.activeLesson)
	pg.PUT("", api.setActiveLesson)
}

// contextKey scopes the client context to the authenticated user.
func (api *preferenceApi) contextKey(ctx echo.Context) (string, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return "", err
	}
	clientCtx := ctx.Request().Header.Get(clientContextHeader)
	if clientCtx == "" {
		return "", errNoContext
	}
	return usr.ID + ":" + clientCtx, nil
}

func (api *preferenceApi) activeLesson(ctx echo.Context) error {
	key, err := api.contextKey(ctx)
	if err != nil {
		return err
	}
	n, ok, err := api.svc.ActiveLesson(ctx.Request().Context(), key, ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "fetching active lesson")
	}
	if !ok {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, activeLessonData{LessonNum: n})
}

func (api *preferenceApi) setActiveLesson(ctx echo.Context) error {
	key, err := api.contextKey(ctx)
	if err != nil {
		return err
	}
	var data activeLessonData
	if err = bindBody(ctx, api.validate, &data); err != nil {
		return err
	}
	if err = api.svc.SetActiveLesson(ctx.Request().Context(), key, ctx.Param("course"), data.LessonNum); err != nil {
		return errors.Wrap(err, "storing active lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}
