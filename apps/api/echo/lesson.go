package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/user"
)

type lessonApi struct {
	svc      *lesson.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *lesson.Service, usrSvc *user.Service, validate *validator.Validate) {
	api := lessonApi{svc: svc, validate: validate}

	// learner endpoints: the authenticated user is the student
	mg := g.Group("/me/courses/:course", auth)
	mg.GET("/overview", api.myOverview)
	mg.GET("/lessons/:lesson", api.myLesson)
	mg.POST("/lessons/:lesson/submit", api.submit)
	mg.PUT("/lessons/:lesson/tasks/:task/answer", api.saveAnswer)
	mg.POST("/lessons/:lesson/tasks/:task/read", api.markRead)
	mg.POST("/lessons/:lesson/tasks/:task/messages", api.myMessage)

	// reviewer endpoints
	rg := g.Group("/review", auth, reviewerMiddleware())
	rg.GET("/queue", api.queue)

	sg := rg.Group("/students/:student/courses/:course", studentMiddleware(usrSvc))
	sg.GET("/overview", api.studentOverview)
	sg.GET("/next", api.nextToReview)
	sg.GET("/lessons/:lesson", api.studentLesson)
	sg.POST("/lessons/:lesson/lock", api.lock)
	sg.POST("/lessons/:lesson/unlock", api.unlock)
	sg.POST("/lessons/:lesson/accept", api.acceptLesson)
	sg.POST("/lessons/:lesson/reject", api.rejectLesson)
	sg.POST("/lessons/:lesson/tasks/:task/accept", api.acceptTask)
	sg.POST("/lessons/:lesson/tasks/:task/reject", api.rejectTask)
	sg.POST("/lessons/:lesson/tasks/:task/messages", api.reviewerMessage)
}

// Learner handlers

func (api *lessonApi) myOverview(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return api.overview(ctx, usr)
}

func (api *lessonApi) myLesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return api.view(ctx, usr)
}

func (api *lessonApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var p LessonParams
	if err = bindParams(ctx, api.validate, &p); err != nil {
		return err
	}

	rec, err := api.svc.Submit(ctx.Request().Context(), p.scope(), p.key(usr.ID))
	if err != nil {
		return errors.Wrap(err, "submitting lesson")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *lessonApi) saveAnswer(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var p TaskParams
	if err = bindParams(ctx, api.validate, &p); err != nil {
		return err
	}
	var data answerData
	if err = bindBody(ctx, api.validate, &data); err != nil {
		return err
	}

	rec, err := api.svc.Save(ctx.Request().Context(), p.scope(), p.key(usr.ID), p.TaskID, data.Answer)
	if err != nil {
		return errors.Wrap(err, "saving answer")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *lessonApi) markRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var p TaskParams
	if err = bindParams(ctx, api.validate, &p); err != nil {
		return err
	}

	rec, err := api.svc.MarkRead(ctx.Request().Context(), p.scope(), p.key(usr.ID), p.TaskID)
	if err != nil {
		return errors.Wrap(err, "marking task as read")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *lessonApi) myMessage(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return api.message(ctx, usr, usr)
}

// Reviewer handlers

func (api *lessonApi) queue(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	items, err := api.svc.ReviewQueue(ctx.Request().Context(), usr, ctx.QueryParam("org_id"))
	if err != nil {
		return errors.Wrap(err, "fetching review queue")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *lessonApi) studentOverview(ctx echo.Context) error {
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return api.overview(ctx, student)
}

func (api *lessonApi) nextToReview(ctx echo.Context) error {
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var p CourseParams
	if err = binder.BindPathParams(ctx, &p); err != nil {
		return errors.Wrap(err, "binding path params")
	}

	n, ok, err := api.svc.NextToReview(ctx.Request().Context(), p.CourseInstanceID, student.ID)
	if err != nil {
		return errors.Wrap(err, "finding next lesson to review")
	}
	if !ok {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"lesson_id": n})
}

func (api *lessonApi) studentLesson(ctx echo.Context) error {
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return api.view(ctx, student)
}

func (api *lessonApi) lock(ctx echo.Context) error {
	return api.reviewLesson(ctx, func(ctx echo.Context, p LessonParams, key lesson.Key, _ user.User) (lesson.Record, error) {
		return api.svc.Lock(ctx.Request().Context(), key)
	})
}

func (api *lessonApi) unlock(ctx echo.Context) error {
	return api.reviewLesson(ctx, func(ctx echo.Context, p LessonParams, key lesson.Key, _ user.User) (lesson.Record, error) {
		return api.svc.Unlock(ctx.Request().Context(), key)
	})
}

func (api *lessonApi) acceptLesson(ctx echo.Context) error {
	return api.reviewLesson(ctx, func(ctx echo.Context, p LessonParams, key lesson.Key, reviewer user.User) (lesson.Record, error) {
		return api.svc.AcceptLesson(ctx.Request().Context(), p.scope(), key, reviewer)
	})
}

func (api *lessonApi) rejectLesson(ctx echo.Context) error {
	return api.reviewLesson(ctx, func(ctx echo.Context, p LessonParams, key lesson.Key, reviewer user.User) (lesson.Record, error) {
		return api.svc.RejectLesson(ctx.Request().Context(), key, reviewer)
	})
}

func (api *lessonApi) acceptTask(ctx echo.Context) error {
	return api.reviewTask(ctx, api.svc.AcceptTask)
}

func (api *lessonApi) rejectTask(ctx echo.Context) error {
	return api.reviewTask(ctx, api.svc.RejectTask)
}

func (api *lessonApi) reviewerMessage(ctx echo.Context) error {
	reviewer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return api.message(ctx, reviewer, student)
}

// Shared

func (api *lessonApi) overview(ctx echo.Context, student user.User) error {
	var p CourseParams
	if err := bindParams(ctx, api.validate, &p); err != nil {
		return err
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), p.scope(), p.CourseInstanceID, student.ID)
	if err != nil {
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *lessonApi) view(ctx echo.Context, student user.User) error {
	var p LessonParams
	if err := bindParams(ctx, api.validate, &p); err != nil {
		return err
	}
	view, err := api.svc.View(ctx.Request().Context(), p.scope(), p.key(student.ID))
	if err != nil {
		return errors.Wrap(err, "viewing lesson")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *lessonApi) message(ctx echo.Context, author, student user.User) error {
	var p TaskParams
	if err := bindParams(ctx, api.validate, &p); err != nil {
		return err
	}
	var data messageData
	if err := bindBody(ctx, api.validate, &data); err != nil {
		return err
	}

	rec, err := api.svc.AppendMessage(ctx.Request().Context(), p.scope(), p.key(student.ID), p.TaskID, author, data.Text)
	if err != nil {
		return errors.Wrap(err, "posting message")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

type reviewLessonFunc func(ctx echo.Context, p LessonParams, key lesson.Key, reviewer user.User) (lesson.Record, error)

func (api *lessonApi) reviewLesson(ctx echo.Context, action reviewLessonFunc) error {
	reviewer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var p LessonParams
	if err = bindParams(ctx, api.validate, &p); err != nil {
		return err
	}

	rec, err := action(ctx, p, p.key(student.ID), reviewer)
	if err != nil {
		return errors.Wrap(err, "reviewing lesson")
	}
	return ctx.JSON(http.StatusOK, rec)
}

type reviewTaskFunc func(ctx context.Context, scope lesson.Scope, key lesson.Key, taskID string, reviewer user.User) (lesson.Record, error)

func (api *lessonApi) reviewTask(ctx echo.Context, action reviewTaskFunc) error {
	reviewer, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var p TaskParams
	if err = bindParams(ctx, api.validate, &p); err != nil {
		return err
	}

	rec, err := action(ctx.Request().Context(), p.scope(), p.key(student.ID), p.TaskID, reviewer)
	if err != nil {
		return errors.Wrap(err, "reviewing task")
	}
	return ctx.JSON(http.StatusOK, rec)
}
