package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/lesson"
)

var binder = new(echo.DefaultBinder)

// Embedded param types must be exported for the binder to fill them.

// CourseParams locates a course instance and the catalog course it was built from.
type CourseParams struct {
	CourseInstanceID string `param:"course" json:"course_ref_id" validate:"required,max=64"`
	CourseNo         string `query:"course_no" json:"course_no" validate:"required,max=64"`
	Lang             string `query:"lang" json:"lang" validate:"omitempty,alpha,max=8"`
}

func (p CourseParams) scope() lesson.Scope {
	return lesson.Scope{CourseNo: p.CourseNo, Lang: p.Lang}
}

type LessonParams struct {
	CourseParams
	LessonNum int `param:"lesson" json:"lesson_id" validate:"min=1"`
}

func (p LessonParams) key(studentID string) lesson.Key {
	return lesson.Key{CourseInstanceID: p.CourseInstanceID, StudentID: studentID, LessonNum: p.LessonNum}
}

type TaskParams struct {
	LessonParams
	TaskID string `param:"task" json:"task_id" validate:"required,taskid"`
}

type answerData struct {
	Answer string `json:"answer"`
}

type messageData struct {
	Text string `json:"text" validate:"required,notblank,maxrunes"`
}

type activeLessonData struct {
	LessonNum int `json:"lesson_id" validate:"min=1"`
}

// bindParams fills dest from the path and query params, whatever the method, then validates it.
func bindParams(ctx echo.Context, validate *validator.Validate, dest interface{}) error {
	if err := binder.BindPathParams(ctx, dest); err != nil {
		return errors.Wrap(err, "binding path params")
	}
	if err := binder.BindQueryParams(ctx, dest); err != nil {
		return errors.Wrap(err, "binding query params")
	}
	return validate.Struct(dest)
}

func bindBody(ctx echo.Context, validate *validator.Validate, dest interface{}) error {
	if err := binder.BindBody(ctx, dest); err != nil {
		return errors.Wrap(err, "binding body")
	}
	return validate.Struct(dest)
}
