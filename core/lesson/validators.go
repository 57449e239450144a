package lesson

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ExtCrs/extcourses/core"
)

var (
	taskIDTag   = "taskid"
	taskIDText  = "invalid task id"
	taskIDRegex = regexp.MustCompile(`^[\w-]{1,64}$`)
)

// InitValidators registers the lesson validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(taskIDTag, taskIDValidation)
	core.RegisterCustomTranslation(validate, translator, taskIDTag, taskIDText)
}

func taskIDValidation(fl validator.FieldLevel) bool {
	return taskIDRegex.MatchString(fl.Field().String())
}
