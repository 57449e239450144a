package preference

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core"
)

var (
	// errors
	ErrNotFound       = errors.New("preference not found")
	errNoContext      = errors.New("browsing context is required")
	errInvalidLesson  = errors.New("lesson number must be positive")
	activeLessonScope = "active_lesson:"
)

// Repository is a key-value store partitioned by browsing context.
type Repository interface {
	GetPreference(ctx context.Context, contextKey, name string) (string, error)
	SetPreference(ctx context.Context, contextKey, name, value string) error
}

// Service remembers client-local state, such as the lesson being viewed, per browsing context.
// Nothing is shared between contexts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ActiveLesson returns the lesson last viewed in course instance courseInstanceID, if any.
func (svc *Service) ActiveLesson(ctx context.Context, contextKey, courseInstanceID string) (int, bool, error) {
	contextKey = core.CleanString(contextKey)
	if contextKey == "" {
		return 0, false, core.NewFieldValidationError("context", errNoContext)
	}
	val, err := svc.repo.GetPreference(ctx, contextKey, activeLessonScope+courseInstanceID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "fetching active lesson")
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return 0, false, nil
	}
	return n, true, nil
}

func (svc *Service) SetActiveLesson(ctx context.Context, contextKey, courseInstanceID string, lessonNum int) error {
	contextKey = core.CleanString(contextKey)
	if contextKey == "" {
		return core.NewFieldValidationError("context", errNoContext)
	}
	if lessonNum < 1 {
		return core.NewFieldValidationError("lesson_id", errInvalidLesson)
	}
	err := svc.repo.SetPreference(ctx, contextKey, activeLessonScope+courseInstanceID, strconv.Itoa(lessonNum))
	return errors.Wrap(err, "storing active lesson")
}
