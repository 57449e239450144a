package eventsvc

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
)

// LogNotifier writes every event to the logger.
type LogNotifier struct {
	logger core.Logger
}

func NewLogNotifier(logger core.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, ev lesson.Event) error {
	n.logger.Info(
		fmt.Sprintf("review: %s lesson %d of %s", ev.Kind, ev.LessonNum, ev.CourseInstanceID),
		map[string]interface{}{
			"profile_id":  ev.StudentID,
			"task_id":     ev.TaskID,
			"reviewer_id": ev.ReviewerID,
			"status":      ev.Status,
		},
	)
	return nil
}

// Multi delivers every event to all notifiers. Every one is tried; the first error is returned.
type Multi []lesson.Notifier

func (m Multi) Notify(ctx context.Context, ev lesson.Event) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New assembles the notifiers available with the given configuration. rdb may be nil.
func New(conf *core.Config, logger core.Logger, rdb *redis.Client, profiles lesson.ProfileGetter, mailer core.EmailService) lesson.Notifier {
	m := Multi{NewLogNotifier(logger), NewEmailNotifier(profiles, mailer)}
	if rdb != nil {
		m = append(m, NewRedisNotifier(rdb, conf.Redis.Channel))
	}
	return m
}
