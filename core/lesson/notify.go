package lesson

import (
	"context"
	"time"
)

type EventKind string

const (
	EventTaskAccepted   EventKind = "task_accepted"
	EventTaskRejected   EventKind = "task_rejected"
	EventLessonAccepted EventKind = "lesson_accepted"
	EventLessonRejected EventKind = "lesson_rejected"
)

// Event describes a committed review action. Listeners refresh their lesson overviews from it.
type Event struct {
	Kind EventKind `json:"kind"`
	Key
	OrgID      string    `json:"org_id,omitempty"`
	CourseNo   string    `json:"course_no"`
	TaskID     string    `json:"task_id,omitempty"`
	Status     Status    `json:"status"`
	ReviewerID string    `json:"reviewer_id"`
	At         time.Time `json:"at"`
}

// LessonReviewed reports whether the whole lesson got a verdict.
func (ev Event) LessonReviewed() bool {
	return ev.Kind == EventLessonAccepted || ev.Kind == EventLessonRejected
}

// Notifier is told about review actions after they are persisted. Failures never undo the action.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
