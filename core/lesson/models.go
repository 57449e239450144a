package lesson

import (
	"time"

	"github.com/ExtCrs/extcourses/core/catalog"
	"github.com/ExtCrs/extcourses/core/drawing"
)

type Status string

const (
	StatusUnset      Status = ""
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusRejected   Status = "rejected"
	StatusCorrected  Status = "corrected"
	StatusAccepted   Status = "accepted"
)

// AwaitsReview reports whether a lesson with this status sits in the review queue.
func (s Status) AwaitsReview() bool {
	return s == StatusDone || s == StatusCorrected
}

type LockHolder string

const (
	LockNone     LockHolder = ""
	LockReviewer LockHolder = "reviewer"
)

// Key identifies a lesson record.
type Key struct {
	CourseInstanceID string `json:"course_ref_id"`
	StudentID        string `json:"profile_id"`
	LessonNum        int    `json:"lesson_id"`
}

// Scope locates the task definitions of a lesson in the catalog.
type Scope struct {
	CourseNo string
	Lang     string
}

type Message struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"full_name"`
	AuthorRole string    `json:"role"`
}

// Answer is the learner's work on one task, with both chat channels attached.
type Answer struct {
	TaskID           string    `json:"id"`
	Value            string    `json:"answer"`
	Status           Status    `json:"status,omitempty"`
	ReviewComments   []Message `json:"review_comments"`
	StudentQuestions []Message `json:"student_questions"`
}

// Record is the persisted progress of one student on one lesson.
type Record struct {
	ID string `json:"id,omitempty"`
	Key
	OrgID     string     `json:"org_id,omitempty"`
	CourseNo  string     `json:"course_no"`
	Status    Status     `json:"status"`
	LockedBy  LockHolder `json:"locked_by,omitempty"`
	Answers   []Answer   `json:"answers"`
	Version   int        `json:"version"` // 0 until first persisted
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newRecord(key Key, scope Scope) Record {
	return Record{Key: key, CourseNo: scope.CourseNo, Answers: []Answer{}}
}

func (r Record) IsNew() bool { return r.Version == 0 }

// Answer returns the answer to taskID, if any.
func (r Record) Answer(taskID string) (Answer, bool) {
	if i := r.answerIndex(taskID); i >= 0 {
		return r.Answers[i], true
	}
	return Answer{}, false
}

func (r Record) answerIndex(taskID string) int {
	for i := range r.Answers {
		if r.Answers[i].TaskID == taskID {
			return i
		}
	}
	return -1
}

// upsertAnswer returns the answer to taskID, appending an empty one when missing.
// The pointer is invalidated by the next append.
func (r *Record) upsertAnswer(taskID string) *Answer {
	if i := r.answerIndex(taskID); i >= 0 {
		return &r.Answers[i]
	}
	r.Answers = append(r.Answers, Answer{
		TaskID:           taskID,
		ReviewComments:   []Message{},
		StudentQuestions: []Message{},
	})
	return &r.Answers[len(r.Answers)-1]
}

// clone deep-copies the answers so mutations never leak into a caller's record.
func (r Record) clone() Record {
	answers := make([]Answer, len(r.Answers))
	for i, a := range r.Answers {
		a.ReviewComments = append([]Message{}, a.ReviewComments...)
		a.StudentQuestions = append([]Message{}, a.StudentQuestions...)
		answers[i] = a
	}
	r.Answers = answers
	return r
}

// StatusMap maps lesson numbers to their status. It is recomputed on every fetch.
type StatusMap map[int]Status

// ReviewQueueItem counts the lessons of one course instance waiting for a reviewer.
type ReviewQueueItem struct {
	CourseInstanceID string `json:"course_ref_id" db:"course_ref_id"`
	StudentID        string `json:"profile_id" db:"profile_id"`
	StudentName      string `json:"full_name" db:"-"`
	OrgID            string `json:"org_id" db:"org_id"`
	CourseNo         string `json:"course_no" db:"course_no"`
	LessonsToCheck   int    `json:"lessons_to_check" db:"lessons_to_check"`
	NextLesson       int    `json:"next_lesson" db:"next_lesson"`
}

// TaskView is what a client needs to render one task of a lesson.
type TaskView struct {
	Task    catalog.Task     `json:"task"`
	Answer  *Answer          `json:"answer"`
	Strokes []drawing.Stroke `json:"strokes,omitempty"` // pic tasks only
	Chat    []ChatEntry      `json:"chat"`
}

type LessonView struct {
	Record   Record     `json:"lesson"`
	Tasks    []TaskView `json:"tasks"`
	Editable bool       `json:"editable"`
	Locked   bool       `json:"locked"`
	CanSend  bool       `json:"can_send"`
}
