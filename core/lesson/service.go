package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/catalog"
	"github.com/ExtCrs/extcourses/core/drawing"
	"github.com/ExtCrs/extcourses/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("lesson not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrTaskTypeMismatch = errors.New("operation not allowed for this task type")
	ErrNotReady         = errors.New("lesson is not ready to be sent")
	ErrNotEditable      = errors.New("lesson cannot be edited")
	ErrNoOrgLinkage     = errors.New("student is not linked to an organization")
	ErrVersionConflict  = errors.New("lesson was modified by someone else, reload it and retry")

	errMalformedDrawing = errors.New("malformed drawing")
	errEmptyMessage     = errors.New("message cannot be empty")

	notifyTimeout = 10 * time.Second
)

type (
	// Repository persists lesson records. SaveLesson upserts on Key and must reject a record
	// whose Version differs from the stored one with ErrVersionConflict.
	Repository interface {
		FetchStatusMap(ctx context.Context, courseInstanceID, studentID string) (StatusMap, error)
		FetchLesson(ctx context.Context, key Key) (Record, error)
		FetchLessons(ctx context.Context, courseInstanceID, studentID string) ([]Record, error)
		SaveLesson(ctx context.Context, rec Record) (Record, error)
		// LessonsToReview lists course instances with lessons awaiting review.
		// An empty orgID lists every organization.
		LessonsToReview(ctx context.Context, orgID string) ([]ReviewQueueItem, error)
	}

	ProfileGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		catalog  catalog.Catalog
		profiles ProfileGetter
		notifier Notifier
		logger   core.Logger

		now      func() time.Time
		runAsync func(func())
	}
)

func NewService(repo Repository, cat catalog.Catalog, profiles ProfileGetter, notifier Notifier, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		runAsync: func(f func()) { go f() },
	}
}

func (s *Service) lessonTasks(ctx context.Context, scope Scope, lessonNum int) ([]catalog.Task, error) {
	tasks, err := s.catalog.Tasks(ctx, scope.Lang, scope.CourseNo)
	if err != nil {
		return nil, errors.Wrap(err, "fetching tasks")
	}
	return catalog.ForLesson(tasks, lessonNum), nil
}

func (s *Service) lessonTask(ctx context.Context, scope Scope, lessonNum int, taskID string) (catalog.Task, []catalog.Task, error) {
	tasks, err := s.lessonTasks(ctx, scope, lessonNum)
	if err != nil {
		return catalog.Task{}, nil, err
	}
	task, ok := catalog.Find(tasks, taskID)
	if !ok {
		return catalog.Task{}, nil, ErrTaskNotFound
	}
	return task, tasks, nil
}

func (s *Service) fetch(ctx context.Context, key Key) (Record, error) {
	rec, err := s.repo.FetchLesson(ctx, key)
	if err != nil {
		return Record{}, errors.Wrap(err, "fetching lesson")
	}
	return rec.clone(), nil
}

func (s *Service) fetchOrNew(ctx context.Context, key Key, scope Scope) (Record, error) {
	rec, err := s.fetch(ctx, key)
	if errors.Cause(err) == ErrNotFound {
		return newRecord(key, scope), nil
	}
	return rec, err
}

// linkOrg copies the student's organization onto rec. Learner writes require one.
func (s *Service) linkOrg(ctx context.Context, rec *Record) error {
	usr, err := s.profiles.GetByID(ctx, rec.StudentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return ErrNoOrgLinkage
		}
		return errors.Wrap(err, "fetching student profile")
	}
	if !usr.HasOrg() {
		return ErrNoOrgLinkage
	}
	rec.OrgID = usr.OrgID
	return nil
}

func (s *Service) save(ctx context.Context, rec Record) (Record, error) {
	saved, err := s.repo.SaveLesson(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "saving lesson")
	}
	return saved, nil
}

// prepareLearnerWrite loads the record a learner is about to change and checks they still may.
func (s *Service) prepareLearnerWrite(ctx context.Context, scope Scope, key Key) (Record, error) {
	rec, err := s.fetchOrNew(ctx, key, scope)
	if err != nil {
		return Record{}, err
	}
	if !CanLearnerEdit(rec) {
		return Record{}, ErrNotEditable
	}
	if err = s.linkOrg(ctx, &rec); err != nil {
		return Record{}, err
	}
	if rec.CourseNo == "" {
		rec.CourseNo = scope.CourseNo
	}
	return rec, nil
}

// markStarted moves a lesson nobody submitted yet to in progress.
func markStarted(rec *Record) {
	if rec.Status == StatusUnset {
		rec.Status = StatusInProgress
	}
}

// Save stores the learner's answer to a write or pic task. Drawings are compressed first.
// The value of an answer the reviewer accepted can no longer change.
func (s *Service) Save(ctx context.Context, scope Scope, key Key, taskID, value string) (Record, error) {
	task, _, err := s.lessonTask(ctx, scope, key.LessonNum, taskID)
	if err != nil {
		return Record{}, err
	}
	if !task.Type.HasValue() {
		return Record{}, ErrTaskTypeMismatch
	}

	rec, err := s.prepareLearnerWrite(ctx, scope, key)
	if err != nil {
		return Record{}, err
	}

	if task.Type == catalog.TaskPic {
		if value, err = drawing.CompressAnswer(value); err != nil {
			return Record{}, core.NewFieldValidationError("answer", errMalformedDrawing)
		}
	}

	ans := rec.upsertAnswer(taskID)
	// accepted answers are closed to the learner
	if ans.Status == StatusAccepted && ans.Value != value {
		return Record{}, ErrNotEditable
	}
	ans.Value = value
	ans.Status = NextAnswerStatus(ans.Status)
	markStarted(&rec)

	return s.save(ctx, rec)
}

// MarkRead acknowledges a read task.
func (s *Service) MarkRead(ctx context.Context, scope Scope, key Key, taskID string) (Record, error) {
	task, _, err := s.lessonTask(ctx, scope, key.LessonNum, taskID)
	if err != nil {
		return Record{}, err
	}
	if task.Type != catalog.TaskRead {
		return Record{}, ErrTaskTypeMismatch
	}

	rec, err := s.prepareLearnerWrite(ctx, scope, key)
	if err != nil {
		return Record{}, err
	}

	ans := rec.upsertAnswer(taskID)
	ans.Status = NextAnswerStatus(ans.Status, StatusDone)
	markStarted(&rec)

	return s.save(ctx, rec)
}

// Submit sends the lesson for review. A rejected lesson comes back as corrected.
// Nothing is stored when the lesson is not ready.
func (s *Service) Submit(ctx context.Context, scope Scope, key Key) (Record, error) {
	tasks, err := s.lessonTasks(ctx, scope, key.LessonNum)
	if err != nil {
		return Record{}, err
	}

	rec, err := s.prepareLearnerWrite(ctx, scope, key)
	if err != nil {
		return Record{}, err
	}

	prior := rec.Status
	defaultAnswersToDone(tasks, &rec)
	if !canSubmit(prior, tasks, rec.Answers) {
		return Record{}, ErrNotReady
	}

	if prior == StatusRejected {
		rec.Status = StatusCorrected
	} else {
		rec.Status = StatusDone
	}
	return s.save(ctx, rec)
}

// AppendMessage posts text to the chat of a task. Reviewers and admins write to the
// review comments, everybody else to the student questions.
func (s *Service) AppendMessage(ctx context.Context, scope Scope, key Key, taskID string, author user.User, text string) (Record, error) {
	text = core.CleanString(text)
	if text == "" {
		return Record{}, core.NewFieldValidationError("text", errEmptyMessage)
	}
	if _, _, err := s.lessonTask(ctx, scope, key.LessonNum, taskID); err != nil {
		return Record{}, err
	}

	rec, err := s.fetchOrNew(ctx, key, scope)
	if err != nil {
		return Record{}, err
	}

	ch := ChannelOf(author)
	if ch == ChannelReviewer {
		if rec.IsNew() {
			return Record{}, ErrNotFound
		}
	} else if err = s.linkOrg(ctx, &rec); err != nil {
		return Record{}, err
	}

	appendMessage(rec.upsertAnswer(taskID), ch, newMessage(author, text, s.now()))
	return s.save(ctx, rec)
}

// View assembles everything needed to display a lesson. Lessons never saved come back empty.
func (s *Service) View(ctx context.Context, scope Scope, key Key) (LessonView, error) {
	tasks, err := s.lessonTasks(ctx, scope, key.LessonNum)
	if err != nil {
		return LessonView{}, err
	}
	rec, err := s.fetchOrNew(ctx, key, scope)
	if err != nil {
		return LessonView{}, err
	}

	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		tv := TaskView{Task: task, Chat: []ChatEntry{}}
		if ans, ok := rec.Answer(task.ID); ok {
			tv.Answer = &ans
			tv.Chat = MergeChat(ans.ReviewComments, ans.StudentQuestions)
			if task.Type == catalog.TaskPic {
				tv.Strokes = s.parseStrokes(rec, ans)
			}
		}
		views = append(views, tv)
	}

	defaulted := rec.clone()
	defaultAnswersToDone(tasks, &defaulted)
	editable := CanLearnerEdit(rec)

	return LessonView{
		Record:   rec,
		Tasks:    views,
		Editable: editable,
		Locked:   rec.LockedBy == LockReviewer,
		CanSend:  editable && canSubmit(rec.Status, tasks, defaulted.Answers),
	}, nil
}

// parseStrokes decodes a stored drawing. A malformed one is logged and shown as empty.
func (s *Service) parseStrokes(rec Record, ans Answer) []drawing.Stroke {
	strokes, err := drawing.Parse(ans.Value)
	if err != nil {
		s.logger.Warn(
			fmt.Sprintf("malformed drawing: lesson %s task %s: %v", rec.ID, ans.TaskID, err),
			err,
			map[string]interface{}{"course_ref_id": rec.CourseInstanceID, "lesson_id": rec.LessonNum, "task_id": ans.TaskID},
		)
		return []drawing.Stroke{}
	}
	return strokes
}

// StatusMap returns the status of every lesson the student has started.
func (s *Service) StatusMap(ctx context.Context, courseInstanceID, studentID string) (StatusMap, error) {
	statuses, err := s.repo.FetchStatusMap(ctx, courseInstanceID, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching status map")
	}
	return statuses, nil
}

type CourseOverview struct {
	Statuses StatusMap `json:"statuses"`
	Progress Progress  `json:"progress"`
}

// Overview computes the progress of a student through a course instance.
func (s *Service) Overview(ctx context.Context, scope Scope, courseInstanceID, studentID string) (CourseOverview, error) {
	tasks, err := s.catalog.Tasks(ctx, scope.Lang, scope.CourseNo)
	if err != nil {
		return CourseOverview{}, errors.Wrap(err, "fetching tasks")
	}
	records, err := s.repo.FetchLessons(ctx, courseInstanceID, studentID)
	if err != nil {
		return CourseOverview{}, errors.Wrap(err, "fetching lessons")
	}

	statuses := make(StatusMap, len(records))
	for _, rec := range records {
		statuses[rec.LessonNum] = rec.Status
	}
	return CourseOverview{
		Statuses: statuses,
		Progress: ComputeProgress(records, catalog.LessonCount(tasks)),
	}, nil
}
