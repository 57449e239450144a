package lesson_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/user"
	inmemdb "github.com/ExtCrs/extcourses/storage/database/inmem"
	"github.com/ExtCrs/extcourses/testutil"
)

const (
	taskWrite  = "1"
	taskRead   = "2"
	taskPic    = "3"
	taskRetell = "4"
	orgID      = "0b5f6e52-5c1a-4a8e-9e6f-6f8d1a2b3c4d"
	courseRef  = "course-instance-1"
)

type fixture struct {
	svc      *lesson.Service
	repo     lesson.Repository
	users    user.Repository
	logger   *testutil.Logger
	notifier *testutil.Notifier
	student  user.User
	reviewer user.User
	admin    user.User
	clock    time.Time
}

func setup(t *testing.T) *fixture {
	db := inmemdb.Open()
	f := &fixture{
		repo:     inmemdb.NewLessonRepository(db),
		users:    inmemdb.NewUserRepository(db),
		logger:   testutil.NewLogger(),
		notifier: &testutil.Notifier{},
		clock:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.student = testutil.CreateUser(t, f.users, "Анна Иванова", "anna@example.com", user.RoleLearner, orgID)
	f.reviewer = testutil.CreateUser(t, f.users, "Пётр Петров", "petr@example.com", user.RoleReviewer, orgID)
	f.admin = testutil.CreateUser(t, f.users, "Admin", "admin@example.com", user.RoleAdmin, "")

	now := func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	f.svc = lesson.NewServiceMock(f.repo, testutil.Catalog(), user.NewService(f.users), f.notifier, f.logger, now)
	return f
}

func (f *fixture) key(lessonNum int) lesson.Key {
	return lesson.Key{CourseInstanceID: courseRef, StudentID: f.student.ID, LessonNum: lessonNum}
}

// completeLesson1 answers every task of lesson 1 and submits it.
func (f *fixture) completeLesson1(t *testing.T) lesson.Record {
	ctx := context.Background()
	_, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "<p>Мой день</p>")
	require.NoError(t, err)
	_, err = f.svc.MarkRead(ctx, testutil.Scope(), f.key(1), taskRead)
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, testutil.Scope(), f.key(1), taskPic, testutil.Drawing([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2}))
	require.NoError(t, err)
	rec, err := f.svc.Submit(ctx, testutil.Scope(), f.key(1))
	require.NoError(t, err)
	return rec
}

func answerStatus(t *testing.T, rec lesson.Record, taskID string) lesson.Status {
	ans, ok := rec.Answer(taskID)
	require.True(t, ok, "answer to task %s", taskID)
	return ans.Status
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("first save creates the record", func(t *testing.T) {
		f := setup(t)
		rec, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "<p>ответ</p>")
		require.NoError(t, err)

		assert.Equal(t, 1, rec.Version)
		assert.Equal(t, orgID, rec.OrgID)
		assert.Equal(t, testutil.CourseNo, rec.CourseNo)
		assert.Equal(t, lesson.StatusInProgress, rec.Status)
		assert.Equal(t, lesson.StatusDone, answerStatus(t, rec, taskWrite))
		ans, _ := rec.Answer(taskWrite)
		assert.Equal(t, "<p>ответ</p>", ans.Value)
	})

	t.Run("drawings are compressed", func(t *testing.T) {
		f := setup(t)
		rec, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskPic,
			testutil.Drawing([2]float64{0, 0}, [2]float64{1.004, 0.5}, [2]float64{2, 1}, [2]float64{3.333333, 1.5}))
		require.NoError(t, err)

		ans, _ := rec.Answer(taskPic)
		assert.JSONEq(t, `[{"drawMode":true,"strokeColor":"#000000","strokeWidth":4,"paths":[{"x":0,"y":0},{"x":3.33,"y":1.5}]}]`, ans.Value)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			key     func(f *fixture) lesson.Key
			taskID  string
			value   string
			wantErr error
		}{
			{name: "unknown task", key: func(f *fixture) lesson.Key { return f.key(1) }, taskID: "99", wantErr: lesson.ErrTaskNotFound},
			{name: "task of another lesson", key: func(f *fixture) lesson.Key { return f.key(2) }, taskID: taskWrite, wantErr: lesson.ErrTaskNotFound},
			{name: "read task", key: func(f *fixture) lesson.Key { return f.key(1) }, taskID: taskRead, wantErr: lesson.ErrTaskTypeMismatch},
			{
				name:    "student without org",
				key:     func(f *fixture) lesson.Key { return lesson.Key{CourseInstanceID: courseRef, StudentID: f.admin.ID, LessonNum: 1} },
				taskID:  taskWrite,
				wantErr: lesson.ErrNoOrgLinkage,
			},
			{
				name:    "unknown student",
				key:     func(f *fixture) lesson.Key { return lesson.Key{CourseInstanceID: courseRef, StudentID: "nobody", LessonNum: 1} },
				taskID:  taskWrite,
				wantErr: lesson.ErrNoOrgLinkage,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := setup(t)
				_, err := f.svc.Save(ctx, testutil.Scope(), tt.key(f), tt.taskID, tt.value)
				assert.Equal(t, tt.wantErr, errors.Cause(err))

				statuses, err := f.svc.StatusMap(ctx, courseRef, tt.key(f).StudentID)
				require.NoError(t, err)
				assert.Empty(t, statuses, "nothing stored")
			})
		}
	})

	t.Run("malformed drawing", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskPic, `{"paths":`)
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
	})
}

func TestService_lockedOrSubmittedLessonIsReadOnly(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.completeLesson1(t)

	_, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "late change")
	assert.Equal(t, lesson.ErrNotEditable, errors.Cause(err), "done lesson")

	_, err = f.svc.RejectLesson(ctx, f.key(1), f.reviewer)
	require.NoError(t, err)
	_, err = f.svc.Lock(ctx, f.key(1))
	require.NoError(t, err)

	for name, op := range map[string]func() error{
		"save": func() error {
			_, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "x")
			return err
		},
		"mark read": func() error {
			_, err := f.svc.MarkRead(ctx, testutil.Scope(), f.key(1), taskRead)
			return err
		},
		"submit": func() error {
			_, err := f.svc.Submit(ctx, testutil.Scope(), f.key(1))
			return err
		},
	} {
		assert.Equal(t, lesson.ErrNotEditable, errors.Cause(op()), name)
	}

	view, err := f.svc.View(ctx, testutil.Scope(), f.key(1))
	require.NoError(t, err)
	assert.True(t, view.Locked)
	assert.False(t, view.Editable)
	assert.False(t, view.CanSend)

	rec, err := f.svc.Unlock(ctx, f.key(1))
	require.NoError(t, err)
	assert.Equal(t, lesson.LockNone, rec.LockedBy)
	assert.True(t, lesson.CanLearnerEdit(rec))
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("a missing answer blocks the submit", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "ответ")
		require.NoError(t, err)
		_, err = f.svc.MarkRead(ctx, testutil.Scope(), f.key(1), taskRead)
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, testutil.Scope(), f.key(1))
		assert.Equal(t, lesson.ErrNotReady, errors.Cause(err))

		rec, err := f.repo.FetchLesson(ctx, f.key(1))
		require.NoError(t, err)
		assert.Equal(t, lesson.StatusInProgress, rec.Status, "status unchanged")
		_, ok := rec.Answer(taskPic)
		assert.False(t, ok, "missing answer not created")
	})

	t.Run("an unread task blocks the submit", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "ответ")
		require.NoError(t, err)
		_, err = f.svc.Save(ctx, testutil.Scope(), f.key(1), taskPic, "")
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, testutil.Scope(), f.key(1))
		assert.Equal(t, lesson.ErrNotReady, errors.Cause(err))
	})

	t.Run("lesson without tasks", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Submit(ctx, testutil.Scope(), f.key(42))
		assert.Equal(t, lesson.ErrNotReady, errors.Cause(err))
	})

	t.Run("ready lesson is done", func(t *testing.T) {
		f := setup(t)
		rec := f.completeLesson1(t)
		assert.Equal(t, lesson.StatusDone, rec.Status)
		assert.Equal(t, 4, rec.Version)
	})
}

// two write tasks, only one answered
func TestScenarioA(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()

	rec, err := f.svc.Save(ctx, scope, f.key(4), "6", "ответ")
	require.NoError(t, err)
	require.Equal(t, lesson.StatusDone, answerStatus(t, rec, "6"))

	_, err = f.svc.Submit(ctx, scope, f.key(4))
	assert.Equal(t, lesson.ErrNotReady, errors.Cause(err))

	rec, err = f.repo.FetchLesson(ctx, f.key(4))
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusInProgress, rec.Status)
	assert.Equal(t, 1, rec.Version, "nothing stored")
	_, ok := rec.Answer("7")
	assert.False(t, ok)
}

func TestScenarioB(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	rec := f.completeLesson1(t)
	require.Equal(t, lesson.StatusDone, rec.Status)

	rec, err := f.svc.AcceptLesson(ctx, testutil.Scope(), f.key(1), f.reviewer)
	require.NoError(t, err)

	assert.Equal(t, lesson.StatusAccepted, rec.Status)
	assert.Equal(t, lesson.StatusAccepted, answerStatus(t, rec, taskWrite))
	assert.Equal(t, lesson.StatusAccepted, answerStatus(t, rec, taskPic))
	assert.Equal(t, lesson.StatusDone, answerStatus(t, rec, taskRead))
	assert.Equal(t, []lesson.EventKind{lesson.EventLessonAccepted}, f.notifier.Kinds())
}

func TestScenarioC(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()
	f.completeLesson1(t)

	_, err := f.svc.RejectTask(ctx, scope, f.key(1), taskWrite, f.reviewer)
	require.NoError(t, err)
	rec, err := f.svc.RejectLesson(ctx, f.key(1), f.reviewer)
	require.NoError(t, err)
	require.Equal(t, lesson.StatusRejected, rec.Status)

	view, err := f.svc.View(ctx, scope, f.key(1))
	require.NoError(t, err)
	assert.True(t, view.Editable)
	assert.False(t, view.CanSend, "rejected answer pending")

	rec, err = f.svc.Save(ctx, scope, f.key(1), taskWrite, "исправлено")
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusCorrected, answerStatus(t, rec, taskWrite))
	assert.Equal(t, lesson.StatusRejected, rec.Status)

	rec, err = f.svc.Submit(ctx, scope, f.key(1))
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusCorrected, rec.Status)

	items, err := f.svc.ReviewQueue(ctx, f.reviewer, "")
	require.NoError(t, err)
	require.Len(t, items, 1, "corrected lessons await review")
	assert.Equal(t, 1, items[0].NextLesson)
}

func TestService_acceptedAnswerIsFrozen(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()
	f.completeLesson1(t)

	_, err := f.svc.AcceptTask(ctx, scope, f.key(1), taskWrite, f.reviewer)
	require.NoError(t, err)
	_, err = f.svc.RejectTask(ctx, scope, f.key(1), taskPic, f.reviewer)
	require.NoError(t, err)
	_, err = f.svc.RejectLesson(ctx, f.key(1), f.reviewer)
	require.NoError(t, err)

	_, err = f.svc.Save(ctx, scope, f.key(1), taskWrite, "<p>другой ответ</p>")
	assert.Equal(t, lesson.ErrNotEditable, errors.Cause(err))

	rec, err := f.repo.FetchLesson(ctx, f.key(1))
	require.NoError(t, err)
	ans, _ := rec.Answer(taskWrite)
	assert.Equal(t, "<p>Мой день</p>", ans.Value)
	assert.Equal(t, lesson.StatusAccepted, ans.Status)

	rec, err = f.svc.Save(ctx, scope, f.key(1), taskWrite, "<p>Мой день</p>")
	require.NoError(t, err, "same value is accepted")
	assert.Equal(t, lesson.StatusAccepted, answerStatus(t, rec, taskWrite))

	rec, err = f.svc.Save(ctx, scope, f.key(1), taskPic, testutil.Drawing([2]float64{0, 0}, [2]float64{5, 5}))
	require.NoError(t, err, "rejected answers stay editable")
	assert.Equal(t, lesson.StatusCorrected, answerStatus(t, rec, taskPic))
}

func TestService_RejectLessonKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()
	f.completeLesson1(t)

	_, err := f.svc.AppendMessage(ctx, scope, f.key(1), taskWrite, f.student, "Так правильно?")
	require.NoError(t, err)
	_, err = f.svc.AppendMessage(ctx, scope, f.key(1), taskWrite, f.reviewer, "Почти")
	require.NoError(t, err)
	_, err = f.svc.AcceptTask(ctx, scope, f.key(1), taskPic, f.reviewer)
	require.NoError(t, err)
	before, err := f.svc.RejectTask(ctx, scope, f.key(1), taskWrite, f.reviewer)
	require.NoError(t, err)

	rec, err := f.svc.RejectLesson(ctx, f.key(1), f.reviewer)
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusRejected, rec.Status)
	assert.Equal(t, before.Answers, rec.Answers)

	ans, _ := rec.Answer(taskWrite)
	assert.Len(t, ans.StudentQuestions, 1)
	assert.Len(t, ans.ReviewComments, 1)
}

func TestService_reviewTask(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()
	f.completeLesson1(t)

	rec, err := f.svc.AcceptTask(ctx, scope, f.key(1), taskPic, f.reviewer)
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusAccepted, answerStatus(t, rec, taskPic))
	assert.Equal(t, lesson.StatusDone, rec.Status, "lesson status left alone")

	_, err = f.svc.AcceptTask(ctx, scope, f.key(1), taskRead, f.reviewer)
	assert.Equal(t, lesson.ErrTaskTypeMismatch, errors.Cause(err))

	_, err = f.svc.RejectTask(ctx, scope, f.key(3), "5", f.reviewer)
	assert.Equal(t, lesson.ErrTaskTypeMismatch, errors.Cause(err))

	_, err = f.svc.AcceptTask(ctx, scope, f.key(2), taskRetell, f.reviewer)
	assert.Equal(t, lesson.ErrNotFound, errors.Cause(err), "no record")

	_, err = f.svc.RejectTask(ctx, scope, f.key(1), "99", f.reviewer)
	assert.Equal(t, lesson.ErrTaskNotFound, errors.Cause(err))

	ev := f.notifier.Events[0]
	assert.Equal(t, lesson.EventTaskAccepted, ev.Kind)
	assert.Equal(t, taskPic, ev.TaskID)
	assert.Equal(t, f.reviewer.ID, ev.ReviewerID)
	assert.Equal(t, orgID, ev.OrgID)
	assert.Len(t, f.notifier.Events, 1)
}

func TestService_reviewTask_missingAnswer(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()

	_, err := f.svc.Save(ctx, scope, f.key(1), taskWrite, "ответ")
	require.NoError(t, err)

	_, err = f.svc.AcceptTask(ctx, scope, f.key(1), taskPic, f.reviewer)
	assert.Equal(t, lesson.ErrAnswerNotFound, errors.Cause(err))
}

func TestService_failingNotifierKeepsTheVerdict(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.notifier.Err = errors.New("redis down")
	f.completeLesson1(t)

	rec, err := f.svc.RejectLesson(ctx, f.key(1), f.reviewer)
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusRejected, rec.Status)
	assert.Equal(t, []string{"warning"}, f.logger.Levels())
}

func TestService_AppendMessage(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	scope := testutil.Scope()

	_, err := f.svc.AppendMessage(ctx, scope, f.key(1), taskWrite, f.reviewer, "комментарий")
	assert.Equal(t, lesson.ErrNotFound, errors.Cause(err), "reviewer cannot start a lesson")

	_, err = f.svc.AppendMessage(ctx, scope, f.key(1), taskWrite, f.student, "   ")
	var verr *core.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.svc.AppendMessage(ctx, scope, f.key(1), taskRead, f.student, "Что читать?")
	require.NoError(t, err)
	f.completeLesson1(t)
	_, err = f.svc.AppendMessage(ctx, scope, f.key(1), taskRead, f.reviewer, "Параграф 3")
	require.NoError(t, err)
	_, err = f.svc.AppendMessage(ctx, scope, f.key(1), taskRead, f.admin, "Или 4")
	require.NoError(t, err)
	rec, err := f.svc.AppendMessage(ctx, scope, f.key(1), taskRead, f.student, "Спасибо")
	require.NoError(t, err, "learners may still ask after submitting")
	assert.Equal(t, lesson.StatusDone, rec.Status)

	view, err := f.svc.View(ctx, scope, f.key(1))
	require.NoError(t, err)
	var chat []string
	for _, e := range view.Tasks[1].Chat {
		chat = append(chat, string(e.Channel)+": "+e.Text+" ("+e.AuthorName+")")
	}
	assert.Equal(t, []string{
		"learner: Что читать? (Анна Иванова)",
		"reviewer: Параграф 3 (Пётр Петров)",
		"reviewer: Или 4 (Admin)",
		"learner: Спасибо (Анна Иванова)",
	}, chat)
	assert.Equal(t, lesson.StatusDone, answerStatus(t, view.Record, taskRead))
}

func TestService_View(t *testing.T) {
	ctx := context.Background()

	t.Run("unsaved lesson", func(t *testing.T) {
		f := setup(t)
		view, err := f.svc.View(ctx, testutil.Scope(), f.key(1))
		require.NoError(t, err)

		assert.True(t, view.Record.IsNew())
		assert.True(t, view.Editable)
		assert.False(t, view.CanSend)
		require.Len(t, view.Tasks, 3)
		for _, tv := range view.Tasks {
			assert.Nil(t, tv.Answer)
			assert.Empty(t, tv.Chat)
		}
	})

	t.Run("write answer without status still lets the lesson be sent", func(t *testing.T) {
		f := setup(t)
		rec := f.completeLesson1(t)
		rec.Status = lesson.StatusInProgress
		rec.Answers[0].Status = lesson.StatusUnset
		_, err := f.repo.SaveLesson(ctx, rec)
		require.NoError(t, err)

		view, err := f.svc.View(ctx, testutil.Scope(), f.key(1))
		require.NoError(t, err)
		assert.True(t, view.CanSend)
		assert.Equal(t, lesson.StatusUnset, answerStatus(t, view.Record, taskWrite), "view does not store the default")
	})

	t.Run("malformed drawing is shown empty and logged", func(t *testing.T) {
		f := setup(t)
		rec := f.completeLesson1(t)
		for i := range rec.Answers {
			if rec.Answers[i].TaskID == taskPic {
				rec.Answers[i].Value = "not a drawing"
			}
		}
		_, err := f.repo.SaveLesson(ctx, rec)
		require.NoError(t, err)

		view, err := f.svc.View(ctx, testutil.Scope(), f.key(1))
		require.NoError(t, err)
		assert.Equal(t, taskPic, view.Tasks[2].Task.ID)
		assert.NotNil(t, view.Tasks[2].Strokes)
		assert.Empty(t, view.Tasks[2].Strokes)
		assert.Equal(t, []string{"warning"}, f.logger.Levels())
	})
}

func TestService_versionConflict(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	stale, err := f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "v1")
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, testutil.Scope(), f.key(1), taskWrite, "v2")
	require.NoError(t, err)

	_, err = f.repo.SaveLesson(ctx, stale)
	assert.Equal(t, lesson.ErrVersionConflict, errors.Cause(err))

	fresh := stale
	fresh.Version = 0
	_, err = f.repo.SaveLesson(ctx, fresh)
	assert.Equal(t, lesson.ErrVersionConflict, errors.Cause(err), "duplicate insert")
}

func TestService_ReviewQueue(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.completeLesson1(t)
	_, err := f.svc.Save(ctx, testutil.Scope(), f.key(2), taskRetell, "ответ")
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, testutil.Scope(), f.key(2))
	require.NoError(t, err)

	want := []lesson.ReviewQueueItem{{
		CourseInstanceID: courseRef,
		StudentID:        f.student.ID,
		StudentName:      f.student.Name,
		OrgID:            orgID,
		CourseNo:         testutil.CourseNo,
		LessonsToCheck:   2,
		NextLesson:       1,
	}}

	items, err := f.svc.ReviewQueue(ctx, f.reviewer, "another-org")
	require.NoError(t, err)
	assert.Equal(t, want, items, "reviewers see their own organization")

	items, err = f.svc.ReviewQueue(ctx, f.admin, "another-org")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = f.svc.ReviewQueue(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, want, items)

	_, err = f.svc.ReviewQueue(ctx, user.User{Role: user.RoleReviewer}, "")
	assert.Equal(t, lesson.ErrNoOrgLinkage, errors.Cause(err))

	n, ok, err := f.svc.NextToReview(ctx, courseRef, f.student.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, err = f.svc.AcceptLesson(ctx, testutil.Scope(), f.key(1), f.reviewer)
	require.NoError(t, err)
	n, _, err = f.svc.NextToReview(ctx, courseRef, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_Overview(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.completeLesson1(t)
	_, err := f.svc.MarkRead(ctx, testutil.Scope(), f.key(3), "5")
	require.NoError(t, err)

	ov, err := f.svc.Overview(ctx, testutil.Scope(), courseRef, f.student.ID)
	require.NoError(t, err)

	assert.Equal(t, lesson.StatusMap{1: lesson.StatusDone, 3: lesson.StatusInProgress}, ov.Statuses)
	assert.Equal(t, lesson.Progress{
		TotalLessons:    4,
		Completed:       1,
		InProgress:      1,
		Pending:         2,
		CompletionRate:  25,
		CompletedTasks:  4,
		CurrentLesson:   2,
		LessonsToReview: 1,
	}, ov.Progress)
}
