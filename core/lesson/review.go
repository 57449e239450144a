package lesson

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/user"
)

// AcceptTask accepts the answer to a write or pic task. The lesson status is left alone.
func (s *Service) AcceptTask(ctx context.Context, scope Scope, key Key, taskID string, reviewer user.User) (Record, error) {
	return s.reviewTask(ctx, scope, key, taskID, reviewer, StatusAccepted, EventTaskAccepted)
}

// RejectTask rejects the answer to a write or pic task. The lesson status is left alone.
func (s *Service) RejectTask(ctx context.Context, scope Scope, key Key, taskID string, reviewer user.User) (Record, error) {
	return s.reviewTask(ctx, scope, key, taskID, reviewer, StatusRejected, EventTaskRejected)
}

func (s *Service) reviewTask(ctx context.Context, scope Scope, key Key, taskID string, reviewer user.User, verdict Status, kind EventKind) (Record, error) {
	task, _, err := s.lessonTask(ctx, scope, key.LessonNum, taskID)
	if err != nil {
		return Record{}, err
	}
	if !task.Type.HasValue() {
		return Record{}, ErrTaskTypeMismatch
	}

	rec, err := s.fetch(ctx, key)
	if err != nil {
		return Record{}, err
	}
	i := rec.answerIndex(taskID)
	if i < 0 {
		return Record{}, ErrAnswerNotFound
	}
	rec.Answers[i].Status = NextAnswerStatus(rec.Answers[i].Status, verdict)

	saved, err := s.save(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.notify(s.newEvent(kind, saved, reviewer, taskID))
	return saved, nil
}

// AcceptLesson accepts every write and pic answer, keeping their chats, and the lesson itself.
// Read answers are left as they are. The review lock is released.
func (s *Service) AcceptLesson(ctx context.Context, scope Scope, key Key, reviewer user.User) (Record, error) {
	tasks, err := s.lessonTasks(ctx, scope, key.LessonNum)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.fetch(ctx, key)
	if err != nil {
		return Record{}, err
	}

	for _, task := range tasks {
		if task.Type.HasValue() {
			ans := rec.upsertAnswer(task.ID)
			ans.Status = NextAnswerStatus(ans.Status, StatusAccepted)
		}
	}
	rec.Status = StatusAccepted
	rec.LockedBy = LockNone

	saved, err := s.save(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.notify(s.newEvent(EventLessonAccepted, saved, reviewer, ""))
	return saved, nil
}

// RejectLesson sends the lesson back to the learner with the answers exactly as submitted.
// The review lock is released.
func (s *Service) RejectLesson(ctx context.Context, key Key, reviewer user.User) (Record, error) {
	rec, err := s.fetch(ctx, key)
	if err != nil {
		return Record{}, err
	}
	rec.Status = StatusRejected
	rec.LockedBy = LockNone

	saved, err := s.save(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.notify(s.newEvent(EventLessonRejected, saved, reviewer, ""))
	return saved, nil
}

// Lock marks the lesson as under review: the learner cannot change it until Unlock.
func (s *Service) Lock(ctx context.Context, key Key) (Record, error) {
	return s.setLock(ctx, key, LockReviewer)
}

func (s *Service) Unlock(ctx context.Context, key Key) (Record, error) {
	return s.setLock(ctx, key, LockNone)
}

func (s *Service) setLock(ctx context.Context, key Key, holder LockHolder) (Record, error) {
	rec, err := s.fetch(ctx, key)
	if err != nil {
		return Record{}, err
	}
	if rec.LockedBy == holder {
		return rec, nil
	}
	rec.LockedBy = holder
	return s.save(ctx, rec)
}

// ReviewQueue lists the course instances waiting for a reviewer. Admins see every organization,
// other reviewers only their own.
func (s *Service) ReviewQueue(ctx context.Context, reviewer user.User, orgID string) ([]ReviewQueueItem, error) {
	if !reviewer.IsAdmin() {
		if !reviewer.HasOrg() {
			return nil, ErrNoOrgLinkage
		}
		orgID = reviewer.OrgID
	}

	items, err := s.repo.LessonsToReview(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching lessons to review")
	}
	names := make(map[string]string)
	for i := range items {
		id := items[i].StudentID
		name, ok := names[id]
		if !ok {
			usr, err := s.profiles.GetByID(ctx, id)
			if err != nil && errors.Cause(err) != user.ErrNotFound {
				return nil, errors.Wrap(err, "fetching student profile")
			}
			name = usr.Name
			names[id] = name
		}
		items[i].StudentName = name
	}
	return items, nil
}

// NextToReview returns the first lesson of the course instance waiting for a reviewer.
func (s *Service) NextToReview(ctx context.Context, courseInstanceID, studentID string) (int, bool, error) {
	statuses, err := s.StatusMap(ctx, courseInstanceID, studentID)
	if err != nil {
		return 0, false, err
	}
	n, ok := NextLessonToReview(statuses)
	return n, ok, nil
}

func (s *Service) newEvent(kind EventKind, rec Record, reviewer user.User, taskID string) Event {
	return Event{
		Kind:       kind,
		Key:        rec.Key,
		OrgID:      rec.OrgID,
		CourseNo:   rec.CourseNo,
		TaskID:     taskID,
		Status:     rec.Status,
		ReviewerID: reviewer.ID,
		At:         s.now(),
	}
}

// notify fires the overview refresh without waiting for it.
func (s *Service) notify(ev Event) {
	if s.notifier == nil {
		return
	}
	s.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, ev); err != nil {
			s.logger.Warn(fmt.Sprintf("notifying %s: %v", ev.Kind, err), err)
		}
	})
}
