package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
)

type lessonRow struct {
	ID          string      `db:"id"`
	CourseRefID string      `db:"course_ref_id"`
	ProfileID   string      `db:"profile_id"`
	OrgID       null.String `db:"org_id"`
	CourseNo    string      `db:"course_no"`
	LessonID    int         `db:"lesson_id"`
	Status      null.String `db:"status"`
	LockedBy    null.String `db:"locked_by"`
	Answers     string      `db:"answers"`
	Version     int         `db:"version"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

const lessonColumns = `id, course_ref_id, profile_id, org_id, course_no, lesson_id, status, locked_by, answers, version, created_at, updated_at`

func newLessonRow(rec lesson.Record) (lessonRow, error) {
	answers := rec.Answers
	if answers == nil {
		answers = []lesson.Answer{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return lessonRow{}, errors.Wrap(err, "encoding answers")
	}
	return lessonRow{
		ID:          rec.ID,
		CourseRefID: rec.CourseInstanceID,
		ProfileID:   rec.StudentID,
		OrgID:       null.NewString(rec.OrgID, rec.OrgID != ""),
		CourseNo:    rec.CourseNo,
		LessonID:    rec.LessonNum,
		Status:      null.NewString(string(rec.Status), rec.Status != lesson.StatusUnset),
		LockedBy:    null.NewString(string(rec.LockedBy), rec.LockedBy != lesson.LockNone),
		Answers:     string(data),
		Version:     rec.Version,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func (row lessonRow) record() (lesson.Record, error) {
	answers := make([]lesson.Answer, 0)
	if row.Answers != "" {
		if err := json.Unmarshal([]byte(row.Answers), &answers); err != nil {
			return lesson.Record{}, errors.Wrapf(err, "decoding answers of lesson %s", row.ID)
		}
	}
	return lesson.Record{
		ID: row.ID,
		Key: lesson.Key{
			CourseInstanceID: row.CourseRefID,
			StudentID:        row.ProfileID,
			LessonNum:        row.LessonID,
		},
		OrgID:     row.OrgID.String,
		CourseNo:  row.CourseNo,
		Status:    lesson.Status(row.Status.String),
		LockedBy:  lesson.LockHolder(row.LockedBy.String),
		Answers:   answers,
		Version:   row.Version,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

type lessonRepository struct {
	exec core.DBExecutor
}

var _ lesson.Repository = (*lessonRepository)(nil)

func NewLessonRepository(exec core.DBExecutor) lesson.Repository {
	return &lessonRepository{exec: exec}
}

func (repo *lessonRepository) FetchStatusMap(ctx context.Context, courseInstanceID, studentID string) (lesson.StatusMap, error) {
	var rows []struct {
		LessonID int         `db:"lesson_id"`
		Status   null.String `db:"status"`
	}
	q := repo.exec.Rebind(`SELECT lesson_id, status FROM lessons WHERE course_ref_id = ? AND profile_id = ?`)
	if err := repo.exec.SelectContext(ctx, &rows, q, courseInstanceID, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting lesson statuses")
	}

	statuses := make(lesson.StatusMap, len(rows))
	for _, r := range rows {
		statuses[r.LessonID] = lesson.Status(r.Status.String)
	}
	return statuses, nil
}

func (repo *lessonRepository) FetchLesson(ctx context.Context, key lesson.Key) (lesson.Record, error) {
	var row lessonRow
	q := repo.exec.Rebind(`SELECT ` + lessonColumns + ` FROM lessons WHERE course_ref_id = ? AND profile_id = ? AND lesson_id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, key.CourseInstanceID, key.StudentID, key.LessonNum); err != nil {
		return lesson.Record{}, trapNoRowsErr(err, lesson.ErrNotFound)
	}
	return row.record()
}

func (repo *lessonRepository) FetchLessons(ctx context.Context, courseInstanceID, studentID string) ([]lesson.Record, error) {
	var rows []lessonRow
	q := repo.exec.Rebind(`SELECT ` + lessonColumns + ` FROM lessons WHERE course_ref_id = ? AND profile_id = ? ORDER BY lesson_id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, courseInstanceID, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}

	records := make([]lesson.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SaveLesson inserts the record when its version is 0, otherwise updates it if nobody else did meanwhile.
// The write and the re-read share a transaction so the returned record is the version written here.
func (repo *lessonRepository) SaveLesson(ctx context.Context, rec lesson.Record) (lesson.Record, error) {
	db, ok := repo.exec.(txBeginner)
	if !ok {
		return saveLesson(ctx, repo.exec, rec)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return lesson.Record{}, errors.Wrap(err, "beginning transaction")
	}
	saved, err := saveLesson(ctx, tx, rec)
	if err != nil {
		_ = tx.Rollback()
		return lesson.Record{}, err
	}
	if err = tx.Commit(); err != nil {
		return lesson.Record{}, errors.Wrap(err, "committing lesson")
	}
	return saved, nil
}

func saveLesson(ctx context.Context, exec core.DBExecutor, rec lesson.Record) (lesson.Record, error) {
	row, err := newLessonRow(rec)
	if err != nil {
		return lesson.Record{}, err
	}
	row.UpdatedAt = time.Now().UTC()

	var res sql.Result
	if rec.Version == 0 {
		row.ID = uuid.NewString()
		row.CreatedAt = row.UpdatedAt
		row.Version = 1
		res, err = exec.NamedExecContext(ctx, `
			INSERT INTO lessons (`+lessonColumns+`)
			VALUES (:id, :course_ref_id, :profile_id, :org_id, :course_no, :lesson_id, :status, :locked_by, :answers, :version, :created_at, :updated_at)
			ON CONFLICT (course_ref_id, profile_id, lesson_id) DO NOTHING`,
			row,
		)
	} else {
		res, err = exec.NamedExecContext(ctx, `
			UPDATE lessons
			SET org_id = :org_id, course_no = :course_no, status = :status, locked_by = :locked_by,
				answers = :answers, version = version + 1, updated_at = :updated_at
			WHERE course_ref_id = :course_ref_id AND profile_id = :profile_id AND lesson_id = :lesson_id
				AND version = :version`,
			row,
		)
	}
	if err != nil {
		return lesson.Record{}, errors.Wrap(err, "saving lesson")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return lesson.Record{}, errors.Wrap(err, "saving lesson")
	}
	if n == 0 {
		return lesson.Record{}, lesson.ErrVersionConflict
	}
	return (&lessonRepository{exec: exec}).FetchLesson(ctx, rec.Key)
}

func (repo *lessonRepository) LessonsToReview(ctx context.Context, orgID string) ([]lesson.ReviewQueueItem, error) {
	q := `
		SELECT course_ref_id, profile_id, COALESCE(org_id, '') AS org_id, course_no,
			COUNT(*) AS lessons_to_check, MIN(lesson_id) AS next_lesson
		FROM lessons
		WHERE status IN ('done', 'corrected')`
	args := make([]interface{}, 0, 1)
	if orgID != "" {
		q += ` AND org_id = ?`
		args = append(args, orgID)
	}
	q += `
		GROUP BY course_ref_id, profile_id, org_id, course_no
		ORDER BY MIN(updated_at), course_ref_id, profile_id`

	items := make([]lesson.ReviewQueueItem, 0)
	if err := repo.exec.SelectContext(ctx, &items, repo.exec.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting lessons to review")
	}
	return items, nil
}
