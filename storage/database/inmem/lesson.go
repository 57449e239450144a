package inmemdb

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core/lesson"
)

type lessonRepository struct {
	db *lessonTable
}

var _ lesson.Repository = (*lessonRepository)(nil)

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db.lesson}
}

// copyRecord detaches a record from the table through a JSON round trip, like a real store would.
func copyRecord(rec lesson.Record) (lesson.Record, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return lesson.Record{}, errors.Wrap(err, "encoding lesson")
	}
	var res lesson.Record
	if err = json.Unmarshal(data, &res); err != nil {
		return lesson.Record{}, errors.Wrap(err, "decoding lesson")
	}
	if res.Answers == nil {
		res.Answers = []lesson.Answer{}
	}
	return res, nil
}

func (repo *lessonRepository) FetchStatusMap(ctx context.Context, courseInstanceID, studentID string) (lesson.StatusMap, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	statuses := make(lesson.StatusMap)
	for _, rec := range repo.db.table {
		if rec.CourseInstanceID == courseInstanceID && rec.StudentID == studentID {
			statuses[rec.LessonNum] = rec.Status
		}
	}
	return statuses, nil
}

func (repo *lessonRepository) FetchLesson(ctx context.Context, key lesson.Key) (lesson.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[key]; ok {
		return copyRecord(*rec)
	}
	return lesson.Record{}, lesson.ErrNotFound
}

func (repo *lessonRepository) FetchLessons(ctx context.Context, courseInstanceID, studentID string) ([]lesson.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]lesson.Record, 0)
	for _, rec := range repo.db.table {
		if rec.CourseInstanceID == courseInstanceID && rec.StudentID == studentID {
			cp, err := copyRecord(*rec)
			if err != nil {
				return nil, err
			}
			records = append(records, cp)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LessonNum < records[j].LessonNum })
	return records, nil
}

func (repo *lessonRepository) SaveLesson(ctx context.Context, rec lesson.Record) (lesson.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	now := time.Now().UTC()
	stored, exists := repo.db.table[rec.Key]
	switch {
	case !exists && rec.Version != 0, exists && stored.Version != rec.Version:
		return lesson.Record{}, lesson.ErrVersionConflict
	case exists:
		rec.ID = stored.ID
		rec.CreatedAt = stored.CreatedAt
	default:
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
		repo.db.order = append(repo.db.order, rec.Key)
	}
	rec.Version++
	rec.UpdatedAt = now

	cp, err := copyRecord(rec)
	if err != nil {
		return lesson.Record{}, err
	}
	repo.db.table[rec.Key] = &cp
	return copyRecord(cp)
}

func (repo *lessonRepository) LessonsToReview(ctx context.Context, orgID string) ([]lesson.ReviewQueueItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	type instance struct{ courseInstanceID, studentID string }
	idx := make(map[instance]int)
	items := make([]lesson.ReviewQueueItem, 0)
	for _, key := range repo.db.order {
		rec := repo.db.table[key]
		if !rec.Status.AwaitsReview() || (orgID != "" && rec.OrgID != orgID) {
			continue
		}
		k := instance{rec.CourseInstanceID, rec.StudentID}
		i, ok := idx[k]
		if !ok {
			items = append(items, lesson.ReviewQueueItem{
				CourseInstanceID: rec.CourseInstanceID,
				StudentID:        rec.StudentID,
				OrgID:            rec.OrgID,
				CourseNo:         rec.CourseNo,
				NextLesson:       rec.LessonNum,
			})
			i = len(items) - 1
			idx[k] = i
		}
		items[i].LessonsToCheck++
		if rec.LessonNum < items[i].NextLesson {
			items[i].NextLesson = rec.LessonNum
		}
	}
	return items, nil
}
