package lesson

import (
	"math"
	"sort"
)

// DetectCurrentLesson returns the first lesson not started yet or rejected.
// When every lesson is under way the last one is returned.
func DetectCurrentLesson(statuses StatusMap, total int) int {
	for n := 1; n <= total; n++ {
		st := statuses[n]
		if st == StatusUnset || st == StatusRejected {
			return n
		}
	}
	return total
}

// NextLessonToReview returns the lowest lesson number awaiting review.
func NextLessonToReview(statuses StatusMap) (int, bool) {
	nums := make([]int, 0, len(statuses))
	for n, st := range statuses {
		if st.AwaitsReview() {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return 0, false
	}
	sort.Ints(nums)
	return nums[0], true
}

// Progress summarizes a student's course instance.
type Progress struct {
	TotalLessons    int `json:"total_lessons"`
	Completed       int `json:"completed"`   // done or accepted
	InProgress      int `json:"in_progress"` // started, rejected or corrected
	Pending         int `json:"pending"`     // no record or no status yet
	CompletionRate  int `json:"completion_rate"`
	CompletedTasks  int `json:"completed_tasks"`
	CurrentLesson   int `json:"current_lesson"`
	LessonsToReview int `json:"lessons_to_review"`
}

// ComputeProgress derives the progress of a course of totalLessons lessons from its records.
// Lessons without a record count as pending.
func ComputeProgress(records []Record, totalLessons int) Progress {
	statuses := make(StatusMap, len(records))
	p := Progress{TotalLessons: totalLessons}
	for _, rec := range records {
		statuses[rec.LessonNum] = rec.Status
		switch rec.Status {
		case StatusDone, StatusAccepted:
			p.Completed++
		case StatusInProgress, StatusRejected, StatusCorrected:
			p.InProgress++
		}
		if rec.Status.AwaitsReview() {
			p.LessonsToReview++
		}
		for _, a := range rec.Answers {
			if a.Status == StatusDone || a.Status == StatusAccepted {
				p.CompletedTasks++
			}
		}
	}
	if pending := totalLessons - p.Completed - p.InProgress; pending > 0 {
		p.Pending = pending
	}
	if totalLessons > 0 {
		p.CompletionRate = int(math.Round(float64(p.Completed) * 100 / float64(totalLessons)))
	}
	p.CurrentLesson = DetectCurrentLesson(statuses, totalLessons)
	return p
}
