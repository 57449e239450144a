package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type TaskType string

const (
	TaskWrite TaskType = "write" // rich text answer
	TaskRead  TaskType = "read"  // acknowledgment only
	TaskPic   TaskType = "pic"   // freehand drawing
)

// HasValue reports whether answers to tasks of this type carry a value the learner produces.
func (t TaskType) HasValue() bool {
	return t == TaskWrite || t == TaskPic
}

// Task is a task definition as published in the course catalog.
type Task struct {
	ID        string   `json:"id"`
	LessonNum int      `json:"lesson_id"`
	Type      TaskType `json:"type"`
	Prompt    string   `json:"question"`
	Num       int      `json:"num"`
}

// UnmarshalJSON accepts both numeric and string task ids.
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.alias)

	id := bytes.TrimSpace(raw.ID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
		t.ID = ""
	case id[0] == '"':
		if err := json.Unmarshal(id, &t.ID); err != nil {
			return errors.Wrap(err, "task id")
		}
	default:
		var n json.Number
		if err := json.Unmarshal(id, &n); err != nil {
			return errors.Wrap(err, "task id")
		}
		t.ID = n.String()
	}
	return nil
}

// ForLesson returns the tasks of lesson n, keeping catalog order.
func ForLesson(tasks []Task, n int) []Task {
	res := make([]Task, 0)
	for _, t := range tasks {
		if t.LessonNum == n {
			res = append(res, t)
		}
	}
	return res
}

// Find returns the task with the given id.
func Find(tasks []Task, id string) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// LessonCount returns the highest lesson number referenced by tasks.
func LessonCount(tasks []Task) int {
	var max int
	for _, t := range tasks {
		if t.LessonNum > max {
			max = t.LessonNum
		}
	}
	return max
}
