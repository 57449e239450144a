package lesson

import "github.com/ExtCrs/extcourses/core/catalog"

// NextAnswerStatus computes the status of an answer after it is saved.
// A forced status always wins. Otherwise a rejected answer becomes corrected,
// corrected and accepted answers keep their status and anything else becomes done.
func NextAnswerStatus(current Status, forced ...Status) Status {
	if len(forced) > 0 && forced[0] != StatusUnset {
		return forced[0]
	}
	switch current {
	case StatusRejected, StatusCorrected:
		return StatusCorrected
	case StatusAccepted:
		return StatusAccepted
	default:
		return StatusDone
	}
}

func answerStatus(answers []Answer, taskID string) (Status, bool) {
	for _, a := range answers {
		if a.TaskID == taskID {
			return a.Status, true
		}
	}
	return StatusUnset, false
}

// CanSubmitLesson reports whether every task of the lesson is ready for review:
// write and pic tasks need a done, corrected or accepted answer, read tasks need a done one.
func CanSubmitLesson(tasks []catalog.Task, answers []Answer) bool {
	for _, task := range tasks {
		st, ok := answerStatus(answers, task.ID)
		if !ok {
			return false
		}
		switch task.Type {
		case catalog.TaskWrite, catalog.TaskPic:
			if !(st == StatusDone || st == StatusCorrected || st == StatusAccepted) {
				return false
			}
		case catalog.TaskRead:
			if st != StatusDone {
				return false
			}
		}
	}
	return true
}

// CanSubmitCorrectedLesson is the readiness check of a rejected lesson: at least one task and
// every answer done, corrected or accepted, whatever the task type.
func CanSubmitCorrectedLesson(tasks []catalog.Task, answers []Answer) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		st, _ := answerStatus(answers, task.ID)
		if !(st == StatusDone || st == StatusCorrected || st == StatusAccepted) {
			return false
		}
	}
	return true
}

// canSubmit picks the readiness check matching the current lesson status.
func canSubmit(current Status, tasks []catalog.Task, answers []Answer) bool {
	if len(tasks) == 0 {
		return false
	}
	if current == StatusRejected {
		return CanSubmitCorrectedLesson(tasks, answers)
	}
	return CanSubmitLesson(tasks, answers)
}

// defaultAnswersToDone marks existing write and pic answers without a status as done.
// Missing answers are not created: they must still block the submit.
func defaultAnswersToDone(tasks []catalog.Task, rec *Record) {
	for _, task := range tasks {
		if !task.Type.HasValue() {
			continue
		}
		if i := rec.answerIndex(task.ID); i >= 0 && rec.Answers[i].Status == StatusUnset {
			rec.Answers[i].Status = StatusDone
		}
	}
}
