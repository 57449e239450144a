package lesson

// CanLearnerEdit reports whether the learner may change the lesson.
// A reviewer lock always wins over the status.
func CanLearnerEdit(rec Record) bool {
	if rec.LockedBy == LockReviewer {
		return false
	}
	switch rec.Status {
	case StatusUnset, StatusInProgress, StatusCorrected, StatusRejected:
		return true
	default:
		return false
	}
}
