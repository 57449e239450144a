package eventsvc

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
)

const lessonReviewedTemplate = "lesson_reviewed"

type lessonReviewedData struct {
	StudentName string
	LessonNum   int
	CourseNo    string
	Outcome     string
}

// EmailNotifier tells the student that a whole lesson was accepted or rejected.
// Task verdicts are not mailed.
type EmailNotifier struct {
	profiles lesson.ProfileGetter
	mailer   core.EmailService
}

var _ lesson.Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(profiles lesson.ProfileGetter, mailer core.EmailService) *EmailNotifier {
	return &EmailNotifier{profiles: profiles, mailer: mailer}
}

func (n *EmailNotifier) Notify(ctx context.Context, ev lesson.Event) error {
	if !ev.LessonReviewed() {
		return nil
	}
	student, err := n.profiles.GetByID(ctx, ev.StudentID)
	if err != nil {
		return errors.Wrap(err, "fetching student profile")
	}
	if student.Email == "" {
		return nil
	}

	outcome := "accepted"
	if ev.Kind == lesson.EventLessonRejected {
		outcome = "rejected"
	}
	n.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      fmt.Sprintf("Lesson %d %s", ev.LessonNum, outcome),
		TemplateName: lessonReviewedTemplate,
		TemplateData: lessonReviewedData{
			StudentName: student.Name,
			LessonNum:   ev.LessonNum,
			CourseNo:    ev.CourseNo,
			Outcome:     outcome,
		},
	})
	return nil
}
