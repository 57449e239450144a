package lesson

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ExtCrs/extcourses/core/user"
)

type Channel string

const (
	ChannelReviewer Channel = "reviewer"
	ChannelLearner  Channel = "learner"
)

// ChatEntry is a message tagged with the channel it was posted to.
// Clients place it left or right by channel only, whoever is viewing.
type ChatEntry struct {
	Message
	Channel Channel `json:"channel"`
}

// MergeChat interleaves both channels of a task in chronological order.
// Messages sharing a timestamp keep reviewer-side first, then insertion order.
func MergeChat(reviewComments, studentQuestions []Message) []ChatEntry {
	entries := make([]ChatEntry, 0, len(reviewComments)+len(studentQuestions))
	for _, m := range reviewComments {
		entries = append(entries, ChatEntry{Message: m, Channel: ChannelReviewer})
	}
	for _, m := range studentQuestions {
		entries = append(entries, ChatEntry{Message: m, Channel: ChannelLearner})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// ChannelOf returns the channel messages of author go to.
func ChannelOf(author user.User) Channel {
	if author.IsReviewer() {
		return ChannelReviewer
	}
	return ChannelLearner
}

func newMessage(author user.User, text string, now time.Time) Message {
	return Message{
		ID:         uuid.NewString(),
		Text:       text,
		CreatedAt:  now,
		AuthorName: author.Name,
		AuthorRole: author.Role,
	}
}

// appendMessage posts msg to the channel of its author.
func appendMessage(ans *Answer, ch Channel, msg Message) {
	if ch == ChannelReviewer {
		ans.ReviewComments = append(ans.ReviewComments, msg)
	} else {
		ans.StudentQuestions = append(ans.StudentQuestions, msg)
	}
}
