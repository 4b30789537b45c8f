// Package activity merges task status history and comments across a close
// cycle into one reverse-chronological timeline.
package activity

import (
	"sort"
	"time"

	"github.com/closetrack/closetrack/internal/task"
)

// Kind tags the two event variants of the feed.
type Kind string

const (
	KindStatusChange Kind = "status_change"
	KindComment      Kind = "comment"
)

// TaskRef identifies the task an event originated from.
type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Event is one feed entry: either a status change or a comment, tagged with
// its originating task. Exactly one of StatusChange/Comment is set.
type Event struct {
	Kind         Kind               `json:"kind"`
	Task         TaskRef            `json:"task"`
	StatusChange *task.StatusChange `json:"statusChange,omitempty"`
	Comment      *task.Comment      `json:"comment,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

// TaskActivity bundles one task's full history for feed assembly.
type TaskActivity struct {
	Task          TaskRef
	StatusHistory []task.StatusChange
	Comments      []task.Comment
}

// BuildFeed flattens every status change and comment across the given tasks
// and orders the combined set newest first. The sort is stable: events with
// equal timestamps keep their collection order, which is per task history
// before comments.
func BuildFeed(tasks []TaskActivity) []Event {
	var events []Event
	for _, ta := range tasks {
		for i := range ta.StatusHistory {
			sc := ta.StatusHistory[i]
			events = append(events, Event{
				Kind:         KindStatusChange,
				Task:         ta.Task,
				StatusChange: &sc,
				Timestamp:    sc.ChangedAt,
			})
		}
		for i := range ta.Comments {
			c := ta.Comments[i]
			events = append(events, Event{
				Kind:      KindComment,
				Task:      ta.Task,
				Comment:   &c,
				Timestamp: c.CreatedAt,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events
}
