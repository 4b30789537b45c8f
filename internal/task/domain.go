package task

import (
	"errors"
	"time"

	"github.com/closetrack/closetrack/internal/users"
)

// Status enumerates task progress states. The set is closed; anything outside
// it is rejected at the boundary.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusBlocked    Status = "BLOCKED"
)

// Valid reports whether the status is one of the recognized values.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

// Task is a unit of close work belonging to exactly one checklist.
type Task struct {
	ID           string
	Title        string
	Status       Status
	AssignedToID string
	CreatedByID  string
	ChecklistID  string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated on detail reads.
	Comments      []Comment
	StatusHistory []StatusChange
	AssignedTo    *users.Summary
}

// Comment is an append-only free-text note on a task.
type Comment struct {
	ID        string
	Content   string
	UserID    string
	TaskID    string
	CreatedAt time.Time
	UpdatedAt time.Time
	User      *users.Summary
}

// StatusChange is one append-only audit record of a status transition.
// ChangedByName is a snapshot of the actor's name at transition time and does
// not follow later renames.
type StatusChange struct {
	ID            string
	TaskID        string
	FromStatus    Status
	ToStatus      Status
	ChangedByID   string
	ChangedByName string
	Comment       *string
	ChangedAt     time.Time
}

// UpdateInput carries one client-initiated task update. IsStatusChange is an
// explicit flag: it decides whether the call appends an audit record or a plain
// comment, never inferred from which fields are set.
type UpdateInput struct {
	Status         *Status
	Comment        *string
	IsStatusChange bool
}

var (
	// ErrNotFound indicates the referenced task does not exist.
	ErrNotFound = errors.New("task: not found")
	// ErrUnauthorized indicates the caller has no authenticated actor.
	ErrUnauthorized = errors.New("task: unauthorized")
	// ErrEmptyUpdate indicates neither status nor comment was supplied.
	ErrEmptyUpdate = errors.New("task: status or comment required")
	// ErrInvalidStatus indicates an unrecognized status value.
	ErrInvalidStatus = errors.New("task: invalid status")
	// ErrStatusRequired indicates a status-change update without a status.
	ErrStatusRequired = errors.New("task: status required for status change")
)
