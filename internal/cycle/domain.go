package cycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/closetrack/closetrack/internal/task"
)

// Status enumerates close cycle lifecycle stages.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
)

// Valid reports whether the status is one of the recognized values.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// CloseCycle is a named accounting period whose closing tasks are tracked.
// Cycles are never hard-deleted.
type CloseCycle struct {
	ID          string
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	Description *string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Checklists []Checklist
}

// Checklist is a named group of tasks belonging to exactly one close cycle.
type Checklist struct {
	ID           string
	Name         string
	CloseCycleID string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Tasks []task.Task
}

// StatusChange is an append-only audit record of a cycle status transition.
// Cycle transitions are audited the same way task transitions are.
type StatusChange struct {
	ID            string
	CloseCycleID  string
	FromStatus    Status
	ToStatus      Status
	ChangedByID   string
	ChangedByName string
	ChangedAt     time.Time
}

// CreateInput captures validation rules for new close cycles.
// TaskAssignments maps catalog task titles to assignee user ids; entries
// missing from the map default to the creating actor.
type CreateInput struct {
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	Description     *string
	Status          Status
	TaskAssignments map[string]string
}

// Validate ensures the create input is coherent. It runs before any write.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalid)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end date required", ErrInvalid)
	}
	if in.StartDate.After(in.EndDate) {
		return fmt.Errorf("%w: start date cannot be after end date", ErrInvalid)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unrecognized status", ErrInvalid)
	}
	return nil
}

var (
	// ErrNotFound indicates the referenced cycle does not exist.
	ErrNotFound = errors.New("cycle: not found")
	// ErrUnauthorized indicates the caller has no authenticated actor.
	ErrUnauthorized = errors.New("cycle: unauthorized")
	// ErrInvalid indicates missing or malformed input fields.
	ErrInvalid = errors.New("cycle: invalid input")
	// ErrInvalidStatus indicates an unrecognized status value.
	ErrInvalidStatus = errors.New("cycle: invalid status")
	// ErrUnknownCatalogTitle indicates a task assignment referencing no catalog entry.
	ErrUnknownCatalogTitle = errors.New("cycle: assignment references unknown catalog title")
)
