package cycle

import (
	"fmt"
	"time"

	"github.com/closetrack/closetrack/internal/task"
)

// dateLayout is the calendar date format accepted on cycle payloads.
const dateLayout = "2006-01-02"

// CreateCloseCycleRequest is the POST /close-cycles payload.
type CreateCloseCycleRequest struct {
	Name            string            `json:"name" validate:"required"`
	StartDate       string            `json:"startDate" validate:"required"`
	EndDate         string            `json:"endDate" validate:"required"`
	Description     *string           `json:"description,omitempty"`
	Status          string            `json:"status" validate:"required,oneof=ACTIVE COMPLETED ARCHIVED"`
	TaskAssignments map[string]string `json:"taskAssignments,omitempty"`
}

// ToInput parses the request into a domain input, rejecting malformed dates.
func (r CreateCloseCycleRequest) ToInput() (CreateInput, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return CreateInput{}, fmt.Errorf("%w: startDate must be a valid date", ErrInvalid)
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return CreateInput{}, fmt.Errorf("%w: endDate must be a valid date", ErrInvalid)
	}
	return CreateInput{
		Name:            r.Name,
		StartDate:       start,
		EndDate:         end,
		Description:     r.Description,
		Status:          Status(r.Status),
		TaskAssignments: r.TaskAssignments,
	}, nil
}

// UpdateStatusRequest is the PATCH /close-cycles/{id} payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE COMPLETED ARCHIVED"`
}

// CloseCycleResponse is the cycle payload with nested checklists.
type CloseCycleResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	StartDate   string              `json:"startDate"`
	EndDate     string              `json:"endDate"`
	Description *string             `json:"description,omitempty"`
	Status      Status              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Checklists  []ChecklistResponse `json:"checklists"`
}

// ChecklistResponse is the checklist projection with its tasks.
type ChecklistResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	CloseCycleID string             `json:"closeCycleId"`
	Tasks        []TaskSummaryEntry `json:"tasks"`
}

// TaskSummaryEntry is the slim task projection nested under checklists.
type TaskSummaryEntry struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Status       task.Status `json:"status"`
	AssignedToID string      `json:"assignedToId"`
	CreatedByID  string      `json:"createdById"`
	ChecklistID  string      `json:"checklistId"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewCloseCycleResponse maps a domain cycle to its response payload.
func NewCloseCycleResponse(c *CloseCycle) CloseCycleResponse {
	resp := CloseCycleResponse{
		ID:          c.ID,
		Name:        c.Name,
		StartDate:   c.StartDate.Format(dateLayout),
		EndDate:     c.EndDate.Format(dateLayout),
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Checklists:  make([]ChecklistResponse, 0, len(c.Checklists)),
	}
	for _, cl := range c.Checklists {
		entry := ChecklistResponse{
			ID:           cl.ID,
			Name:         cl.Name,
			CloseCycleID: cl.CloseCycleID,
			Tasks:        make([]TaskSummaryEntry, 0, len(cl.Tasks)),
		}
		for _, t := range cl.Tasks {
			entry.Tasks = append(entry.Tasks, TaskSummaryEntry{
				ID:           t.ID,
				Title:        t.Title,
				Status:       t.Status,
				AssignedToID: t.AssignedToID,
				CreatedByID:  t.CreatedByID,
				ChecklistID:  t.ChecklistID,
				CreatedAt:    t.CreatedAt,
				UpdatedAt:    t.UpdatedAt,
			})
		}
		resp.Checklists = append(resp.Checklists, entry)
	}
	return resp
}
