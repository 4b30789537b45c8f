package task

import (
	"time"

	"github.com/closetrack/closetrack/internal/users"
)

// UpdateTaskRequest is the PATCH /tasks/{id} payload. IsStatusChange must be
// supplied explicitly by the client; the server never infers it.
type UpdateTaskRequest struct {
	Status         *string `json:"status,omitempty" validate:"omitempty,oneof=NOT_STARTED IN_PROGRESS DONE BLOCKED"`
	Comment        *string `json:"comment,omitempty"`
	IsStatusChange bool    `json:"isStatusChange"`
}

// TaskResponse is the task detail payload with nested activity.
type TaskResponse struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Status        Status                 `json:"status"`
	AssignedToID  string                 `json:"assignedToId"`
	CreatedByID   string                 `json:"createdById"`
	ChecklistID   string                 `json:"checklistId"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
	AssignedTo    *users.Summary         `json:"assignedTo,omitempty"`
	Comments      []CommentResponse      `json:"comments"`
	StatusHistory []StatusChangeResponse `json:"statusHistory"`
}

// CommentResponse is the comment projection with its author summary.
type CommentResponse struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	UserID    string         `json:"userId"`
	TaskID    string         `json:"taskId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	User      *users.Summary `json:"user,omitempty"`
}

// StatusChangeResponse is the audit record projection.
type StatusChangeResponse struct {
	ID            string    `json:"id"`
	TaskID        string    `json:"taskId"`
	FromStatus    Status    `json:"fromStatus"`
	ToStatus      Status    `json:"toStatus"`
	ChangedByID   string    `json:"changedById"`
	ChangedByName string    `json:"changedByName"`
	Comment       *string   `json:"comment,omitempty"`
	ChangedAt     time.Time `json:"changedAt"`
}

// NewTaskResponse maps a domain task to its response payload.
func NewTaskResponse(t *Task) TaskResponse {
	resp := TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Status:        t.Status,
		AssignedToID:  t.AssignedToID,
		CreatedByID:   t.CreatedByID,
		ChecklistID:   t.ChecklistID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		AssignedTo:    t.AssignedTo,
		Comments:      make([]CommentResponse, 0, len(t.Comments)),
		StatusHistory: make([]StatusChangeResponse, 0, len(t.StatusHistory)),
	}
	for _, c := range t.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        c.ID,
			Content:   c.Content,
			UserID:    c.UserID,
			TaskID:    c.TaskID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			User:      c.User,
		})
	}
	for _, sc := range t.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, StatusChangeResponse{
			ID:            sc.ID,
			TaskID:        sc.TaskID,
			FromStatus:    sc.FromStatus,
			ToStatus:      sc.ToStatus,
			ChangedByID:   sc.ChangedByID,
			ChangedByName: sc.ChangedByName,
			Comment:       sc.Comment,
			ChangedAt:     sc.ChangedAt,
		})
	}
	return resp
}
