package task

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/closetrack/closetrack/internal/shared"
)

// Service applies status transitions and comments to tasks.
type Service struct {
	repo Repository
}

// NewService constructs a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a task with comments, status history and assignee summary.
func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.repo.GetTaskDetail(ctx, id)
}

// Update applies one client-initiated task update as a single atomic unit.
// Exactly one row is appended per call: a status-change audit record when
// in.IsStatusChange is set, otherwise a comment. The returned task carries
// comments and history newest first.
func (s *Service) Update(ctx context.Context, taskID string, in UpdateInput, actor *shared.Actor) (*Task, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	comment := normalizeComment(in.Comment)
	if in.Status == nil && comment == nil {
		return nil, ErrEmptyUpdate
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if in.IsStatusChange && in.Status == nil {
		return nil, ErrStatusRequired
	}

	var updated *Task
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetTaskForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		switch {
		case in.IsStatusChange:
			// FromStatus is read under the same lock, so the audit trail has
			// no gaps even under concurrent updates.
			err = tx.InsertStatusChange(ctx, StatusChange{
				ID:            uuid.NewString(),
				TaskID:        current.ID,
				FromStatus:    current.Status,
				ToStatus:      *in.Status,
				ChangedByID:   actor.ID,
				ChangedByName: actorName(actor),
				Comment:       comment,
			})
		case comment != nil:
			err = tx.InsertComment(ctx, Comment{
				ID:      uuid.NewString(),
				Content: *comment,
				UserID:  actor.ID,
				TaskID:  current.ID,
			})
		}
		if err != nil {
			return err
		}

		if in.Status != nil {
			if err := tx.UpdateTaskStatus(ctx, current.ID, *in.Status); err != nil {
				return err
			}
		}

		updated, err = tx.GetTaskDetail(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func normalizeComment(c *string) *string {
	if c == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*c)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func actorName(actor *shared.Actor) string {
	if actor.Name == "" {
		return "Unknown User"
	}
	return actor.Name
}
