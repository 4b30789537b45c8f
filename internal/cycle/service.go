package cycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/closetrack/closetrack/internal/catalog"
	"github.com/closetrack/closetrack/internal/shared"
	"github.com/closetrack/closetrack/internal/task"
)

// checklistName is the label given to the seeded checklist of a new cycle.
const checklistName = "Close Checklist"

// Service orchestrates close cycle lifecycle and checklist seeding.
type Service struct {
	repo    Repository
	catalog *catalog.Catalog
}

// NewService constructs a Service instance.
func NewService(repo Repository, cat *catalog.Catalog) *Service {
	return &Service{repo: repo, catalog: cat}
}

// List returns all close cycles, newest period first.
func (s *Service) List(ctx context.Context) ([]CloseCycle, error) {
	return s.repo.ListCycles(ctx)
}

// Get returns a cycle with its checklists and tasks.
func (s *Service) Get(ctx context.Context, id string) (*CloseCycle, error) {
	return s.repo.GetCycle(ctx, id)
}

// Create inserts a new close cycle. When task assignments are supplied the
// cycle, one checklist and one task per catalog entry are created in a single
// transaction; a failed seed leaves nothing behind.
func (s *Service) Create(ctx context.Context, in CreateInput, actor *shared.Actor) (*CloseCycle, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateAssignments(in.TaskAssignments); err != nil {
		return nil, err
	}

	cycleID := uuid.NewString()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertCycle(ctx, CloseCycle{
			ID:          cycleID,
			Name:        in.Name,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			Description: in.Description,
			Status:      in.Status,
		}); err != nil {
			return err
		}

		if len(in.TaskAssignments) == 0 {
			return nil
		}

		checklist := Checklist{
			ID:           uuid.NewString(),
			Name:         checklistName,
			CloseCycleID: cycleID,
		}
		if err := tx.InsertChecklist(ctx, checklist); err != nil {
			return err
		}
		for i, entry := range s.catalog.Entries() {
			assignee := in.TaskAssignments[entry.Title]
			if assignee == "" {
				assignee = actor.ID
			}
			if err := tx.InsertTask(ctx, task.Task{
				ID:           uuid.NewString(),
				Title:        entry.Title,
				Status:       task.StatusNotStarted,
				AssignedToID: assignee,
				CreatedByID:  actor.ID,
				ChecklistID:  checklist.ID,
			}, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetCycle(ctx, cycleID)
}

// UpdateStatus transitions the cycle status. Unknown values are rejected before
// any write; accepted transitions append an audit record in the same
// transaction as the update.
func (s *Service) UpdateStatus(ctx context.Context, cycleID string, status Status, actor *shared.Actor) (*CloseCycle, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetCycleForUpdate(ctx, cycleID)
		if err != nil {
			return err
		}
		if err := tx.InsertStatusChange(ctx, StatusChange{
			ID:            uuid.NewString(),
			CloseCycleID:  current.ID,
			FromStatus:    current.Status,
			ToStatus:      status,
			ChangedByID:   actor.ID,
			ChangedByName: actorName(actor),
		}); err != nil {
			return err
		}
		return tx.UpdateCycleStatus(ctx, current.ID, status)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetCycle(ctx, cycleID)
}

func (s *Service) validateAssignments(assignments map[string]string) error {
	if len(assignments) == 0 {
		return nil
	}
	known := make(map[string]bool, s.catalog.Size())
	for _, entry := range s.catalog.Entries() {
		known[entry.Title] = true
	}
	for title := range assignments {
		if !known[title] {
			return fmt.Errorf("%w: %q", ErrUnknownCatalogTitle, title)
		}
	}
	return nil
}

func actorName(actor *shared.Actor) string {
	if actor.Name == "" {
		return "Unknown User"
	}
	return actor.Name
}
