package activity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closetrack/closetrack/internal/task"
	"github.com/closetrack/closetrack/internal/users"
)

// ErrCycleNotFound indicates the referenced cycle does not exist.
var ErrCycleNotFound = errors.New("activity: close cycle not found")

// Repository loads the raw activity data of a close cycle.
type Repository interface {
	ListCycleActivity(ctx context.Context, cycleID string) ([]TaskActivity, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ListCycleActivity returns every task of the cycle with its status history
// and comments, both newest first, tasks in checklist order.
func (r *repository) ListCycleActivity(ctx context.Context, cycleID string) ([]TaskActivity, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM close_cycles WHERE id = $1)`, cycleID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCycleNotFound
	}

	tasks, order, err := r.listTasks(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if err := r.attachStatusHistory(ctx, cycleID, tasks); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, cycleID, tasks); err != nil {
		return nil, err
	}

	result := make([]TaskActivity, 0, len(order))
	for _, id := range order {
		result = append(result, *tasks[id])
	}
	return result, nil
}

func (r *repository) listTasks(ctx context.Context, cycleID string) (map[string]*TaskActivity, []string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.title
		FROM tasks t
		JOIN checklists cl ON cl.id = t.checklist_id
		WHERE cl.close_cycle_id = $1
		ORDER BY cl.created_at, t.position, t.created_at
	`, cycleID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	tasks := make(map[string]*TaskActivity)
	var order []string
	for rows.Next() {
		var ref TaskRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, nil, err
		}
		tasks[ref.ID] = &TaskActivity{Task: ref}
		order = append(order, ref.ID)
	}
	return tasks, order, rows.Err()
}

func (r *repository) attachStatusHistory(ctx context.Context, cycleID string, tasks map[string]*TaskActivity) error {
	rows, err := r.pool.Query(ctx, `
		SELECT sc.id, sc.task_id, sc.from_status, sc.to_status,
		       sc.changed_by_id, sc.changed_by_name, sc.comment, sc.changed_at
		FROM task_status_changes sc
		JOIN tasks t ON t.id = sc.task_id
		JOIN checklists cl ON cl.id = t.checklist_id
		WHERE cl.close_cycle_id = $1
		ORDER BY sc.changed_at DESC
	`, cycleID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sc task.StatusChange
		var comment pgtype.Text
		var changedAt pgtype.Timestamptz
		if err := rows.Scan(&sc.ID, &sc.TaskID, &sc.FromStatus, &sc.ToStatus,
			&sc.ChangedByID, &sc.ChangedByName, &comment, &changedAt); err != nil {
			return err
		}
		if comment.Valid {
			val := comment.String
			sc.Comment = &val
		}
		sc.ChangedAt = timeOf(changedAt)
		if ta, ok := tasks[sc.TaskID]; ok {
			ta.StatusHistory = append(ta.StatusHistory, sc)
		}
	}
	return rows.Err()
}

func (r *repository) attachComments(ctx context.Context, cycleID string, tasks map[string]*TaskActivity) error {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.content, c.user_id, c.task_id, c.created_at, c.updated_at,
		       u.id, u.name, u.role
		FROM comments c
		JOIN users u ON u.id = c.user_id
		JOIN tasks t ON t.id = c.task_id
		JOIN checklists cl ON cl.id = t.checklist_id
		WHERE cl.close_cycle_id = $1
		ORDER BY c.created_at DESC
	`, cycleID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c task.Comment
		var createdAt, updatedAt pgtype.Timestamptz
		var author users.Summary
		var authorName pgtype.Text
		if err := rows.Scan(&c.ID, &c.Content, &c.UserID, &c.TaskID, &createdAt, &updatedAt,
			&author.ID, &authorName, &author.Role); err != nil {
			return err
		}
		if authorName.Valid {
			author.Name = authorName.String
		}
		c.CreatedAt = timeOf(createdAt)
		c.UpdatedAt = timeOf(updatedAt)
		c.User = &author
		if ta, ok := tasks[c.TaskID]; ok {
			ta.Comments = append(ta.Comments, c)
		}
	}
	return rows.Err()
}

func timeOf(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
