package task

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closetrack/closetrack/internal/platform/db"
	"github.com/closetrack/closetrack/internal/users"
)

// Repository defines persistence operations for tasks.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetTask(ctx context.Context, id string) (*Task, error)
	GetTaskDetail(ctx context.Context, id string) (*Task, error)
}

// TxRepository exposes the write operations available inside a transaction.
// The task update, its audit or comment row and the re-read all run on the same
// transaction so readers never observe a partial write.
type TxRepository interface {
	GetTaskForUpdate(ctx context.Context, id string) (*Task, error)
	InsertStatusChange(ctx context.Context, change StatusChange) error
	InsertComment(ctx context.Context, comment Comment) error
	UpdateTaskStatus(ctx context.Context, id string, status Status) error
	GetTaskDetail(ctx context.Context, id string) (*Task, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const taskColumns = `id, title, status, assigned_to_id, created_by_id, checklist_id, created_at, updated_at`

func (r *repository) GetTask(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *repository) GetTaskForUpdate(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	return scanTask(row)
}

func (r *repository) InsertStatusChange(ctx context.Context, change StatusChange) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO task_status_changes
			(id, task_id, from_status, to_status, changed_by_id, changed_by_name, comment, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, change.ID, change.TaskID, change.FromStatus, change.ToStatus,
		change.ChangedByID, change.ChangedByName, textOrNull(change.Comment))
	return err
}

func (r *repository) InsertComment(ctx context.Context, comment Comment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO comments (id, content, user_id, task_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, comment.ID, comment.Content, comment.UserID, comment.TaskID)
	return err
}

func (r *repository) UpdateTaskStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTaskDetail loads a task with its assignee summary, comments (newest first)
// and status history (newest first).
func (r *repository) GetTaskDetail(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRow(ctx, `
		SELECT t.id, t.title, t.status, t.assigned_to_id, t.created_by_id,
		       t.checklist_id, t.created_at, t.updated_at,
		       u.id, u.name, u.role
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to_id
		WHERE t.id = $1
	`, id)

	var t Task
	var createdAt, updatedAt pgtype.Timestamptz
	var assignee users.Summary
	var assigneeName pgtype.Text
	err := row.Scan(
		&t.ID, &t.Title, &t.Status, &t.AssignedToID, &t.CreatedByID,
		&t.ChecklistID, &createdAt, &updatedAt,
		&assignee.ID, &assigneeName, &assignee.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if assigneeName.Valid {
		assignee.Name = assigneeName.String
	}
	t.CreatedAt = timeOf(createdAt)
	t.UpdatedAt = timeOf(updatedAt)
	t.AssignedTo = &assignee

	if t.Comments, err = r.listComments(ctx, id); err != nil {
		return nil, err
	}
	if t.StatusHistory, err = r.listStatusChanges(ctx, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) listComments(ctx context.Context, taskID string) ([]Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.content, c.user_id, c.task_id, c.created_at, c.updated_at,
		       u.id, u.name, u.role
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		var createdAt, updatedAt pgtype.Timestamptz
		var author users.Summary
		var authorName pgtype.Text
		if err := rows.Scan(&c.ID, &c.Content, &c.UserID, &c.TaskID, &createdAt, &updatedAt,
			&author.ID, &authorName, &author.Role); err != nil {
			return nil, err
		}
		if authorName.Valid {
			author.Name = authorName.String
		}
		c.CreatedAt = timeOf(createdAt)
		c.UpdatedAt = timeOf(updatedAt)
		c.User = &author
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *repository) listStatusChanges(ctx context.Context, taskID string) ([]StatusChange, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, task_id, from_status, to_status, changed_by_id, changed_by_name, comment, changed_at
		FROM task_status_changes
		WHERE task_id = $1
		ORDER BY changed_at DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []StatusChange{}
	for rows.Next() {
		var sc StatusChange
		var comment pgtype.Text
		var changedAt pgtype.Timestamptz
		if err := rows.Scan(&sc.ID, &sc.TaskID, &sc.FromStatus, &sc.ToStatus,
			&sc.ChangedByID, &sc.ChangedByName, &comment, &changedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			val := comment.String
			sc.Comment = &val
		}
		sc.ChangedAt = timeOf(changedAt)
		changes = append(changes, sc)
	}
	return changes, rows.Err()
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&t.ID, &t.Title, &t.Status, &t.AssignedToID, &t.CreatedByID,
		&t.ChecklistID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.CreatedAt = timeOf(createdAt)
	t.UpdatedAt = timeOf(updatedAt)
	return &t, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func timeOf(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
