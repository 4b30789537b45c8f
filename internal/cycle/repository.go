package cycle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closetrack/closetrack/internal/platform/db"
	"github.com/closetrack/closetrack/internal/task"
)

// Repository defines persistence operations for close cycles.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetCycle(ctx context.Context, id string) (*CloseCycle, error)
	ListCycles(ctx context.Context) ([]CloseCycle, error)
}

// TxRepository exposes the write operations available inside a transaction.
type TxRepository interface {
	InsertCycle(ctx context.Context, c CloseCycle) error
	InsertChecklist(ctx context.Context, cl Checklist) error
	InsertTask(ctx context.Context, t task.Task, position int) error
	GetCycleForUpdate(ctx context.Context, id string) (*CloseCycle, error)
	UpdateCycleStatus(ctx context.Context, id string, status Status) error
	InsertStatusChange(ctx context.Context, change StatusChange) error
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

func (r *repository) InsertCycle(ctx context.Context, c CloseCycle) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO close_cycles (id, name, start_date, end_date, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, c.ID, c.Name, pgtype.Date{Time: c.StartDate, Valid: true}, pgtype.Date{Time: c.EndDate, Valid: true},
		textOrNull(c.Description), c.Status)
	return err
}

func (r *repository) InsertChecklist(ctx context.Context, cl Checklist) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO checklists (id, name, close_cycle_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`, cl.ID, cl.Name, cl.CloseCycleID)
	return err
}

// InsertTask seeds a checklist task. The position preserves catalog order, so
// reads stay stable even though seeded rows share one transaction timestamp.
func (r *repository) InsertTask(ctx context.Context, t task.Task, position int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tasks (id, title, status, assigned_to_id, created_by_id, checklist_id, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, t.ID, t.Title, t.Status, t.AssignedToID, t.CreatedByID, t.ChecklistID, position)
	return err
}

func (r *repository) GetCycleForUpdate(ctx context.Context, id string) (*CloseCycle, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, start_date, end_date, description, status, created_at, updated_at
		FROM close_cycles WHERE id = $1 FOR UPDATE
	`, id)
	return scanCycle(row)
}

func (r *repository) UpdateCycleStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE close_cycles SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertStatusChange(ctx context.Context, change StatusChange) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cycle_status_changes
			(id, close_cycle_id, from_status, to_status, changed_by_id, changed_by_name, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, change.ID, change.CloseCycleID, change.FromStatus, change.ToStatus,
		change.ChangedByID, change.ChangedByName)
	return err
}

// GetCycle loads a cycle with its checklists and their tasks in insertion order.
func (r *repository) GetCycle(ctx context.Context, id string) (*CloseCycle, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, start_date, end_date, description, status, created_at, updated_at
		FROM close_cycles WHERE id = $1
	`, id)
	c, err := scanCycle(row)
	if err != nil {
		return nil, err
	}

	checklists, err := r.listChecklists(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Checklists = checklists
	return c, nil
}

// ListCycles returns all cycles newest period first, without nested data.
func (r *repository) ListCycles(ctx context.Context) ([]CloseCycle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, start_date, end_date, description, status, created_at, updated_at
		FROM close_cycles
		ORDER BY start_date DESC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []CloseCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *c)
	}
	return cycles, rows.Err()
}

func (r *repository) listChecklists(ctx context.Context, cycleID string) ([]Checklist, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, close_cycle_id, created_at, updated_at
		FROM checklists
		WHERE close_cycle_id = $1
		ORDER BY created_at
	`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checklists []Checklist
	for rows.Next() {
		var cl Checklist
		var createdAt, updatedAt pgtype.Timestamptz
		if err := rows.Scan(&cl.ID, &cl.Name, &cl.CloseCycleID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		cl.CreatedAt = timeOf(createdAt)
		cl.UpdatedAt = timeOf(updatedAt)
		checklists = append(checklists, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range checklists {
		tasks, err := r.listTasks(ctx, checklists[i].ID)
		if err != nil {
			return nil, err
		}
		checklists[i].Tasks = tasks
	}
	return checklists, nil
}

func (r *repository) listTasks(ctx context.Context, checklistID string) ([]task.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, status, assigned_to_id, created_by_id, checklist_id, created_at, updated_at
		FROM tasks
		WHERE checklist_id = $1
		ORDER BY position, created_at
	`, checklistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		var createdAt, updatedAt pgtype.Timestamptz
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.AssignedToID, &t.CreatedByID,
			&t.ChecklistID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = timeOf(createdAt)
		t.UpdatedAt = timeOf(updatedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanCycle(row pgx.Row) (*CloseCycle, error) {
	var c CloseCycle
	var startDate, endDate pgtype.Date
	var description pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Name, &startDate, &endDate, &description, &c.Status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if startDate.Valid {
		c.StartDate = startDate.Time
	}
	if endDate.Valid {
		c.EndDate = endDate.Time
	}
	if description.Valid {
		val := description.String
		c.Description = &val
	}
	c.CreatedAt = timeOf(createdAt)
	c.UpdatedAt = timeOf(updatedAt)
	return &c, nil
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
