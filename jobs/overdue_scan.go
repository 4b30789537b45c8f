package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type emailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// OverdueScanJob finds active close cycles past their end date that still
// carry unfinished tasks and notifies the assignees.
type OverdueScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	Mailer emailEnqueuer
	clock  func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, logger *slog.Logger, mailer emailEnqueuer) *OverdueScanJob {
	return &OverdueScanJob{
		Pool:   pool,
		Logger: logger,
		Mailer: mailer,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type overdueReminder struct {
	CycleID   string
	CycleName string
	EndDate   time.Time
	Email     string
	UserName  string
	OpenTasks int
}

// Handle executes the overdue scan logic.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.GraceDays < 0 {
		payload.GraceDays = 0
	}

	start := j.now()
	cutoff := start.AddDate(0, 0, -payload.GraceDays)
	logger := j.logger().With(slog.Int("grace_days", payload.GraceDays))
	logger.Info("starting overdue scan")

	reminders, err := j.scan(ctx, cutoff)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	sent := 0
	for _, rem := range reminders {
		if j.Mailer == nil {
			break
		}
		body := fmt.Sprintf(
			"Hi %s,\n\nThe close cycle %q ended on %s and still has %d of your tasks unfinished. Please update them.\n",
			rem.UserName, rem.CycleName, rem.EndDate.Format("2006-01-02"), rem.OpenTasks,
		)
		_, err := j.Mailer.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      rem.Email,
			Subject: fmt.Sprintf("Overdue close cycle: %s", rem.CycleName),
			Body:    body,
		})
		if err != nil {
			logger.Warn("enqueue reminder failed",
				slog.String("cycle_id", rem.CycleID),
				slog.String("to", rem.Email),
				slog.Any("error", err),
			)
			continue
		}
		sent++
	}

	logger.Info("completed overdue scan",
		slog.Int("reminders", len(reminders)),
		slog.Int("sent", sent),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverdueScanJob) scan(ctx context.Context, cutoff time.Time) ([]overdueReminder, error) {
	if j.Pool == nil {
		return nil, errors.New("overdue scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT c.id, c.name, c.end_date, u.email, u.name, COUNT(t.id)
		FROM close_cycles c
		JOIN checklists cl ON cl.close_cycle_id = c.id
		JOIN tasks t ON t.checklist_id = cl.id
		JOIN users u ON u.id = t.assigned_to_id
		WHERE c.status = 'ACTIVE'
		  AND c.end_date < $1
		  AND t.status <> 'DONE'
		GROUP BY c.id, c.name, c.end_date, u.email, u.name
		ORDER BY c.end_date, u.email`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []overdueReminder
	for rows.Next() {
		var rem overdueReminder
		if err := rows.Scan(&rem.CycleID, &rem.CycleName, &rem.EndDate, &rem.Email, &rem.UserName, &rem.OpenTasks); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeOverdueScan))
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
