package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueAudit is the dedicated queue for activity log writes.
	QueueAudit = "audit"
	// TaskTypeRecord is the task type for persisting an activity log entry.
	TaskTypeRecord = "audit:record"
)

// Enqueuer abstracts the asynq client used by the recorder.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Recorder appends activity log entries without ever failing the caller.
// Entries go through the background queue; when the queue is unreachable the
// recorder falls back to a synchronous insert, and a failure there is only
// logged so the triggering business operation still succeeds.
type Recorder struct {
	enqueuer Enqueuer
	repo     Repository
	logger   *slog.Logger
}

// NewRecorder constructs a Recorder. enqueuer may be nil, in which case every
// entry is written synchronously.
func NewRecorder(enqueuer Enqueuer, repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{enqueuer: enqueuer, repo: repo, logger: logger}
}

// Record appends one entry. Fire-and-forget: the returned state of the
// underlying write is surfaced to the operator via logs, never to the caller.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	if r.enqueuer != nil {
		task, err := NewRecordTask(e)
		if err == nil {
			if _, err = r.enqueuer.EnqueueContext(ctx, task, asynq.Queue(QueueAudit), asynq.TaskID(uuid.NewString())); err == nil {
				return
			}
		}
		r.logger.Warn("audit enqueue failed, falling back to direct insert", slog.Any("error", err))
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		r.logger.Error("audit write failed",
			slog.String("action", e.Action),
			slog.String("entity", e.Entity),
			slog.String("entity_id", e.EntityID),
			slog.Any("error", err))
	}
}

// NewRecordTask constructs an asynq task carrying the entry payload.
func NewRecordTask(e Entry) (*asynq.Task, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecord, data), nil
}

// NewTaskHandler returns the worker-side handler persisting queued entries.
func NewTaskHandler(repo Repository) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var e Entry
		if err := json.Unmarshal(t.Payload(), &e); err != nil {
			return asynq.SkipRetry
		}
		return repo.Insert(ctx, e)
	}
}
