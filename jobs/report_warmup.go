package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskReportWarmup precomputes the month-to-date finance report so the first
// morning dashboard hit lands on a warm cache.
const TaskReportWarmup = "finance:report_warmup"

// ReportWarmupPayload selects the range to warm.
type ReportWarmupPayload struct {
	Range string `json:"range"`
}

// Reporter is the slice of the finance service the warmup job needs.
type Reporter interface {
	Warm(ctx context.Context, from, to time.Time) error
}

// NewReportWarmupTask constructs the warmup task.
func NewReportWarmupTask(rng string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Range: rng})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// ReportWarmupJob runs the warmup on a schedule.
type ReportWarmupJob struct {
	reporter Reporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportWarmupJob constructs the job.
func NewReportWarmupJob(reporter Reporter, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{reporter: reporter, logger: logger, now: time.Now}
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	now := j.now()
	var from time.Time
	switch payload.Range {
	case "month":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "week":
		from = now.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	default:
		from = now.Truncate(24 * time.Hour)
	}

	if err := j.reporter.Warm(ctx, from, now); err != nil {
		j.logger.Warn("report warmup", slog.String("range", payload.Range), slog.Any("error", err))
		return err
	}
	return nil
}
