package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	err   error
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type stubRepo struct {
	err     error
	entries []Entry
}

func (s *stubRepo) Insert(_ context.Context, e Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *stubRepo) List(_ context.Context, _ ListFilters) ([]Entry, int, error) {
	return s.entries, len(s.entries), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entry() Entry {
	return Entry{UserID: 7, Action: ActionCreate, Entity: "Order", EntityID: "1"}
}

func TestRecordEnqueues(t *testing.T) {
	enq := &stubEnqueuer{}
	repo := &stubRepo{}
	rec := NewRecorder(enq, repo, quietLogger())

	rec.Record(context.Background(), entry())

	assert.Len(t, enq.tasks, 1)
	assert.Empty(t, repo.entries)
	assert.Equal(t, TaskTypeRecord, enq.tasks[0].Type())
}

func TestRecordFallsBackToInsert(t *testing.T) {
	enq := &stubEnqueuer{err: errors.New("redis down")}
	repo := &stubRepo{}
	rec := NewRecorder(enq, repo, quietLogger())

	rec.Record(context.Background(), entry())

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "Order", repo.entries[0].Entity)
	assert.False(t, repo.entries[0].OccurredAt.IsZero())
}

func TestRecordNeverFailsCaller(t *testing.T) {
	enq := &stubEnqueuer{err: errors.New("redis down")}
	repo := &stubRepo{err: errors.New("postgres down")}
	rec := NewRecorder(enq, repo, quietLogger())

	// Both sinks failing must not panic or surface anything.
	rec.Record(context.Background(), entry())
}

func TestRecordWithoutEnqueuerInsertsDirectly(t *testing.T) {
	repo := &stubRepo{}
	rec := NewRecorder(nil, repo, quietLogger())

	rec.Record(context.Background(), entry())

	assert.Len(t, repo.entries, 1)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), entry())
}

func TestTaskHandlerInsertsEntry(t *testing.T) {
	repo := &stubRepo{}
	handler := NewTaskHandler(repo)

	task, err := NewRecordTask(entry())
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))
	assert.Len(t, repo.entries, 1)
}

func TestTaskHandlerSkipsBadPayload(t *testing.T) {
	repo := &stubRepo{}
	handler := NewTaskHandler(repo)

	err := handler(context.Background(), asynq.NewTask(TaskTypeRecord, []byte("not json")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
