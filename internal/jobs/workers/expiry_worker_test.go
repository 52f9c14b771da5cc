package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"matchbet-server/internal/clock"
	"matchbet-server/internal/jobs"
	"matchbet-server/internal/observability"
	progressProcessor "matchbet-server/internal/progress/processor"
	"matchbet-server/internal/store"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var sweepNow = time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)

func expirable(n int) []store.ExpirableProgress {
	records := make([]store.ExpirableProgress, n)
	for i := range records {
		records[i] = store.ExpirableProgress{
			ProgressID: uuid.New(),
			UserID:     uuid.New(),
			OfferID:    uuid.New(),
			StartedAt:  sweepNow.AddDate(0, 0, -10),
			ExpiryDays: 7,
		}
	}
	return records
}

func newTestWorker(t *testing.T, batchSize int) (*ExpiryWorker, *MockExpirableLister, *MockExpirer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	lister := NewMockExpirableLister(ctrl)
	expirer := NewMockExpirer(ctrl)
	worker := NewExpiryWorker(lister, expirer, clock.NewFixed(sweepNow), batchSize, observability.NewLogger())
	return worker, lister, expirer
}

func TestExpiryWorker_Sweep(t *testing.T) {
	t.Parallel()

	t.Run("expires every due record", func(t *testing.T) {
		t.Parallel()
		worker, lister, expirer := newTestWorker(t, 50)
		due := expirable(3)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, 50).Return(due, nil)
		for _, r := range due {
			expirer.EXPECT().MarkExpired(gomock.Any(), r.UserID, r.OfferID).
				Return(store.UserOfferProgress{ID: r.ProgressID, Stage: store.StageExpired}, nil)
		}

		result, err := worker.Sweep(context.Background(), sweepNow, 0)
		require.NoError(t, err)
		assert.Equal(t, SweepResult{Scanned: 3, Expired: 3}, result)
	})

	t.Run("skips records closed or missing since listing", func(t *testing.T) {
		t.Parallel()
		worker, lister, expirer := newTestWorker(t, 50)
		due := expirable(3)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, 10).Return(due, nil)
		expirer.EXPECT().MarkExpired(gomock.Any(), due[0].UserID, due[0].OfferID).
			Return(store.UserOfferProgress{}, &progressProcessor.IllegalTransitionError{Stage: store.StageCompleted, Command: progressProcessor.CommandMarkExpired})
		expirer.EXPECT().MarkExpired(gomock.Any(), due[1].UserID, due[1].OfferID).
			Return(store.UserOfferProgress{}, &progressProcessor.NotFoundError{Resource: "progress"})
		expirer.EXPECT().MarkExpired(gomock.Any(), due[2].UserID, due[2].OfferID).
			Return(store.UserOfferProgress{}, nil)

		result, err := worker.Sweep(context.Background(), sweepNow, 10)
		require.NoError(t, err)
		assert.Equal(t, SweepResult{Scanned: 3, Expired: 1, Skipped: 2}, result)
	})

	t.Run("partial failure does not fail the sweep", func(t *testing.T) {
		t.Parallel()
		worker, lister, expirer := newTestWorker(t, 50)
		due := expirable(2)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, 50).Return(due, nil)
		expirer.EXPECT().MarkExpired(gomock.Any(), due[0].UserID, due[0].OfferID).
			Return(store.UserOfferProgress{}, errors.New("connection reset"))
		expirer.EXPECT().MarkExpired(gomock.Any(), due[1].UserID, due[1].OfferID).
			Return(store.UserOfferProgress{}, nil)

		result, err := worker.Sweep(context.Background(), sweepNow, 0)
		require.NoError(t, err)
		assert.Equal(t, SweepResult{Scanned: 2, Expired: 1, Failed: 1}, result)
	})

	t.Run("total failure is returned", func(t *testing.T) {
		t.Parallel()
		worker, lister, expirer := newTestWorker(t, 50)
		due := expirable(2)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, 50).Return(due, nil)
		expirer.EXPECT().MarkExpired(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(store.UserOfferProgress{}, errors.New("connection reset")).Times(2)

		result, err := worker.Sweep(context.Background(), sweepNow, 0)
		require.Error(t, err)
		assert.Equal(t, 2, result.Failed)
	})

	t.Run("list error", func(t *testing.T) {
		t.Parallel()
		worker, lister, _ := newTestWorker(t, 50)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, 50).Return(nil, errors.New("db down"))

		_, err := worker.Sweep(context.Background(), sweepNow, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list expirable progress")
	})

	t.Run("nothing due", func(t *testing.T) {
		t.Parallel()
		worker, lister, _ := newTestWorker(t, 0)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, defaultSweepBatchSize).Return(nil, nil)

		result, err := worker.Sweep(context.Background(), sweepNow, 0)
		require.NoError(t, err)
		assert.Equal(t, SweepResult{}, result)
	})
}

func TestExpiryWorker_ProcessExpirySweepTask(t *testing.T) {
	t.Parallel()

	t.Run("scheduler task uses the worker clock", func(t *testing.T) {
		t.Parallel()
		worker, lister, _ := newTestWorker(t, 25)

		lister.EXPECT().ListExpirableProgress(gomock.Any(), sweepNow, 25).Return(nil, nil)

		err := worker.ProcessExpirySweepTask(context.Background(), asynq.NewTask(jobs.TypeExpirySweep, nil))
		require.NoError(t, err)
	})

	t.Run("payload overrides batch and time", func(t *testing.T) {
		t.Parallel()
		worker, lister, _ := newTestWorker(t, 25)
		at := sweepNow.Add(48 * time.Hour)

		task, err := jobs.NewExpirySweepTask(jobs.ExpirySweepPayload{BatchSize: 5, Now: at})
		require.NoError(t, err)
		lister.EXPECT().ListExpirableProgress(gomock.Any(), at, 5).Return(nil, nil)

		require.NoError(t, worker.ProcessExpirySweepTask(context.Background(), task))
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		t.Parallel()
		worker, _, _ := newTestWorker(t, 25)

		err := worker.ProcessExpirySweepTask(context.Background(), asynq.NewTask(jobs.TypeExpirySweep, []byte("{")))
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestNewExpirySweepTask(t *testing.T) {
	t.Parallel()

	task, err := jobs.NewExpirySweepTask(jobs.ExpirySweepPayload{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, jobs.TypeExpirySweep, task.Type())

	var payload jobs.ExpirySweepPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, 10, payload.BatchSize)
	assert.True(t, payload.Now.IsZero())
}
