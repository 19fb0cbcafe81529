package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/himalgames/monopoly-backend/internal/scheduler"
	"github.com/himalgames/monopoly-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects fired jobs across goroutines.
type recorder struct {
	mu   sync.Mutex
	jobs []scheduler.Job
}

func (that *recorder) handle(_ context.Context, job scheduler.Job) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.jobs = append(that.jobs, job)
}

func (that *recorder) fired() []scheduler.Job {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]scheduler.Job(nil), that.jobs...)
}

func TestScheduler(t *testing.T) {
	ctx, s := suite.New(t)

	t.Run("fires a due job exactly once", func(t *testing.T) {
		sched := scheduler.New(s.Logger, s.Storage)
		rec := &recorder{}
		sched.Handle(scheduler.JobTurnExpired, rec.handle)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go sched.Start(runCtx)

		job := scheduler.Job{Kind: scheduler.JobTurnExpired, GameID: "game-1", PlayerID: "p1", Attempt: 1}
		require.NoError(t, sched.Schedule(ctx, job, 200*time.Millisecond))

		assert.Eventually(t, func() bool {
			return len(rec.fired()) == 1
		}, 5*time.Second, 50*time.Millisecond)

		fired := rec.fired()[0]
		assert.Equal(t, "game-1", fired.GameID)
		assert.Equal(t, "p1", fired.PlayerID)
		assert.Equal(t, 1, fired.Attempt)

		// no second delivery
		time.Sleep(time.Second)
		assert.Len(t, rec.fired(), 1)
	})

	t.Run("a cancelled job never fires", func(t *testing.T) {
		sched := scheduler.New(s.Logger, s.Storage)
		rec := &recorder{}
		sched.Handle(scheduler.JobTradeExpired, rec.handle)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go sched.Start(runCtx)

		job := scheduler.Job{Kind: scheduler.JobTradeExpired, GameID: "game-2", TradeID: "t1"}
		require.NoError(t, sched.Schedule(ctx, job, 300*time.Millisecond))
		require.NoError(t, sched.Cancel(ctx, job))

		time.Sleep(1500 * time.Millisecond)
		assert.Empty(t, rec.fired())
	})

	t.Run("rescheduling replaces the pending job", func(t *testing.T) {
		sched := scheduler.New(s.Logger, s.Storage)
		rec := &recorder{}
		sched.Handle(scheduler.JobTurnExpired, rec.handle)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go sched.Start(runCtx)

		// same dedupe key, second schedule wins
		job := scheduler.Job{Kind: scheduler.JobTurnExpired, GameID: "game-3", PlayerID: "p1", Attempt: 1}
		require.NoError(t, sched.Schedule(ctx, job, 10*time.Second))
		job.Attempt = 2
		require.NoError(t, sched.Schedule(ctx, job, 200*time.Millisecond))

		assert.Eventually(t, func() bool {
			return len(rec.fired()) == 1
		}, 5*time.Second, 50*time.Millisecond)
		assert.Equal(t, 2, rec.fired()[0].Attempt)
	})

	t.Run("distinct players occupy distinct slots", func(t *testing.T) {
		left := scheduler.Job{Kind: scheduler.JobTurnExpired, GameID: "g", PlayerID: "p1"}
		right := scheduler.Job{Kind: scheduler.JobTurnExpired, GameID: "g", PlayerID: "p2"}

		assert.NotEqual(t, left.DedupeKey(), right.DedupeKey())
	})
}
