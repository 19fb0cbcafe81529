// Package scheduler provides deferred job execution on top of a Redis sorted
// set: members are job payloads scored by their due time, claimed atomically
// by ZRem so only one worker fires each job. Dedupe keys let a reschedule
// replace a pending job instead of stacking a second one.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type JobKind string

const (
	JobTurnExpired    JobKind = "turn_expired"
	JobTradeExpired   JobKind = "trade_expired"
	JobCalculateStats JobKind = "calculate_stats"
)

const (
	queueKey    = "scheduler:queue"
	payloadsKey = "scheduler:payloads"

	pollInterval = 500 * time.Millisecond
)

type Job struct {
	Kind     JobKind `json:"kind"`
	GameID   string  `json:"game_id"`
	PlayerID string  `json:"player_id,omitempty"`
	TradeID  string  `json:"trade_id,omitempty"`
	Attempt  int     `json:"attempt,omitempty"`
}

// DedupeKey identifies the slot a job occupies; scheduling a job with the
// same key replaces the pending one.
func (that Job) DedupeKey() string {
	switch that.Kind {
	case JobTradeExpired:
		return fmt.Sprintf("%s-%s-%s", that.Kind, that.GameID, that.TradeID)
	default:
		return fmt.Sprintf("%s-%s-%s", that.Kind, that.GameID, that.PlayerID)
	}
}

type Handler func(ctx context.Context, job Job)

type Scheduler struct {
	logger   *slog.Logger
	client   *redis.Client
	handlers map[JobKind]Handler
}

func New(logger *slog.Logger, client *redis.Client) *Scheduler {
	return &Scheduler{
		logger:   logger.With("component", "scheduler"),
		client:   client,
		handlers: make(map[JobKind]Handler),
	}
}

// Handle registers the handler for a job kind. Registration happens during
// wiring, before Start; it is not safe to call concurrently with the poll
// loop.
func (that *Scheduler) Handle(kind JobKind, handler Handler) {
	that.handlers[kind] = handler
}

// Schedule enqueues a job to fire after the delay, replacing any pending job
// with the same dedupe key.
func (that *Scheduler) Schedule(ctx context.Context, job Job, delay time.Duration) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("could not marshal job: %w", err)
	}

	key := job.DedupeKey()
	due := float64(time.Now().Add(delay).UnixMilli())

	pipe := that.client.TxPipeline()
	pipe.HSet(ctx, payloadsKey, key, payload)
	pipe.ZAdd(ctx, queueKey, redis.Z{Score: due, Member: key})
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	return nil
}

// Cancel drops a pending job by its dedupe key. Cancelling a job that
// already fired or never existed is not an error.
func (that *Scheduler) Cancel(ctx context.Context, job Job) error {
	key := job.DedupeKey()

	pipe := that.client.TxPipeline()
	pipe.ZRem(ctx, queueKey, key)
	pipe.HDel(ctx, payloadsKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}

	return nil
}

// Start runs the poll loop until the context is cancelled.
func (that *Scheduler) Start(ctx context.Context) {
	logger := that.logger.With("method", "Start")
	logger.Info("scheduler started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			that.drainDue(ctx)
		}
	}
}

// drainDue claims and dispatches every job whose due time has passed.
func (that *Scheduler) drainDue(ctx context.Context) {
	logger := that.logger.With("method", "drainDue")

	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	keys, err := that.client.ZRangeByScore(ctx, queueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		logger.Error("failed to read due jobs", "error", err)
		return
	}

	for _, key := range keys {
		// ZRem is the claim: whoever removes the member owns the job
		removed, err := that.client.ZRem(ctx, queueKey, key).Result()
		if err != nil {
			logger.Error("failed to claim job", "error", err, "job", key)
			continue
		}
		if removed == 0 {
			continue
		}

		payload, err := that.client.HGet(ctx, payloadsKey, key).Result()
		that.client.HDel(ctx, payloadsKey, key)
		if err != nil {
			logger.Error("failed to load job payload", "error", err, "job", key)
			continue
		}

		var job Job
		if err = json.Unmarshal([]byte(payload), &job); err != nil {
			logger.Error("failed to unmarshal job", "error", err, "job", key)
			continue
		}

		handler, ok := that.handlers[job.Kind]
		if !ok {
			logger.Warn("no handler for job kind", "kind", job.Kind)
			continue
		}

		go handler(ctx, job)
	}
}
