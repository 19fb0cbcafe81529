package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

type StatsRepository interface {
	AppendSnapshot(ctx context.Context, gameID, playerID string, snapshot entity.PlayerStatsSnapshot) error
	History(ctx context.Context, gameID, playerID string) ([]entity.PlayerStatsSnapshot, error)
	DeleteByGame(ctx context.Context, gameID string, playerIDs []string) error
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func statsKey(gameID, playerID string) string {
	return "game:" + gameID + ":stats:" + playerID
}

func (that *dbStats) AppendSnapshot(ctx context.Context, gameID, playerID string, snapshot entity.PlayerStatsSnapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal stats snapshot: %w", err)
	}

	err = that.client.RPush(ctx, statsKey(gameID, playerID), snapshotJSON).Err()
	if err != nil {
		return fmt.Errorf("failed to push stats snapshot: %w", err)
	}

	return nil
}

func (that *dbStats) History(ctx context.Context, gameID, playerID string) ([]entity.PlayerStatsSnapshot, error) {
	raw, err := that.client.LRange(ctx, statsKey(gameID, playerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats history: %w", err)
	}

	snapshots := make([]entity.PlayerStatsSnapshot, 0, len(raw))
	for _, item := range raw {
		var snapshot entity.PlayerStatsSnapshot
		if err = json.Unmarshal([]byte(item), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (that *dbStats) DeleteByGame(ctx context.Context, gameID string, playerIDs []string) error {
	keys := make([]string, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		keys = append(keys, statsKey(gameID, playerID))
	}
	if len(keys) == 0 {
		return nil
	}

	err := that.client.Del(ctx, keys...).Err()
	if err != nil {
		return fmt.Errorf("failed to delete stats history: %w", err)
	}

	return nil
}
