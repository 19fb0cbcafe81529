package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

type BotRepository interface {
	Save(ctx context.Context, gameID string, meta entity.BotMetadata) error
	ListByGame(ctx context.Context, gameID string) ([]entity.BotMetadata, error)
	DeleteByGame(ctx context.Context, gameID string) error
}

type dbBot struct {
	client *redis.Client
}

func NewBotRepository(client *redis.Client) BotRepository {
	return &dbBot{
		client: client,
	}
}

func botMetadataKey(gameID string) string {
	return "game:" + gameID + ":bot_metadata"
}

func (that *dbBot) Save(ctx context.Context, gameID string, meta entity.BotMetadata) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("could not marshal bot metadata: %w", err)
	}

	err = that.client.HSet(ctx, botMetadataKey(gameID), meta.PlayerID, metaJSON).Err()
	if err != nil {
		return fmt.Errorf("failed to set bot metadata: %w", err)
	}

	return nil
}

func (that *dbBot) ListByGame(ctx context.Context, gameID string) ([]entity.BotMetadata, error) {
	raw, err := that.client.HGetAll(ctx, botMetadataKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bot metadata: %w", err)
	}

	metas := make([]entity.BotMetadata, 0, len(raw))
	for _, item := range raw {
		var meta entity.BotMetadata
		if err = json.Unmarshal([]byte(item), &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bot metadata: %w", err)
		}
		metas = append(metas, meta)
	}

	return metas, nil
}

func (that *dbBot) DeleteByGame(ctx context.Context, gameID string) error {
	err := that.client.Del(ctx, botMetadataKey(gameID)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete bot metadata: %w", err)
	}

	return nil
}
