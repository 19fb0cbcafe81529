package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	ActiveGameIDs(ctx context.Context) ([]string, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	// only the bounded tail of the event log is persisted
	game.EventLog = game.TailEvents()

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + game.ID
	err = that.client.Set(ctx, gameKey, gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(response), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	err := that.client.Del(ctx, gameKey).Err()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	return nil
}

// ActiveGameIDs scans for every persisted game document, used to rebuild the
// bot supervisor registry after a restart.
func (that *dbGame) ActiveGameIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)

	for {
		keys, next, err := that.client.Scan(ctx, cursor, "game:*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan games: %w", err)
		}

		for _, key := range keys {
			id := strings.TrimPrefix(key, "game:")
			// skip sub-keys like game:<id>:bot_metadata
			if id != "" && !strings.Contains(id, ":") {
				ids = append(ids, id)
			}
		}

		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}
