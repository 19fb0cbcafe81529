package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

type TradeRepository interface {
	Save(ctx context.Context, trade *entity.Trade, ttl time.Duration) error
	GetByID(ctx context.Context, gameID, tradeID string) (*entity.Trade, error)
	DeleteByID(ctx context.Context, gameID, tradeID string) error
	DeleteByGame(ctx context.Context, gameID string) error

	SetCooldown(ctx context.Context, gameID, proposerID, responderID string, ttl time.Duration) error
	OnCooldown(ctx context.Context, gameID, proposerID, responderID string) (bool, error)
}

type dbTrade struct {
	client *redis.Client
}

func NewTradeRepository(client *redis.Client) TradeRepository {
	return &dbTrade{
		client: client,
	}
}

func tradeKey(gameID, tradeID string) string {
	return "trade:" + gameID + ":" + tradeID
}

func cooldownKey(gameID, proposerID, responderID string) string {
	return "trade_cooldown:" + gameID + ":" + proposerID + ":" + responderID
}

// Save persists a trade document with an expiry; a trade that outlives its
// ttl simply disappears, which is how expiry is enforced.
func (that *dbTrade) Save(ctx context.Context, trade *entity.Trade, ttl time.Duration) error {
	tradeJSON, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("could not marshal trade: %w", err)
	}

	err = that.client.Set(ctx, tradeKey(trade.GameID, trade.ID), tradeJSON, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set trade: %w", err)
	}

	return nil
}

func (that *dbTrade) GetByID(ctx context.Context, gameID, tradeID string) (*entity.Trade, error) {
	response, err := that.client.Get(ctx, tradeKey(gameID, tradeID)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrTradeNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get trade by id: %w", err)
	}

	var trade entity.Trade
	if err = json.Unmarshal([]byte(response), &trade); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trade: %w", err)
	}

	return &trade, nil
}

func (that *dbTrade) DeleteByID(ctx context.Context, gameID, tradeID string) error {
	err := that.client.Del(ctx, tradeKey(gameID, tradeID)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete trade by id: %w", err)
	}

	return nil
}

// DeleteByGame purges every trade and cooldown key left behind by a game.
func (that *dbTrade) DeleteByGame(ctx context.Context, gameID string) error {
	for _, pattern := range []string{"trade:" + gameID + ":*", "trade_cooldown:" + gameID + ":*"} {
		var cursor uint64
		for {
			keys, next, err := that.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("failed to scan trades: %w", err)
			}

			if len(keys) > 0 {
				if err = that.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("failed to delete trades: %w", err)
				}
			}

			cursor = next
			if cursor == 0 {
				break
			}
		}
	}

	return nil
}

// SetCooldown throttles repeated bot offers between the same pair.
func (that *dbTrade) SetCooldown(ctx context.Context, gameID, proposerID, responderID string, ttl time.Duration) error {
	err := that.client.Set(ctx, cooldownKey(gameID, proposerID, responderID), "1", ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set trade cooldown: %w", err)
	}

	return nil
}

func (that *dbTrade) OnCooldown(ctx context.Context, gameID, proposerID, responderID string) (bool, error) {
	count, err := that.client.Exists(ctx, cooldownKey(gameID, proposerID, responderID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check trade cooldown: %w", err)
	}

	return count > 0, nil
}
