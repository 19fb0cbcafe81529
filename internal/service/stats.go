package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/himalgames/monopoly-backend/internal/repository"
	"github.com/himalgames/monopoly-backend/internal/scheduler"
)

type StatsService interface {
	HandleCalculateStats(ctx context.Context, job scheduler.Job)
}

type statsService struct {
	logger *slog.Logger

	gameRepo  repository.GameRepository
	statsRepo repository.StatsRepository
}

func NewStatsService(logger *slog.Logger, gameRepo repository.GameRepository, statsRepo repository.StatsRepository) StatsService {
	return &statsService{
		logger:    logger.With("component", "stats_service"),
		gameRepo:  gameRepo,
		statsRepo: statsRepo,
	}
}

// HandleCalculateStats records one economic snapshot per surviving player.
// It reads without the game lock: a single GET is consistent enough for a
// history series.
func (that *statsService) HandleCalculateStats(ctx context.Context, job scheduler.Job) {
	logger := that.logger.With("method", "HandleCalculateStats", "game_id", job.GameID)

	game, err := that.gameRepo.GetByID(ctx, job.GameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		return
	}
	if err != nil {
		logger.Error("failed to load game", "error", err)
		return
	}
	if !game.IsActive() {
		return
	}

	for _, playerID := range game.Order {
		player, ok := game.Players[playerID]
		if !ok || player.Status == entity.PlayerBankrupt {
			continue
		}

		snapshot := entity.PlayerStatsSnapshot{
			TurnNumber: game.TurnNumber,
			Money:      player.Money,
			NetWorth:   player.Money + player.Assets.TotalValue,
		}
		if err = that.statsRepo.AppendSnapshot(ctx, game.ID, playerID, snapshot); err != nil {
			logger.Error("failed to append stats snapshot", "error", err, "player_id", playerID)
		}
	}
}
