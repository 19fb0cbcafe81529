package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/engine"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/himalgames/monopoly-backend/internal/repository"
	"github.com/himalgames/monopoly-backend/internal/scheduler"
)

// BotNotifier is the hook the gameplay service pokes after every mutation so
// the bot supervisor can act on a bot's turn; implemented by the bot
// service.
type BotNotifier interface {
	OnStateChanged(gameID string)
	ReleaseGame(gameID string)
}

// GameplayService is the single write path for a running game. Every public
// operation acquires the per-game lock, loads the state, applies one engine
// mutation, persists and then fans out. Nothing below this layer locks, so
// the lock is never taken twice on one call stack.
type GameplayService interface {
	Start(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	Roll(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error)
	BuyProperty(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	BuildHouse(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	SellHouse(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	MortgageProperty(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	UnmortgageProperty(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	SellPropertyToBank(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	PayBail(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error)
	UseJailCard(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error)
	StartAuction(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error)
	PlaceBid(ctx context.Context, gameID, playerID string, amount int) (*entity.Game, []entity.Event, error)
	PassBid(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error)
	EndTurn(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error)
	Forfeit(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	HandleTurnExpired(ctx context.Context, job scheduler.Job)
}

type gameplayService struct {
	logger *slog.Logger

	engine    *engine.Engine
	gameRepo  repository.GameRepository
	tradeRepo repository.TradeRepository
	statsRepo repository.StatsRepository
	botRepo   repository.BotRepository
	locker    repository.GameLocker
	sched     *scheduler.Scheduler
	publisher Publisher

	notifier BotNotifier
}

func NewGameplayService(
	logger *slog.Logger,
	gameEngine *engine.Engine,
	gameRepo repository.GameRepository,
	tradeRepo repository.TradeRepository,
	statsRepo repository.StatsRepository,
	botRepo repository.BotRepository,
	locker repository.GameLocker,
	sched *scheduler.Scheduler,
	publisher Publisher,
) *gameplayService {
	return &gameplayService{
		logger:    logger.With("component", "gameplay_service"),
		engine:    gameEngine,
		gameRepo:  gameRepo,
		tradeRepo: tradeRepo,
		statsRepo: statsRepo,
		botRepo:   botRepo,
		locker:    locker,
		sched:     sched,
		publisher: publisher,
	}
}

// SetBotNotifier closes the wiring cycle with the bot supervisor; call once
// at startup before any game runs.
func (that *gameplayService) SetBotNotifier(notifier BotNotifier) {
	that.notifier = notifier
}

// withGame is the one place the per-game lock is taken. The mutation fn runs
// on the loaded state; on success the state is persisted and returned. A
// persistence failure is a hard error, the caller gets nothing back.
// ErrUnsettledDebt is special: the phase change it carries must survive, so
// the state is persisted and the error still returned.
func (that *gameplayService) withGame(ctx context.Context, gameID string, fn func(game *entity.Game) ([]entity.Event, error)) (*entity.Game, []entity.Event, error) {
	release, err := that.locker.Acquire(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock game: %w", err)
	}
	defer release()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	events, fnErr := fn(game)
	if fnErr != nil && !errors.Is(fnErr, apperror.ErrUnsettledDebt) {
		return nil, nil, fnErr
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to persist game: %w", err)
	}

	return game, events, fnErr
}

// mutate wraps withGame with the post-release fan-out shared by every
// operation: broadcast, timers, stats, bot dispatch.
func (that *gameplayService) mutate(ctx context.Context, gameID string, fn func(game *entity.Game) ([]entity.Event, error)) (*entity.Game, []entity.Event, error) {
	game, events, err := that.withGame(ctx, gameID, fn)
	if err != nil && !errors.Is(err, apperror.ErrUnsettledDebt) {
		return nil, nil, err
	}

	that.afterMutation(ctx, game, events)
	return game, events, err
}

// afterMutation runs outside the lock, on the state snapshot the mutation
// produced.
func (that *gameplayService) afterMutation(ctx context.Context, game *entity.Game, events []entity.Event) {
	logger := that.logger.With("method", "afterMutation", "game_id", game.ID)

	if len(events) > 0 {
		that.publisher.BroadcastGame(game.ID, game, events)
	}

	if game.IsGameOver() {
		that.finalizeGameOver(ctx, game)
		return
	}
	if !game.IsActive() {
		return
	}

	if turnChanged(events) {
		if err := that.sched.Schedule(ctx, scheduler.Job{Kind: scheduler.JobCalculateStats, GameID: game.ID}, 0); err != nil {
			logger.Error("failed to schedule stats job", "error", err)
		}
	}

	current, ok := game.Players[game.Turn]
	if ok && !current.IsBot && !game.IsSimulation {
		job := scheduler.Job{
			Kind:     scheduler.JobTurnExpired,
			GameID:   game.ID,
			PlayerID: current.ID,
			Attempt:  1,
		}
		if err := that.sched.Schedule(ctx, job, that.engine.Settings().TurnTimeLimit); err != nil {
			logger.Error("failed to schedule turn timer", "error", err)
		}

		if current.InJail && turnChanged(events) {
			notice := entity.NewEvent(entity.EventInJailNotice)
			notice.PlayerID = current.ID
			notice.JailTurns = current.JailTurns
			notice.CanUseCard = current.GetOutOfJailFreeCards > 0
			that.publisher.NotifyPlayer(game.ID, current.ID, notice)
		}
	}

	if that.notifier != nil {
		that.notifier.OnStateChanged(game.ID)
	}
}

// turnChanged reports whether this mutation handed the turn to someone (or
// back to the same player for another roll).
func turnChanged(events []entity.Event) bool {
	for _, event := range events {
		switch event.Type {
		case entity.EventGameStarted, entity.EventTurnChanged, entity.EventAnotherTurn:
			return true
		}
	}
	return false
}

// finalizeGameOver emits the aggregated statistics and purges every
// persisted key the game left behind.
func (that *gameplayService) finalizeGameOver(ctx context.Context, game *entity.Game) {
	logger := that.logger.With("method", "finalizeGameOver", "game_id", game.ID)

	stats := make([]entity.PlayerStatsHistory, 0, len(game.Players))
	for playerID := range game.Players {
		history, err := that.statsRepo.History(ctx, game.ID, playerID)
		if err != nil {
			logger.Error("failed to load stats history", "error", err, "player_id", playerID)
			continue
		}
		stats = append(stats, entity.PlayerStatsHistory{PlayerID: playerID, Stats: history})
	}

	statsEvent := entity.NewEvent(entity.EventGameStats)
	statsEvent.Stats = stats
	that.publisher.BroadcastGame(game.ID, game, []entity.Event{statsEvent})

	playerIDs := make([]string, 0, len(game.Players))
	for playerID := range game.Players {
		playerIDs = append(playerIDs, playerID)
	}

	if err := that.statsRepo.DeleteByGame(ctx, game.ID, playerIDs); err != nil {
		logger.Error("failed to purge stats", "error", err)
	}
	if err := that.tradeRepo.DeleteByGame(ctx, game.ID); err != nil {
		logger.Error("failed to purge trades", "error", err)
	}
	if err := that.botRepo.DeleteByGame(ctx, game.ID); err != nil {
		logger.Error("failed to purge bot metadata", "error", err)
	}
	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		logger.Error("failed to purge game", "error", err)
	}

	if that.notifier != nil {
		that.notifier.ReleaseGame(game.ID)
	}
}

func (that *gameplayService) Start(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, _, err := that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		if game.Host != playerID {
			return nil, apperror.ErrNotYourTurn
		}
		return that.engine.StartGame(game)
	})
	return game, err
}

func (that *gameplayService) Roll(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.Roll(game, playerID)
	})
}

func (that *gameplayService) BuyProperty(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.BuyProperty(game, playerID, tileID)
	})
}

func (that *gameplayService) BuildHouse(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.BuildHouse(game, playerID, tileID)
	})
}

func (that *gameplayService) SellHouse(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.SellHouse(game, playerID, tileID)
	})
}

func (that *gameplayService) MortgageProperty(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.MortgageProperty(game, playerID, tileID)
	})
}

func (that *gameplayService) UnmortgageProperty(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.UnmortgageProperty(game, playerID, tileID)
	})
}

func (that *gameplayService) SellPropertyToBank(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.SellPropertyToBank(game, playerID, tileID)
	})
}

func (that *gameplayService) PayBail(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.PayBail(game, playerID)
	})
}

func (that *gameplayService) UseJailCard(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.UseJailCard(game, playerID)
	})
}

func (that *gameplayService) StartAuction(ctx context.Context, gameID, playerID string, tileID int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.StartAuction(game, playerID, tileID)
	})
}

func (that *gameplayService) PlaceBid(ctx context.Context, gameID, playerID string, amount int) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.PlaceBid(game, playerID, amount)
	})
}

func (that *gameplayService) PassBid(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.PassBid(game, playerID)
	})
}

func (that *gameplayService) EndTurn(ctx context.Context, gameID, playerID string) (*entity.Game, []entity.Event, error) {
	return that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		return that.engine.EndTurn(game, playerID)
	})
}

// Forfeit removes a player from a lobby or a live game.
func (that *gameplayService) Forfeit(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, _, err := that.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		if game.IsLobby() {
			if _, ok := game.Players[playerID]; !ok {
				return nil, apperror.ErrPlayerNotFound
			}
			delete(game.Players, playerID)
			game.RemoveFromOrder(playerID)
			if game.Host == playerID && len(game.Order) > 0 {
				game.Host = game.Order[0]
			}

			event := entity.NewEvent(entity.EventPlayerLeft)
			event.PlayerID = playerID
			game.AppendEvent(event)
			return []entity.Event{event}, nil
		}
		return that.engine.ForfeitPlayer(game, playerID)
	})
	return game, err
}

// HandleTurnExpired fires when a human sat on their turn past the limit. The
// player only ever gets reminded and the timer re-armed; an absent human is
// never forced out or liquidated, they can always come back or leave on their
// own. The job is stale if the turn moved on in the meantime.
func (that *gameplayService) HandleTurnExpired(ctx context.Context, job scheduler.Job) {
	logger := that.logger.With("method", "HandleTurnExpired", "game_id", job.GameID)

	game, err := that.gameRepo.GetByID(ctx, job.GameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		return
	}
	if err != nil {
		logger.Error("failed to handle expired turn", "error", err)
		return
	}

	if !game.IsActive() || game.Turn != job.PlayerID {
		return
	}
	player, ok := game.Players[job.PlayerID]
	if !ok || player.IsBot {
		return
	}

	notice := entity.NewEvent(entity.EventRemindTurn)
	notice.PlayerID = job.PlayerID
	that.publisher.NotifyPlayer(job.GameID, job.PlayerID, notice)

	retry := scheduler.Job{
		Kind:     scheduler.JobTurnExpired,
		GameID:   job.GameID,
		PlayerID: job.PlayerID,
		Attempt:  job.Attempt + 1,
	}
	if err = that.sched.Schedule(ctx, retry, that.engine.Settings().TurnTimeLimit); err != nil {
		logger.Error("failed to reschedule turn timer", "error", err)
	}
}
