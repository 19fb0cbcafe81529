package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/engine"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/himalgames/monopoly-backend/internal/repository"
	"github.com/himalgames/monopoly-backend/internal/scheduler"
)

// TradeNotifier lets the bot supervisor react to trades aimed at or declined
// for its bots.
type TradeNotifier interface {
	OnTradeOffered(gameID string, trade *entity.Trade)
	OnTradeDeclined(gameID string, trade *entity.Trade)
}

type TradeService interface {
	ProposeTrade(ctx context.Context, gameID, proposerID, responderID string, offer, request entity.TradeOffer) (*entity.Trade, error)
	AcceptTrade(ctx context.Context, gameID, tradeID, playerID string) (*entity.Game, error)
	DeclineTrade(ctx context.Context, gameID, tradeID, playerID string) error
	CancelTrade(ctx context.Context, gameID, tradeID, playerID string) error

	HandleTradeExpired(ctx context.Context, job scheduler.Job)
}

type tradeService struct {
	logger *slog.Logger

	engine    *engine.Engine
	gameplay  *gameplayService
	tradeRepo repository.TradeRepository
	sched     *scheduler.Scheduler

	notifier TradeNotifier
}

func NewTradeService(
	logger *slog.Logger,
	gameEngine *engine.Engine,
	gameplay *gameplayService,
	tradeRepo repository.TradeRepository,
	sched *scheduler.Scheduler,
) *tradeService {
	return &tradeService{
		logger:    logger.With("component", "trade_service"),
		engine:    gameEngine,
		gameplay:  gameplay,
		tradeRepo: tradeRepo,
		sched:     sched,
	}
}

func (that *tradeService) SetTradeNotifier(notifier TradeNotifier) {
	that.notifier = notifier
}

// ProposeTrade validates both sides against the live state under the game
// lock, then persists the trade with its expiry ttl and schedules the
// expiry job.
func (that *tradeService) ProposeTrade(ctx context.Context, gameID, proposerID, responderID string, offer, request entity.TradeOffer) (*entity.Trade, error) {
	trade := &entity.Trade{
		ID:          uuid.NewString(),
		GameID:      gameID,
		ProposerID:  proposerID,
		ResponderID: responderID,
		Offer:       offer,
		Request:     request,
		Status:      entity.TradePending,
		CreatedAt:   time.Now().UTC(),
	}

	lifetime := that.engine.Settings().TradeLifetime

	_, _, err := that.gameplay.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		if proposerID == responderID {
			return nil, apperror.ErrNotTradeParticipant
		}
		if err := that.engine.ValidateTrade(game, trade); err != nil {
			return nil, err
		}
		if err := that.tradeRepo.Save(ctx, trade, lifetime); err != nil {
			return nil, fmt.Errorf("failed to save trade: %w", err)
		}

		event := entity.NewEvent(entity.EventTradeOffer)
		event.TradeID = trade.ID
		event.Trade = trade
		event.PlayerID = proposerID
		game.AppendEvent(event)
		return []entity.Event{event}, nil
	})
	if err != nil {
		return nil, err
	}

	job := scheduler.Job{Kind: scheduler.JobTradeExpired, GameID: gameID, TradeID: trade.ID}
	if err = that.sched.Schedule(ctx, job, lifetime); err != nil {
		that.logger.Error("failed to schedule trade expiry", "error", err, "trade_id", trade.ID)
	}

	if that.notifier != nil {
		that.notifier.OnTradeOffered(gameID, trade)
	}

	return trade, nil
}

// AcceptTrade re-validates against the state as it is now, not as it was at
// proposal time, and applies both sides atomically.
func (that *tradeService) AcceptTrade(ctx context.Context, gameID, tradeID, playerID string) (*entity.Game, error) {
	game, _, err := that.gameplay.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		trade, err := that.tradeRepo.GetByID(ctx, gameID, tradeID)
		if err != nil {
			return nil, err
		}
		if trade.ResponderID != playerID {
			return nil, apperror.ErrNotTradeParticipant
		}

		events, err := that.engine.ApplyTrade(game, trade)
		if err != nil {
			return nil, err
		}

		if err = that.tradeRepo.DeleteByID(ctx, gameID, tradeID); err != nil {
			return nil, fmt.Errorf("failed to delete trade: %w", err)
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	job := scheduler.Job{Kind: scheduler.JobTradeExpired, GameID: gameID, TradeID: tradeID}
	if err = that.sched.Cancel(ctx, job); err != nil {
		that.logger.Error("failed to cancel trade expiry", "error", err, "trade_id", tradeID)
	}

	return game, nil
}

func (that *tradeService) DeclineTrade(ctx context.Context, gameID, tradeID, playerID string) error {
	return that.closeTrade(ctx, gameID, tradeID, playerID, entity.TradeDeclined)
}

func (that *tradeService) CancelTrade(ctx context.Context, gameID, tradeID, playerID string) error {
	return that.closeTrade(ctx, gameID, tradeID, playerID, entity.TradeCancelled)
}

// closeTrade tears a pending trade down without applying it: decline by the
// responder, cancel by the proposer, or expiry by the timer.
func (that *tradeService) closeTrade(ctx context.Context, gameID, tradeID, actorID, status string) error {
	var closed *entity.Trade

	_, _, err := that.gameplay.mutate(ctx, gameID, func(game *entity.Game) ([]entity.Event, error) {
		trade, err := that.tradeRepo.GetByID(ctx, gameID, tradeID)
		if err != nil {
			return nil, err
		}

		switch status {
		case entity.TradeDeclined:
			if trade.ResponderID != actorID {
				return nil, apperror.ErrNotTradeParticipant
			}
		case entity.TradeCancelled:
			if trade.ProposerID != actorID {
				return nil, apperror.ErrNotTradeParticipant
			}
		}

		if err = that.tradeRepo.DeleteByID(ctx, gameID, tradeID); err != nil {
			return nil, fmt.Errorf("failed to delete trade: %w", err)
		}

		trade.Status = status
		closed = trade

		eventType := entity.EventTradeDeclined
		if status != entity.TradeDeclined {
			eventType = entity.EventTradeCancelled
		}

		event := entity.NewEvent(eventType)
		event.TradeID = tradeID
		event.Trade = trade
		event.By = actorID
		event.Expired = status == entity.TradeExpired
		game.AppendEvent(event)
		return []entity.Event{event}, nil
	})
	if err != nil {
		return err
	}

	job := scheduler.Job{Kind: scheduler.JobTradeExpired, GameID: gameID, TradeID: tradeID}
	if err = that.sched.Cancel(ctx, job); err != nil {
		that.logger.Error("failed to cancel trade expiry", "error", err, "trade_id", tradeID)
	}

	if status == entity.TradeDeclined && that.notifier != nil && closed != nil {
		that.notifier.OnTradeDeclined(gameID, closed)
	}

	return nil
}

// HandleTradeExpired fires when a trade outlived its ttl without an answer;
// it goes out as an auto-cancellation, not a rejection by the responder. The
// record may already be gone; that just means someone answered first.
func (that *tradeService) HandleTradeExpired(ctx context.Context, job scheduler.Job) {
	err := that.closeTrade(ctx, job.GameID, job.TradeID, "", entity.TradeExpired)
	if err != nil && !errors.Is(err, apperror.ErrTradeNotFound) && !errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Error("failed to expire trade", "error", err, "trade_id", job.TradeID)
	}
}
