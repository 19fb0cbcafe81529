package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/engine"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/himalgames/monopoly-backend/internal/repository"
	"github.com/himalgames/monopoly-backend/internal/scheduler"
	"github.com/himalgames/monopoly-backend/internal/service"
	"github.com/himalgames/monopoly-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	games     service.GameService
	gameplay  service.GameplayService
	trades    service.TradeService
	gameRepo  repository.GameRepository
	tradeRepo repository.TradeRepository
	publisher *recordingPublisher
}

// recordingPublisher captures the fan-out so tests can assert what clients
// would have been told.
type recordingPublisher struct {
	mu         sync.Mutex
	broadcasts [][]entity.Event
	notices    []entity.Event
}

func (that *recordingPublisher) BroadcastGame(_ string, _ *entity.Game, events []entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.broadcasts = append(that.broadcasts, events)
}

func (that *recordingPublisher) NotifyPlayer(_, _ string, event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.notices = append(that.notices, event)
}

func (that *recordingPublisher) noticeCount(eventType entity.EventType) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	count := 0
	for _, notice := range that.notices {
		if notice.Type == eventType {
			count++
		}
	}
	return count
}

func (that *recordingPublisher) findBroadcast(eventType entity.EventType) (entity.Event, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, events := range that.broadcasts {
		for _, event := range events {
			if event.Type == eventType {
				return event, true
			}
		}
	}
	return entity.Event{}, false
}

func newServices(s *suite.Suite) *services {
	settings := board.DefaultSettings()

	gameRepo := repository.NewGameRepository(s.Storage)
	tradeRepo := repository.NewTradeRepository(s.Storage)
	statsRepo := repository.NewStatsRepository(s.Storage)
	botRepo := repository.NewBotRepository(s.Storage)
	locker := repository.NewGameLocker(s.Storage)
	sched := scheduler.New(s.Logger, s.Storage)
	gameEngine := engine.New(settings)

	publisher := &recordingPublisher{}
	gameplay := service.NewGameplayService(
		s.Logger, gameEngine,
		gameRepo, tradeRepo, statsRepo, botRepo,
		locker, sched, publisher,
	)
	trades := service.NewTradeService(s.Logger, gameEngine, gameplay, tradeRepo, sched)
	games := service.NewGameService(s.Logger, settings, gameRepo, botRepo, locker, gameplay, nil)

	return &services{
		games:     games,
		gameplay:  gameplay,
		trades:    trades,
		gameRepo:  gameRepo,
		tradeRepo: tradeRepo,
		publisher: publisher,
	}
}

func TestGameLifecycle(t *testing.T) {
	ctx, s := suite.New(t)
	svc := newServices(s)

	t.Run("create, join, add a bot and start", func(t *testing.T) {
		// Given: a fresh lobby with a host
		game, host, err := svc.games.CreateGame(ctx, "Alice", "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, host.ID, game.Host)
		assert.Equal(t, entity.StatusLobby, game.Status)

		// When: a second human and a bot join
		game, guest, err := svc.games.JoinGame(ctx, game.ID, "Bob", "user-2")
		require.NoError(t, err)
		assert.NotEqual(t, host.Color, guest.Color)

		game, bot, err := svc.games.AddBot(ctx, game.ID, board.DifficultyEasy)
		require.NoError(t, err)
		assert.True(t, bot.IsBot)
		require.Len(t, game.Order, 3)

		// Then: the host starts the game and the shuffled order opens play
		game, err = svc.games.StartGame(ctx, game.ID, host.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, game.Status)
		assert.ElementsMatch(t, []string{host.ID, guest.ID, bot.ID}, game.Order)
		assert.Equal(t, game.Order[0], game.Turn)
		assert.Equal(t, 1, game.TurnNumber)
	})

	t.Run("only the host can start", func(t *testing.T) {
		game, _, err := svc.games.CreateGame(ctx, "Alice", "user-1", false)
		require.NoError(t, err)
		_, guest, err := svc.games.JoinGame(ctx, game.ID, "Bob", "user-2")
		require.NoError(t, err)

		_, err = svc.games.StartGame(ctx, game.ID, guest.ID)

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("a full lobby rejects joiners", func(t *testing.T) {
		game, _, err := svc.games.CreateGame(ctx, "Alice", "user-1", false)
		require.NoError(t, err)
		for _, name := range []string{"Bob", "Carol", "Dave"} {
			_, _, err = svc.games.JoinGame(ctx, game.ID, name, "")
			require.NoError(t, err)
		}

		_, _, err = svc.games.JoinGame(ctx, game.ID, "Eve", "")

		assert.ErrorIs(t, err, apperror.ErrGameFull)
	})

	t.Run("leaving a lobby promotes a new host", func(t *testing.T) {
		game, host, err := svc.games.CreateGame(ctx, "Alice", "user-1", false)
		require.NoError(t, err)
		_, guest, err := svc.games.JoinGame(ctx, game.ID, "Bob", "user-2")
		require.NoError(t, err)

		game, err = svc.games.LeaveGame(ctx, game.ID, host.ID)
		require.NoError(t, err)

		assert.Equal(t, guest.ID, game.Host)
		assert.NotContains(t, game.Order, host.ID)
	})
}

func TestMatchmaking(t *testing.T) {
	ctx, s := suite.New(t)
	svc := newServices(s)

	// Given: an open lobby, a full lobby and a started game
	open, _, err := svc.games.CreateGame(ctx, "Alice", "user-1", false)
	require.NoError(t, err)

	full, fullHost, err := svc.games.CreateGame(ctx, "Bob", "user-2", false)
	require.NoError(t, err)
	for _, name := range []string{"Carol", "Dave", "Eve"} {
		_, _, err = svc.games.JoinGame(ctx, full.ID, name, "")
		require.NoError(t, err)
	}

	started, startedHost, err := svc.games.CreateGame(ctx, "Frank", "user-3", false)
	require.NoError(t, err)
	_, _, err = svc.games.AddBot(ctx, started.ID, board.DifficultyEasy)
	require.NoError(t, err)
	_, err = svc.games.StartGame(ctx, started.ID, startedHost.ID)
	require.NoError(t, err)

	t.Run("only lobbies with a free seat are listed", func(t *testing.T) {
		games, err := svc.games.ListOpenGames(ctx)
		require.NoError(t, err)

		require.Len(t, games, 1)
		assert.Equal(t, open.ID, games[0].ID)
	})

	t.Run("a player's game is found by player id or user id", func(t *testing.T) {
		found, err := svc.games.FindGameByPlayer(ctx, fullHost.ID)
		require.NoError(t, err)
		assert.Equal(t, full.ID, found.ID)

		found, err = svc.games.FindGameByPlayer(ctx, "user-3")
		require.NoError(t, err)
		assert.Equal(t, started.ID, found.ID)

		_, err = svc.games.FindGameByPlayer(ctx, "nobody")
		assert.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

// seedActiveGame persists a two-player game already in play, bypassing the
// lobby, so tests can stage exact positions and phases.
func seedActiveGame(ctx context.Context, t *testing.T, repo repository.GameRepository) *entity.Game {
	t.Helper()

	game := entity.NewGame("game-staged")
	for _, id := range []string{"p1", "p2"} {
		game.Players[id] = entity.NewPlayer(id, id, false, 15000)
		game.Order = append(game.Order, id)
	}
	game.Host = "p1"
	game.Status = entity.StatusActive
	game.Turn = "p1"
	game.TurnNumber = 1
	game.Phase = entity.PhaseAfterRoll
	game.IsSimulation = true // keep turn timers out of the way

	require.NoError(t, repo.CreateOrUpdate(ctx, game))
	return game
}

func TestGameplayService(t *testing.T) {
	ctx, s := suite.New(t)
	svc := newServices(s)

	t.Run("a purchase is applied and persisted", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.Players["p1"].Position = 2
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))

		_, _, err := svc.gameplay.BuyProperty(ctx, game.ID, "p1", 2)
		require.NoError(t, err)

		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 15000-1500, loaded.Players["p1"].Money)
		assert.Equal(t, "p1", loaded.PropertyStates[2].Owner)
	})

	t.Run("a rejected mutation persists nothing", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)

		_, _, err := svc.gameplay.BuyProperty(ctx, game.ID, "p2", 2)
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)

		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 15000, loaded.Players["p2"].Money)
		assert.Nil(t, loaded.PropertyStates[2])
	})

	t.Run("unsettled debt blocks the turn but the state survives", func(t *testing.T) {
		// Given: the turn holder owes more than they have
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.Players["p1"].Money = 0
		game.Players["p1"].DebtAmount = 400
		game.Players["p1"].DebtToPlayerID = "p2"
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))

		// When: they try to end the turn anyway
		_, _, err := svc.gameplay.EndTurn(ctx, game.ID, "p1")

		// Then: the error comes back and the imminent-bankruptcy phase is
		// durable
		assert.ErrorIs(t, err, apperror.ErrUnsettledDebt)
		loaded, loadErr := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, loadErr)
		assert.Equal(t, entity.PhaseBankruptcyImminent, loaded.Phase)
		assert.Equal(t, "p1", loaded.Turn)
	})

	t.Run("ending a turn broadcasts the handoff", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)

		_, events, err := svc.gameplay.EndTurn(ctx, game.ID, "p1")

		require.NoError(t, err)
		require.NotEmpty(t, events)
		loaded, loadErr := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, loadErr)
		assert.Equal(t, "p2", loaded.Turn)
		handoff, ok := svc.publisher.findBroadcast(entity.EventTurnChanged)
		require.True(t, ok)
		assert.Equal(t, "p2", handoff.PlayerID)
	})

	t.Run("turn expiry reminds the absent player but never removes them", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.PropertyStates[2] = &entity.PropertyState{Owner: "p1"}
		game.Players["p1"].Properties = []int{2}
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))
		before := svc.publisher.noticeCount(entity.EventRemindTurn)

		// however many times the timer fires, the player only gets nagged
		for attempt := 1; attempt <= 3; attempt++ {
			svc.gameplay.HandleTurnExpired(ctx, scheduler.Job{
				Kind:     scheduler.JobTurnExpired,
				GameID:   game.ID,
				PlayerID: "p1",
				Attempt:  attempt,
			})
		}

		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "p1", loaded.Turn)
		assert.Contains(t, loaded.Order, "p1")
		assert.Equal(t, entity.PlayerActive, loaded.Players["p1"].Status)
		assert.NotEmpty(t, loaded.Players["p1"].Properties)
		assert.Equal(t, before+3, svc.publisher.noticeCount(entity.EventRemindTurn))
	})

	t.Run("a proposed trade survives to acceptance", func(t *testing.T) {
		// Given: p1 owns a tile and offers it to p2 for cash
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.PropertyStates[2] = &entity.PropertyState{Owner: "p1"}
		game.Players["p1"].Properties = []int{2}
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))

		trade, err := svc.trades.ProposeTrade(ctx, game.ID, "p1", "p2",
			entity.TradeOffer{Properties: []int{2}},
			entity.TradeOffer{Money: 2000},
		)
		require.NoError(t, err)

		// When: the responder accepts
		_, err = svc.trades.AcceptTrade(ctx, game.ID, trade.ID, "p2")
		require.NoError(t, err)

		// Then: holdings moved and the trade record is gone
		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "p2", loaded.PropertyStates[2].Owner)
		assert.Equal(t, 15000+2000, loaded.Players["p1"].Money)
		assert.Equal(t, 15000-2000, loaded.Players["p2"].Money)

		_, err = svc.tradeRepo.GetByID(ctx, game.ID, trade.ID)
		assert.ErrorIs(t, err, apperror.ErrTradeNotFound)
	})

	t.Run("only the responder may accept", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.PropertyStates[2] = &entity.PropertyState{Owner: "p1"}
		game.Players["p1"].Properties = []int{2}
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))

		trade, err := svc.trades.ProposeTrade(ctx, game.ID, "p1", "p2",
			entity.TradeOffer{Properties: []int{2}}, entity.TradeOffer{Money: 100})
		require.NoError(t, err)

		_, err = svc.trades.AcceptTrade(ctx, game.ID, trade.ID, "p1")

		assert.ErrorIs(t, err, apperror.ErrNotTradeParticipant)
	})

	t.Run("declining removes the trade without applying it", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.PropertyStates[2] = &entity.PropertyState{Owner: "p1"}
		game.Players["p1"].Properties = []int{2}
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))

		trade, err := svc.trades.ProposeTrade(ctx, game.ID, "p1", "p2",
			entity.TradeOffer{Properties: []int{2}}, entity.TradeOffer{Money: 100})
		require.NoError(t, err)

		require.NoError(t, svc.trades.DeclineTrade(ctx, game.ID, trade.ID, "p2"))

		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "p1", loaded.PropertyStates[2].Owner)
		_, err = svc.tradeRepo.GetByID(ctx, game.ID, trade.ID)
		assert.ErrorIs(t, err, apperror.ErrTradeNotFound)
	})

	t.Run("an expired trade closes as an auto-cancellation", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)
		game.PropertyStates[2] = &entity.PropertyState{Owner: "p1"}
		game.Players["p1"].Properties = []int{2}
		require.NoError(t, svc.gameRepo.CreateOrUpdate(ctx, game))

		trade, err := svc.trades.ProposeTrade(ctx, game.ID, "p1", "p2",
			entity.TradeOffer{Properties: []int{2}}, entity.TradeOffer{Money: 100})
		require.NoError(t, err)

		svc.trades.HandleTradeExpired(ctx, scheduler.Job{
			Kind:    scheduler.JobTradeExpired,
			GameID:  game.ID,
			TradeID: trade.ID,
		})

		// nothing applied, the record is gone, and the close went out as a
		// timeout rather than a rejection
		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, "p1", loaded.PropertyStates[2].Owner)
		_, err = svc.tradeRepo.GetByID(ctx, game.ID, trade.ID)
		assert.ErrorIs(t, err, apperror.ErrTradeNotFound)

		closed, ok := svc.publisher.findBroadcast(entity.EventTradeCancelled)
		require.True(t, ok)
		assert.True(t, closed.Expired)
		assert.Equal(t, entity.TradeExpired, closed.Trade.Status)
	})

	t.Run("a stale turn job is a no-op", func(t *testing.T) {
		game := seedActiveGame(ctx, t, svc.gameRepo)

		// the job names a player who no longer holds the turn
		svc.gameplay.HandleTurnExpired(ctx, scheduler.Job{
			Kind:     scheduler.JobTurnExpired,
			GameID:   game.ID,
			PlayerID: "p2",
			Attempt:  2,
		})

		loaded, err := svc.gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerActive, loaded.Players["p2"].Status)
		assert.Contains(t, loaded.Order, "p2")
	})
}
