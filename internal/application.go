package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/himalgames/monopoly-backend/internal/config"
	"github.com/himalgames/monopoly-backend/internal/engine"
	"github.com/himalgames/monopoly-backend/internal/repository"
	"github.com/himalgames/monopoly-backend/internal/repository/storage"
	"github.com/himalgames/monopoly-backend/internal/scheduler"
	"github.com/himalgames/monopoly-backend/internal/service"
	"github.com/himalgames/monopoly-backend/transport/rest"
	"github.com/himalgames/monopoly-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	tradeRepo := repository.NewTradeRepository(redisStorage.Connection)
	statsRepo := repository.NewStatsRepository(redisStorage.Connection)
	botRepo := repository.NewBotRepository(redisStorage.Connection)
	locker := repository.NewGameLocker(redisStorage.Connection)

	settings := conf.Game.Settings()
	gameEngine := engine.New(settings)
	sched := scheduler.New(logger, redisStorage.Connection)
	hub := websocket.NewHub(logger)

	gameplayService := service.NewGameplayService(logger, gameEngine, gameRepo, tradeRepo, statsRepo, botRepo, locker, sched, hub)
	tradeService := service.NewTradeService(logger, gameEngine, gameplayService, tradeRepo, sched)
	botService := service.NewBotService(logger, gameEngine, gameplayService, tradeService, gameRepo, botRepo, tradeRepo)
	gameplayService.SetBotNotifier(botService)
	tradeService.SetTradeNotifier(botService)

	gameService := service.NewGameService(logger, settings, gameRepo, botRepo, locker, gameplayService, botService)
	statsService := service.NewStatsService(logger, gameRepo, statsRepo)

	sched.Handle(scheduler.JobTurnExpired, gameplayService.HandleTurnExpired)
	sched.Handle(scheduler.JobTradeExpired, tradeService.HandleTradeExpired)
	sched.Handle(scheduler.JobCalculateStats, statsService.HandleCalculateStats)
	go sched.Start(ctx)

	if err = botService.LoadActiveGames(ctx); err != nil {
		log.Error("could not restore bot registry", "error", err)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameService)
		if httpErr := restServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, gameService, gameplayService, tradeService)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
