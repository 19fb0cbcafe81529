package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/himalgames/monopoly-backend/internal/repository"
)

var playerColors = []string{"red", "blue", "green", "yellow"}

var botNames = []string{"Aarav", "Bipana", "Chiran", "Dolma", "Eshan", "Gita", "Hari", "Kiran"}

type GameService interface {
	CreateGame(ctx context.Context, hostName, userID string, isSimulation bool) (*entity.Game, *entity.Player, error)
	JoinGame(ctx context.Context, gameID, name, userID string) (*entity.Game, *entity.Player, error)
	AddBot(ctx context.Context, gameID, difficulty string) (*entity.Game, *entity.Player, error)
	StartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	UpdatePresence(ctx context.Context, gameID, playerID, socketID string, connected bool) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	ListOpenGames(ctx context.Context) ([]*entity.Game, error)
	FindGameByPlayer(ctx context.Context, playerID string) (*entity.Game, error)
}

// BotRegistrar is how the lifecycle service hands new bots to the supervisor
// and tears games down; the bot service implements it.
type BotRegistrar interface {
	Register(gameID string, meta entity.BotMetadata)
	ReleaseGame(gameID string)
}

type gameService struct {
	logger *slog.Logger

	settings board.Settings
	gameRepo repository.GameRepository
	botRepo  repository.BotRepository
	locker   repository.GameLocker

	gameplay  GameplayService
	registrar BotRegistrar
}

func NewGameService(
	logger *slog.Logger,
	settings board.Settings,
	gameRepo repository.GameRepository,
	botRepo repository.BotRepository,
	locker repository.GameLocker,
	gameplay GameplayService,
	registrar BotRegistrar,
) GameService {
	return &gameService{
		logger:    logger.With("component", "game_service"),
		settings:  settings,
		gameRepo:  gameRepo,
		botRepo:   botRepo,
		locker:    locker,
		gameplay:  gameplay,
		registrar: registrar,
	}
}

func (that *gameService) CreateGame(ctx context.Context, hostName, userID string, isSimulation bool) (*entity.Game, *entity.Player, error) {
	game := entity.NewGame(uuid.NewString())
	game.IsSimulation = isSimulation

	player := entity.NewPlayer(uuid.NewString(), hostName, false, that.settings.InitialPlayerMoney)
	player.UserID = userID
	player.Color = playerColors[0]

	game.Players[player.ID] = player
	game.Order = append(game.Order, player.ID)
	game.Host = player.ID

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to create game: %w", err)
	}

	return game, player, nil
}

func (that *gameService) JoinGame(ctx context.Context, gameID, name, userID string) (*entity.Game, *entity.Player, error) {
	release, err := that.locker.Acquire(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock game: %w", err)
	}
	defer release()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.addPlayer(game, name, false)
	if err != nil {
		return nil, nil, err
	}
	player.UserID = userID

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, player, nil
}

func (that *gameService) AddBot(ctx context.Context, gameID, difficulty string) (*entity.Game, *entity.Player, error) {
	release, err := that.locker.Acquire(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock game: %w", err)
	}
	defer release()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	name, err := that.pickBotName(game)
	if err != nil {
		return nil, nil, err
	}

	player, err := that.addPlayer(game, name, true)
	if err != nil {
		return nil, nil, err
	}

	if difficulty == "" {
		difficulty = that.settings.BotDifficulty
	}
	meta := entity.BotMetadata{
		PlayerID:   player.ID,
		Name:       player.Name,
		Difficulty: difficulty,
	}
	if err = that.botRepo.Save(ctx, gameID, meta); err != nil {
		return nil, nil, fmt.Errorf("failed to save bot metadata: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	if that.registrar != nil {
		that.registrar.Register(gameID, meta)
	}

	return game, player, nil
}

func (that *gameService) addPlayer(game *entity.Game, name string, isBot bool) (*entity.Player, error) {
	if !game.IsLobby() {
		return nil, apperror.ErrGameStarted
	}
	if len(game.Players) >= that.settings.MaxPlayers {
		return nil, apperror.ErrGameFull
	}

	player := entity.NewPlayer(uuid.NewString(), name, isBot, that.settings.InitialPlayerMoney)
	player.Color = playerColors[len(game.Players)%len(playerColors)]

	game.Players[player.ID] = player
	game.Order = append(game.Order, player.ID)

	event := entity.NewEvent(entity.EventPlayerJoined)
	event.PlayerID = player.ID
	game.AppendEvent(event)

	return player, nil
}

func (that *gameService) pickBotName(game *entity.Game) (string, error) {
	taken := make(map[string]bool, len(game.Players))
	for _, player := range game.Players {
		taken[player.Name] = true
	}
	for _, name := range botNames {
		if !taken[name] {
			return name, nil
		}
	}
	return "", apperror.ErrNoAvailableNames
}

// StartGame freezes the lobby and kicks off the first turn through the
// gameplay service, which owns timers, broadcast and the bot dispatch.
func (that *gameService) StartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameplay.Start(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return game, nil
}

// LeaveGame removes a player. In a lobby they simply disappear; in a live
// game their assets go back to the bank and the turn moves on.
func (that *gameService) LeaveGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameplay.Forfeit(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to leave game: %w", err)
	}
	return game, nil
}

func (that *gameService) UpdatePresence(ctx context.Context, gameID, playerID, socketID string, connected bool) error {
	release, err := that.locker.Acquire(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to lock game: %w", err)
	}
	defer release()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game by id: %w", err)
	}

	player, ok := game.Players[playerID]
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	player.SocketID = socketID
	player.IsConnected = connected
	player.LastActive = time.Now().UTC()
	if !connected && player.Status == entity.PlayerActive {
		player.Status = entity.PlayerDisconnected
	}
	if connected && player.Status == entity.PlayerDisconnected {
		player.Status = entity.PlayerActive
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}
	return game, nil
}

// ListOpenGames returns lobbies that still have a free seat. Read-only, so no
// per-game lock is taken; a stale listing just means a failed join later.
func (that *gameService) ListOpenGames(ctx context.Context) ([]*entity.Game, error) {
	ids, err := that.gameRepo.ActiveGameIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	var open []*entity.Game
	for _, id := range ids {
		game, err := that.gameRepo.GetByID(ctx, id)
		if err != nil {
			that.logger.Warn("skipping unreadable game", "game_id", id, "error", err)
			continue
		}
		if game.IsLobby() && len(game.Players) < that.settings.MaxPlayers {
			open = append(open, game)
		}
	}

	return open, nil
}

// FindGameByPlayer locates the unfinished game a player belongs to, matched by
// player ID or by the user ID they joined with.
func (that *gameService) FindGameByPlayer(ctx context.Context, playerID string) (*entity.Game, error) {
	ids, err := that.gameRepo.ActiveGameIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	for _, id := range ids {
		game, err := that.gameRepo.GetByID(ctx, id)
		if err != nil {
			that.logger.Warn("skipping unreadable game", "game_id", id, "error", err)
			continue
		}
		if game.IsGameOver() {
			continue
		}
		if _, ok := game.Players[playerID]; ok {
			return game, nil
		}
		for _, player := range game.Players {
			if player.UserID != "" && player.UserID == playerID {
				return game, nil
			}
		}
	}

	return nil, apperror.ErrGameNotFound
}
