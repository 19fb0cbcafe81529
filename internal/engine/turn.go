package engine

import (
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// StartGame moves a lobby into play: shuffles the join order into the turn
// order and gives whoever came out first the opening roll.
func (that *Engine) StartGame(game *entity.Game) ([]entity.Event, error) {
	if !game.IsLobby() {
		return nil, apperror.ErrGameStarted
	}
	if len(game.Order) < 2 {
		return nil, apperror.ErrNotEnoughPlayers
	}

	that.rng.Shuffle(len(game.Order), func(i, j int) {
		game.Order[i], game.Order[j] = game.Order[j], game.Order[i]
	})

	game.Status = entity.StatusActive
	game.Phase = entity.PhaseBeforeRoll
	game.Turn = game.Order[0]
	game.TurnNumber = 1

	event := entity.NewEvent(entity.EventGameStarted)
	event.PlayerID = game.Turn
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

// EndTurn closes out the acting player's turn. Outstanding debt blocks a
// human from ending at all (the phase flips to bankruptcy_imminent and an
// error comes back); a bot in the same spot is forced straight through
// liquidation and, failing that, bankruptcy. A double earns the player
// another roll instead of passing the turn on.
func (that *Engine) EndTurn(game *entity.Game, playerID string) ([]entity.Event, error) {
	if game.IsGameOver() {
		return nil, apperror.ErrGameOver
	}
	if game.Turn != playerID {
		return nil, apperror.ErrNotYourTurn
	}
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	events := that.SettleDebt(game, player)

	if player.HasDebt() {
		if !player.IsBot {
			game.Phase = entity.PhaseBankruptcyImminent
			return events, apperror.ErrUnsettledDebt
		}
		events = append(events, that.resolveBotDebt(game, player)...)
	}

	// bankruptcy above may have already handed the turn over or ended
	// the game
	if game.IsGameOver() || game.Turn != playerID {
		return events, nil
	}

	if player.LastRollWasDouble && !player.InJail && player.IsActive() {
		player.LastRollWasDouble = false
		game.Phase = entity.PhaseBeforeRoll

		event := entity.NewEvent(entity.EventAnotherTurn)
		event.PlayerID = playerID
		event.ConsecutiveDoubles = player.ConsecutiveDoubles
		game.AppendEvent(event)
		return append(events, event), nil
	}

	player.LastRollWasDouble = false
	player.ConsecutiveDoubles = 0
	events = append(events, that.advanceTurn(game, playerID)...)
	return events, nil
}
