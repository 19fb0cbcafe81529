// Package engine implements the game rules: roll resolution, the transaction
// operations and the debt/bankruptcy resolver. Every function mutates an
// already-loaded game state and returns the domain events it appended; none
// of them touches storage or locks. Callers (the service layer) acquire the
// per-game lock, load the state, run engine calls and persist the result, so
// nested rule helpers can never deadlock on re-entry.
package engine

import (
	"math/rand"
	"time"

	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

type Engine struct {
	settings board.Settings
	rng      *rand.Rand

	// dice is swappable so tests can script exact rolls
	dice func() (int, int)
}

func New(settings board.Settings) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // game dice, not crypto

	engine := &Engine{
		settings: settings,
		rng:      rng,
	}
	engine.dice = func() (int, int) {
		return rng.Intn(6) + 1, rng.Intn(6) + 1
	}
	return engine
}

func (that *Engine) Settings() board.Settings {
	return that.settings
}

func (that *Engine) rollDice() (int, int) {
	return that.dice()
}

// sendToJail relocates a player onto the jail tile.
func sendToJail(player *entity.Player) {
	player.Position = board.JailPos
	player.InJail = true
	player.JailTurns = 0
}

// advanceTurn hands the turn to the next non-bankrupt player and resets the
// phase, announcing the handoff. When nobody remains the phase flips to game
// over.
func (that *Engine) advanceTurn(game *entity.Game, fromID string) []entity.Event {
	next := game.NextActivePlayer(fromID)
	if next == "" {
		return that.finishGame(game)
	}

	game.Turn = next
	game.Phase = entity.PhaseBeforeRoll
	game.TurnNumber++

	event := entity.NewEvent(entity.EventTurnChanged)
	event.PlayerID = next
	game.AppendEvent(event)
	return []entity.Event{event}
}

// finishGame marks the game over and emits the final event naming the sole
// remaining player in the order as winner.
func (that *Engine) finishGame(game *entity.Game) []entity.Event {
	game.Phase = entity.PhaseGameOver
	game.Status = entity.StatusEnd

	event := entity.NewEvent(entity.EventGameOver)
	if len(game.Order) > 0 {
		event.WinnerID = game.Order[0]
	}
	game.AppendEvent(event)
	return []entity.Event{event}
}

// checkGameOver ends the game when one or zero players remain in the order.
func (that *Engine) checkGameOver(game *entity.Game) ([]entity.Event, bool) {
	if len(game.Order) > 1 {
		return nil, false
	}
	return that.finishGame(game), true
}
