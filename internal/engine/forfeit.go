package engine

import (
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// ForfeitPlayer removes a player from a live game: everything they hold goes
// back to the bank, they leave the turn order, and the turn moves on if it
// was theirs. Used when a player quits or times out, so unlike bankruptcy
// there is never a creditor.
func (that *Engine) ForfeitPlayer(game *entity.Game, playerID string) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	if player.Status == entity.PlayerBankrupt || player.Status == entity.PlayerLeft {
		return nil, nil
	}

	for _, tileID := range player.Properties {
		delete(game.PropertyStates, tileID)
	}
	player.Properties = []int{}
	player.Money = 0
	player.GetOutOfJailFreeCards = 0
	player.DebtToPlayerID = ""
	player.DebtAmount = 0
	player.Status = entity.PlayerLeft
	game.RecountAssets(player)

	hadTurn := game.Turn == playerID
	game.RemoveFromOrder(playerID)

	event := entity.NewEvent(entity.EventPlayerLeft)
	event.PlayerID = playerID
	game.AppendEvent(event)
	events := []entity.Event{event}

	if over, ended := that.checkGameOver(game); ended {
		return append(events, over...), nil
	}
	if hadTurn {
		events = append(events, that.advanceTurn(game, playerID)...)
	}
	return events, nil
}
