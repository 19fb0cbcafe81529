package engine

import (
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// resolvePropertyLanding settles what happens on an ownable tile: nothing on
// own property, a purchase/auction prompt on an unowned one, rent otherwise.
func (that *Engine) resolvePropertyLanding(game *entity.Game, player *entity.Player, tile *board.Tile, diceTotal int) []entity.Event {
	ownerID := game.Owner(tile.ID)

	if ownerID == "" {
		event := entity.NewEvent(entity.EventPropertyUnowned)
		event.PlayerID = player.ID
		event.TileID = tile.ID
		event.Cost = tile.Cost
		game.AppendEvent(event)
		return []entity.Event{event}
	}

	if ownerID == player.ID {
		event := entity.NewEvent(entity.EventPropertyOwnedBySelf)
		event.PlayerID = player.ID
		event.TileID = tile.ID
		game.AppendEvent(event)
		return []entity.Event{event}
	}

	owner, ok := game.Players[ownerID]
	if !ok || owner.Status == entity.PlayerBankrupt {
		return nil
	}

	// jailed owners collect no rent
	if owner.InJail {
		return nil
	}

	rent := that.RentFor(game, tile, ownerID, diceTotal)
	if rent <= 0 {
		return nil
	}

	if player.Money >= rent {
		player.Money -= rent
		owner.Money += rent

		event := entity.NewEvent(entity.EventPayRent)
		event.PlayerID = player.ID
		event.OwnerID = ownerID
		event.TileID = tile.ID
		event.Amount = rent
		game.AppendEvent(event)
		return []entity.Event{event}
	}

	// partial payment: hand over everything, record the remainder as debt
	paid := player.Money
	if paid < 0 {
		paid = 0
	}
	player.Money -= paid
	owner.Money += paid
	player.DebtToPlayerID = ownerID
	player.DebtAmount = rent - paid

	event := entity.NewEvent(entity.EventCannotAffordRent)
	event.PlayerID = player.ID
	event.OwnerID = ownerID
	event.TileID = tile.ID
	event.Amount = rent
	event.AmountPaid = paid
	event.RemainingDebt = player.DebtAmount
	game.AppendEvent(event)
	events := []entity.Event{event}

	if player.IsBot {
		events = append(events, that.resolveBotDebt(game, player)...)
	}
	return events
}

// RentFor computes the rent due on a tile for its owner. Mortgaged tiles
// yield nothing. Developed properties use the rent table; an undeveloped
// monopoly doubles base rent; routes scale base rent by routes owned;
// utilities multiply the dice total.
func (that *Engine) RentFor(game *entity.Game, tile *board.Tile, ownerID string, diceTotal int) int {
	state := game.PropertyStates[tile.ID]
	if state == nil || state.Mortgaged {
		return 0
	}

	switch tile.Type {
	case board.TypeProperty:
		if state.Level > 0 && state.Level <= len(tile.Rent) {
			return tile.Rent[state.Level-1]
		}
		if that.settings.DoubleRentOnMonopoly && game.HasMonopoly(ownerID, tile.Group) {
			return tile.BaseRent * 2
		}
		return tile.BaseRent

	case board.TypeRoute:
		return tile.BaseRent * game.OwnedOfType(ownerID, board.TypeRoute)

	case board.TypeUtility:
		if game.OwnedOfType(ownerID, board.TypeUtility) >= 2 {
			return diceTotal * that.settings.UtilityRentMultiplierX2
		}
		return diceTotal * that.settings.UtilityRentMultiplier

	default:
		return 0
	}
}
