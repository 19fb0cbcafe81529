package engine

import (
	"sort"

	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// SettleDebt pays down as much of a player's recorded debt as their current
// balance allows. It is idempotent: with no debt or no cash it does nothing
// and emits nothing.
func (that *Engine) SettleDebt(game *entity.Game, player *entity.Player) []entity.Event {
	if player.DebtAmount <= 0 || player.Money <= 0 {
		return nil
	}

	pay := player.Money
	if pay > player.DebtAmount {
		pay = player.DebtAmount
	}

	player.Money -= pay
	player.DebtAmount -= pay
	if creditor, ok := game.Players[player.DebtToPlayerID]; ok {
		creditor.Money += pay
	}

	event := entity.NewEvent(entity.EventDebtSettled)
	event.PlayerID = player.ID
	event.CreditorID = player.DebtToPlayerID
	event.AmountPaid = pay
	event.RemainingDebt = player.DebtAmount
	if player.DebtAmount == 0 {
		player.DebtToPlayerID = ""
	}
	game.AppendEvent(event)
	return []entity.Event{event}
}

// Liquidate runs the forced sell-off loop until the player is solvent or a
// full pass finds nothing left to liquidate: one house at a time first, then
// mortgages when enabled, then undeveloped properties cheapest first.
func (that *Engine) Liquidate(game *entity.Game, player *entity.Player) []entity.Event {
	var events []entity.Event

	for player.HasDebt() {
		if tileID, ok := that.developedProperty(game, player); ok {
			sold, err := that.SellHouse(game, player.ID, tileID)
			if err != nil {
				break
			}
			events = append(events, sold...)
			continue
		}

		if that.settings.Mortgage {
			if tileID, ok := that.mortgageableProperty(game, player); ok {
				mortgaged, err := that.MortgageProperty(game, player.ID, tileID)
				if err != nil {
					break
				}
				events = append(events, mortgaged...)
				continue
			}
		}

		if tileID, ok := that.cheapestSellableProperty(game, player); ok {
			sold, err := that.SellPropertyToBank(game, player.ID, tileID)
			if err != nil {
				break
			}
			events = append(events, sold...)
			continue
		}

		break
	}

	return events
}

func (that *Engine) developedProperty(game *entity.Game, player *entity.Player) (int, bool) {
	for _, tileID := range player.Properties {
		if state := game.PropertyStates[tileID]; state != nil && state.Level > 0 {
			return tileID, true
		}
	}
	return 0, false
}

func (that *Engine) mortgageableProperty(game *entity.Game, player *entity.Player) (int, bool) {
	for _, tileID := range player.Properties {
		if state := game.PropertyStates[tileID]; state != nil && state.Level == 0 && !state.Mortgaged {
			return tileID, true
		}
	}
	return 0, false
}

func (that *Engine) cheapestSellableProperty(game *entity.Game, player *entity.Player) (int, bool) {
	var candidates []int
	for _, tileID := range player.Properties {
		state := game.PropertyStates[tileID]
		if state != nil && state.Level == 0 && !state.Mortgaged {
			candidates = append(candidates, tileID)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		return board.TileAt(candidates[i]).Cost < board.TileAt(candidates[j]).Cost
	})
	return candidates[0], true
}

// resolveBotDebt is the forced resolution for an insolvent bot: liquidate,
// settle, and finalize bankruptcy when still short.
func (that *Engine) resolveBotDebt(game *entity.Game, player *entity.Player) []entity.Event {
	events := that.Liquidate(game, player)
	events = append(events, that.SettleDebt(game, player)...)

	if player.HasDebt() {
		events = append(events, that.FinalizeBankruptcy(game, player)...)
	}
	return events
}

// FinalizeBankruptcy transfers everything the player still holds to their
// creditor, or back to the bank when the debt was bankside, then removes the
// player from the turn order. It advances the turn if the bankrupt player
// held it, and ends the game when one or zero players remain.
func (that *Engine) FinalizeBankruptcy(game *entity.Game, player *entity.Player) []entity.Event {
	creditorID := player.DebtToPlayerID
	creditor := game.Players[creditorID]

	if creditor != nil && player.Money > 0 {
		creditor.Money += player.Money
	}
	player.Money = 0

	for _, tileID := range player.Properties {
		state := game.PropertyStates[tileID]
		if state == nil {
			continue
		}
		if creditor != nil {
			state.Owner = creditorID
			state.Level = 0
			state.Mortgaged = false
			creditor.Properties = append(creditor.Properties, tileID)
		} else {
			delete(game.PropertyStates, tileID)
		}
	}
	player.Properties = []int{}

	if creditor != nil {
		creditor.GetOutOfJailFreeCards += player.GetOutOfJailFreeCards
		game.RecountAssets(creditor)
	}
	player.GetOutOfJailFreeCards = 0

	player.Status = entity.PlayerBankrupt
	player.DebtToPlayerID = ""
	player.DebtAmount = 0
	game.RecountAssets(player)

	hadTurn := game.Turn == player.ID
	game.RemoveFromOrder(player.ID)

	event := entity.NewEvent(entity.EventBankruptcy)
	event.PlayerID = player.ID
	event.CreditorID = creditorID
	game.AppendEvent(event)
	events := []entity.Event{event}

	if over, ended := that.checkGameOver(game); ended {
		return append(events, over...)
	}
	if hadTurn {
		events = append(events, that.advanceTurn(game, player.ID)...)
	}
	return events
}
