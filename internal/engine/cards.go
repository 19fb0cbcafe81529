package engine

import (
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// maxCardChain bounds how many card draws a single landing may chain through
// move effects onto another card tile.
const maxCardChain = 2

// drawAndApply pops the next card from a deck and applies its effect to the
// player. diceTotal is threaded through for utility rent on move effects.
func (that *Engine) drawAndApply(game *entity.Game, player *entity.Player, deck string, diceTotal, depth int) []entity.Event {
	cardID := game.DrawFrom(deck, that.rng)
	card := board.CardByID(deck, cardID)
	if card == nil {
		return nil
	}

	drawn := entity.NewEvent(entity.EventDrawCard)
	drawn.PlayerID = player.ID
	drawn.DeckType = deck
	drawn.Description = card.Description
	game.AppendEvent(drawn)
	events := []entity.Event{drawn}

	switch card.Type {
	case board.CardMoney:
		events = append(events, that.applyMoneyCard(game, player, card)...)
	case board.CardMove:
		events = append(events, that.applyMoveCard(game, player, card, diceTotal, depth)...)
	case board.CardGetOutOfJailFree:
		player.GetOutOfJailFreeCards++

		event := entity.NewEvent(entity.EventCardJailFree)
		event.PlayerID = player.ID
		game.AppendEvent(event)
		events = append(events, event)
	case board.CardGoToJail:
		sendToJail(player)

		event := entity.NewEvent(entity.EventCardGoToJail)
		event.PlayerID = player.ID
		game.AppendEvent(event)
		events = append(events, event)

		if !player.IsBot {
			events = append(events, that.advanceTurn(game, player.ID)...)
		}
	case board.CardRepairs:
		events = append(events, that.applyRepairsCard(game, player, card)...)
	}

	return events
}

// applyMoneyCard credits or debits the player. With the all-players flag the
// amount moves pairwise between the player and every other non-bankrupt
// player, computed once up front.
func (that *Engine) applyMoneyCard(game *entity.Game, player *entity.Player, card *board.Card) []entity.Event {
	var events []entity.Event

	if card.AllPlayers {
		others := 0
		for _, other := range game.Players {
			if other.ID == player.ID || other.Status == entity.PlayerBankrupt {
				continue
			}
			other.Money -= card.Amount
			others++
		}
		player.Money += card.Amount * others

		event := entity.NewEvent(entity.EventCardMoneyEffect)
		event.PlayerID = player.ID
		event.Amount = card.Amount * others
		event.EachAmount = card.Amount
		game.AppendEvent(event)
		events = append(events, event)

		// a bot drained below zero by the transfer sells off immediately
		for _, other := range game.Players {
			if other.ID != player.ID && other.IsBot && other.HasDebt() {
				events = append(events, that.resolveBotDebt(game, other)...)
			}
		}
	} else {
		player.Money += card.Amount

		event := entity.NewEvent(entity.EventCardMoneyEffect)
		event.PlayerID = player.ID
		event.Amount = card.Amount
		game.AppendEvent(event)
		events = append(events, event)
	}

	if player.IsBot && player.HasDebt() {
		events = append(events, that.resolveBotDebt(game, player)...)
	}
	return events
}

// applyMoveCard relocates the player and re-resolves the landing on the new
// tile, including nested draws while under the chain bound.
func (that *Engine) applyMoveCard(game *entity.Game, player *entity.Player, card *board.Card, diceTotal, depth int) []entity.Event {
	oldPos := player.Position

	if card.Destination > 0 {
		player.Position = card.Destination
	} else {
		player.Position = ((player.Position-1+card.Spaces)%board.Size+board.Size)%board.Size + 1
	}

	event := entity.NewEvent(entity.EventCardMoveEffect)
	event.PlayerID = player.ID
	event.Position = player.Position
	game.AppendEvent(event)
	events := []entity.Event{event}

	passedGo := card.CollectGo && (player.Position < oldPos || player.Position == board.StartPos)
	if passedGo {
		events = append(events, that.awardPassGo(game, player)...)
	}

	if depth < maxCardChain {
		events = append(events, that.resolveLanding(game, player, diceTotal, depth+1)...)
	}
	return events
}

// applyRepairsCard charges per-house and per-hotel upkeep across everything
// the player has built. Levels one through four are houses, level five a
// hotel.
func (that *Engine) applyRepairsCard(game *entity.Game, player *entity.Player, card *board.Card) []entity.Event {
	cost := 0
	for _, tileID := range player.Properties {
		state := game.PropertyStates[tileID]
		if state == nil {
			continue
		}
		switch {
		case state.Level >= 5:
			cost += card.HotelCost
		case state.Level > 0:
			cost += state.Level * card.HouseCost
		}
	}

	if cost == 0 {
		return nil
	}
	player.Money -= cost

	event := entity.NewEvent(entity.EventCardRepairs)
	event.PlayerID = player.ID
	event.Amount = cost
	game.AppendEvent(event)
	events := []entity.Event{event}

	if player.IsBot && player.HasDebt() {
		events = append(events, that.resolveBotDebt(game, player)...)
	}
	return events
}
