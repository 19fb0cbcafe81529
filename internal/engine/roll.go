package engine

import (
	"math"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// Roll resolves a dice roll for the player whose turn it is: jail rolls,
// movement, pass-Go bonuses and the landing consequence, all in one pass.
// A third consecutive double never moves the player; it sends them straight
// to jail and hands the turn over before anything else can happen.
func (that *Engine) Roll(game *entity.Game, playerID string) ([]entity.Event, error) {
	if game.Turn != playerID {
		return nil, apperror.ErrNotYourTurn
	}
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	if game.Phase != entity.PhaseBeforeRoll {
		return nil, apperror.ErrNotYourTurn
	}

	if player.InJail {
		return that.rollForJail(game, player), nil
	}

	d1, d2 := that.rollDice()
	steps := d1 + d2

	if d1 == d2 {
		player.LastRollWasDouble = true
		player.ConsecutiveDoubles++
	} else {
		player.LastRollWasDouble = false
		player.ConsecutiveDoubles = 0
	}

	if player.ConsecutiveDoubles >= 3 {
		player.LastRollWasDouble = false
		player.ConsecutiveDoubles = 0
		sendToJail(player)

		event := entity.NewEvent(entity.EventThreeDoublesToJail)
		event.PlayerID = playerID
		event.D1, event.D2 = d1, d2
		game.AppendEvent(event)

		events := []entity.Event{event}
		events = append(events, that.advanceTurn(game, playerID)...)
		return events, nil
	}

	oldPos := player.Position
	player.Position = (oldPos-1+steps)%board.Size + 1

	rollEvent := entity.NewEvent(entity.EventRoll)
	rollEvent.PlayerID = playerID
	rollEvent.D1, rollEvent.D2 = d1, d2
	rollEvent.Steps = steps
	rollEvent.Position = player.Position
	game.AppendEvent(rollEvent)
	events := []entity.Event{rollEvent}

	if player.Position < oldPos {
		events = append(events, that.awardPassGo(game, player)...)
	}

	game.Phase = entity.PhaseAfterRoll
	events = append(events, that.resolveLanding(game, player, steps, 0)...)
	return events, nil
}

// rollForJail handles a roll made from jail. Doubles release the player in
// place; a third failed attempt forces a get-out-of-jail-free card if held,
// otherwise a bail payment which may overdraw the balance and push the
// player into the debt machinery.
func (that *Engine) rollForJail(game *entity.Game, player *entity.Player) []entity.Event {
	d1, d2 := that.rollDice()

	if d1 == d2 {
		player.InJail = false
		player.JailTurns = 0

		event := entity.NewEvent(entity.EventRolledDoublesOutOfJail)
		event.PlayerID = player.ID
		event.D1, event.D2 = d1, d2
		game.AppendEvent(event)
		return []entity.Event{event}
	}

	player.JailTurns++

	if player.JailTurns < 3 {
		event := entity.NewEvent(entity.EventRolledNoDoublesInJail)
		event.PlayerID = player.ID
		event.D1, event.D2 = d1, d2
		event.JailTurns = player.JailTurns
		event.CanUseCard = player.GetOutOfJailFreeCards > 0
		game.AppendEvent(event)

		game.Phase = entity.PhaseAfterRoll
		return []entity.Event{event}
	}

	player.InJail = false
	player.JailTurns = 0
	game.Phase = entity.PhaseAfterRoll

	if player.GetOutOfJailFreeCards > 0 {
		player.GetOutOfJailFreeCards--

		event := entity.NewEvent(entity.EventForcedUseJailCard)
		event.PlayerID = player.ID
		game.AppendEvent(event)
		return []entity.Event{event}
	}

	player.Money -= that.settings.BailAmount

	event := entity.NewEvent(entity.EventForcedPayBail)
	event.PlayerID = player.ID
	event.Amount = that.settings.BailAmount
	game.AppendEvent(event)
	return []entity.Event{event}
}

// awardPassGo credits the pass-Go bonus, plus the extra bonus for landing
// exactly on the Start tile.
func (that *Engine) awardPassGo(game *entity.Game, player *entity.Player) []entity.Event {
	amount := that.settings.PassGoAmount
	onStart := player.Position == board.StartPos
	if onStart {
		amount += that.settings.OnGoAmount
	}
	player.Money += amount

	event := entity.NewEvent(entity.EventPassGo)
	event.PlayerID = player.ID
	event.Amount = amount
	event.OnStart = onStart
	game.AppendEvent(event)
	return []entity.Event{event}
}

// resolveLanding dispatches the effect of the tile the player now stands on.
// diceTotal is carried through for utility rent; depth guards against card
// chains re-triggering draws without bound.
func (that *Engine) resolveLanding(game *entity.Game, player *entity.Player, diceTotal, depth int) []entity.Event {
	tile := board.TileAt(player.Position)
	if tile == nil {
		return nil
	}

	switch tile.Type {
	case board.TypeGoToJail:
		sendToJail(player)

		event := entity.NewEvent(entity.EventGoToJail)
		event.PlayerID = player.ID
		game.AppendEvent(event)
		events := []entity.Event{event}

		if !player.IsBot {
			// humans have nothing left to do from jail; bots still run
			// their post-roll actions before ending the turn themselves
			events = append(events, that.advanceTurn(game, player.ID)...)
		}
		return events

	case board.TypeTax:
		tax := int(math.Floor(float64(player.Money) * float64(tile.Cost) / 100))
		player.Money -= tax

		event := entity.NewEvent(entity.EventPayTax)
		event.PlayerID = player.ID
		event.Amount = tax
		event.TileID = tile.ID
		game.AppendEvent(event)
		return []entity.Event{event}

	case board.TypeChance:
		return that.drawAndApply(game, player, board.DeckChance, diceTotal, depth)

	case board.TypeCommunity:
		return that.drawAndApply(game, player, board.DeckCommunity, diceTotal, depth)

	case board.TypeProperty, board.TypeRoute, board.TypeUtility:
		return that.resolvePropertyLanding(game, player, tile, diceTotal)

	default:
		// start, jail (just visiting), festival: nothing to resolve
		return nil
	}
}
