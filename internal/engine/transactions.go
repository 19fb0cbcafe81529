package engine

import (
	"math"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// BuyProperty purchases the tile the acting player stands on.
func (that *Engine) BuyProperty(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	if game.Turn != playerID || game.Phase != entity.PhaseAfterRoll {
		return nil, apperror.ErrNotYourTurn
	}
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	tile := board.TileAt(tileID)
	if tile == nil || !tile.IsPurchasable() || player.Position != tileID {
		return nil, apperror.ErrInvalidTile
	}
	if game.Owner(tileID) != "" {
		return nil, apperror.ErrPropertyOwned
	}
	if player.Money < tile.Cost {
		return nil, apperror.ErrInsufficientFunds
	}

	player.Money -= tile.Cost
	player.Properties = append(player.Properties, tileID)
	game.PropertyStates[tileID] = &entity.PropertyState{Owner: playerID}
	game.RecountAssets(player)

	event := entity.NewEvent(entity.EventBuyProperty)
	event.PlayerID = playerID
	event.TileID = tileID
	event.Cost = tile.Cost
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

// BuildHouse adds one development level to an owned monopoly property.
func (that *Engine) BuildHouse(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	tile := board.TileAt(tileID)
	if tile == nil || tile.Type != board.TypeProperty {
		return nil, apperror.ErrInvalidTile
	}
	state := game.PropertyStates[tileID]
	if state == nil || state.Owner != playerID {
		return nil, apperror.ErrNotPropertyOwner
	}
	if state.Mortgaged {
		return nil, apperror.ErrAlreadyMortgaged
	}
	if !game.HasMonopoly(playerID, tile.Group) {
		return nil, apperror.ErrNoMonopoly
	}
	if state.Level >= 5 {
		return nil, apperror.ErrMaxDevelopment
	}
	if player.Money < tile.HouseCost {
		return nil, apperror.ErrInsufficientFunds
	}

	player.Money -= tile.HouseCost
	state.Level++
	game.RecountAssets(player)

	event := entity.NewEvent(entity.EventBuildHouse)
	event.PlayerID = playerID
	event.TileID = tileID
	event.Level = state.Level
	event.Cost = tile.HouseCost
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

// SellHouse removes one development level for a half-price refund, then
// settles any outstanding debt with the raised cash.
func (that *Engine) SellHouse(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	tile := board.TileAt(tileID)
	if tile == nil || tile.Type != board.TypeProperty {
		return nil, apperror.ErrInvalidTile
	}
	state := game.PropertyStates[tileID]
	if state == nil || state.Owner != playerID {
		return nil, apperror.ErrNotPropertyOwner
	}
	if state.Level <= 0 {
		return nil, apperror.ErrNoHousesToSell
	}

	refund := tile.HouseCost / 2
	state.Level--
	player.Money += refund
	game.RecountAssets(player)

	event := entity.NewEvent(entity.EventSellHouse)
	event.PlayerID = playerID
	event.TileID = tileID
	event.Level = state.Level
	event.Refund = refund
	game.AppendEvent(event)

	events := []entity.Event{event}
	events = append(events, that.SettleDebt(game, player)...)
	return events, nil
}

// MortgageProperty converts an undeveloped property to cash at mortgage
// value, suspending its rent until repaid.
func (that *Engine) MortgageProperty(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	tile := board.TileAt(tileID)
	if tile == nil || !tile.IsPurchasable() {
		return nil, apperror.ErrInvalidTile
	}
	state := game.PropertyStates[tileID]
	if state == nil || state.Owner != playerID {
		return nil, apperror.ErrNotPropertyOwner
	}
	if state.Mortgaged {
		return nil, apperror.ErrAlreadyMortgaged
	}
	if state.Level > 0 {
		return nil, apperror.ErrDevelopedProperty
	}

	amount := tile.MortgageAmount()
	state.Mortgaged = true
	player.Money += amount
	game.RecountAssets(player)

	event := entity.NewEvent(entity.EventMortgageProperty)
	event.PlayerID = playerID
	event.TileID = tileID
	event.Amount = amount
	game.AppendEvent(event)

	events := []entity.Event{event}
	events = append(events, that.SettleDebt(game, player)...)
	return events, nil
}

// UnmortgageProperty repays a mortgage at its value plus interest, rounded
// up.
func (that *Engine) UnmortgageProperty(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	tile := board.TileAt(tileID)
	if tile == nil || !tile.IsPurchasable() {
		return nil, apperror.ErrInvalidTile
	}
	state := game.PropertyStates[tileID]
	if state == nil || state.Owner != playerID {
		return nil, apperror.ErrNotPropertyOwner
	}
	if !state.Mortgaged {
		return nil, apperror.ErrNotMortgaged
	}

	cost := int(math.Ceil(float64(tile.MortgageAmount()) * (1 + that.settings.UnmortgageInterestRate)))
	if player.Money < cost {
		return nil, apperror.ErrInsufficientFunds
	}

	player.Money -= cost
	state.Mortgaged = false
	game.RecountAssets(player)

	event := entity.NewEvent(entity.EventUnmortgageProperty)
	event.PlayerID = playerID
	event.TileID = tileID
	event.Cost = cost
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

// SellPropertyToBank returns an undeveloped, unmortgaged property to the
// bank for half its purchase cost.
func (that *Engine) SellPropertyToBank(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	tile := board.TileAt(tileID)
	if tile == nil || !tile.IsPurchasable() {
		return nil, apperror.ErrInvalidTile
	}
	state := game.PropertyStates[tileID]
	if state == nil || state.Owner != playerID {
		return nil, apperror.ErrNotPropertyOwner
	}
	if state.Level > 0 {
		return nil, apperror.ErrDevelopedProperty
	}
	if state.Mortgaged {
		return nil, apperror.ErrAlreadyMortgaged
	}

	refund := tile.Cost / 2
	delete(game.PropertyStates, tileID)
	player.RemoveProperty(tileID)
	player.Money += refund
	game.RecountAssets(player)

	event := entity.NewEvent(entity.EventSellPropertyToBank)
	event.PlayerID = playerID
	event.TileID = tileID
	event.Refund = refund
	game.AppendEvent(event)

	events := []entity.Event{event}
	events = append(events, that.SettleDebt(game, player)...)
	return events, nil
}

// PayBail buys the acting player out of jail at the start of their turn.
func (that *Engine) PayBail(game *entity.Game, playerID string) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	if !player.InJail {
		return nil, apperror.ErrNotInJail
	}
	if player.Money < that.settings.BailAmount {
		return nil, apperror.ErrInsufficientFunds
	}

	player.Money -= that.settings.BailAmount
	player.InJail = false
	player.JailTurns = 0

	event := entity.NewEvent(entity.EventPayBail)
	event.PlayerID = playerID
	event.Amount = that.settings.BailAmount
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

// UseJailCard spends a get-out-of-jail-free card.
func (that *Engine) UseJailCard(game *entity.Game, playerID string) ([]entity.Event, error) {
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	if !player.InJail {
		return nil, apperror.ErrNotInJail
	}
	if player.GetOutOfJailFreeCards <= 0 {
		return nil, apperror.ErrNoJailCard
	}

	player.GetOutOfJailFreeCards--
	player.InJail = false
	player.JailTurns = 0

	event := entity.NewEvent(entity.EventUseJailCard)
	event.PlayerID = playerID
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}
