package engine

import (
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// ValidateTrade checks a pending trade against the live game state: both
// sides must still exist, afford their money amount, hold their jail cards,
// and own every offered property undeveloped and unmortgaged. A trade that
// was fine when proposed fails here if the holdings moved underneath it.
func (that *Engine) ValidateTrade(game *entity.Game, trade *entity.Trade) error {
	if !trade.IsPending() {
		return apperror.ErrTradeNotPending
	}

	proposer, ok := game.Players[trade.ProposerID]
	if !ok || proposer.Status == entity.PlayerBankrupt {
		return apperror.ErrPlayerNotFound
	}
	responder, ok := game.Players[trade.ResponderID]
	if !ok || responder.Status == entity.PlayerBankrupt {
		return apperror.ErrPlayerNotFound
	}

	if err := that.validateSide(game, proposer, trade.Offer); err != nil {
		return err
	}
	return that.validateSide(game, responder, trade.Request)
}

func (that *Engine) validateSide(game *entity.Game, player *entity.Player, side entity.TradeOffer) error {
	if player.Money < side.Money {
		return apperror.ErrInsufficientFunds
	}
	if player.GetOutOfJailFreeCards < side.GetOutOfJailFreeCards {
		return apperror.ErrNoJailCard
	}

	for _, tileID := range side.Properties {
		state := game.PropertyStates[tileID]
		if state == nil || state.Owner != player.ID {
			return apperror.ErrNotPropertyOwner
		}
		if state.Level > 0 {
			return apperror.ErrDevelopedProperty
		}
		if state.Mortgaged {
			return apperror.ErrAlreadyMortgaged
		}
	}
	return nil
}

// ApplyTrade executes an accepted trade atomically: validation first, then
// both sides move in one mutation with no partial effects possible.
func (that *Engine) ApplyTrade(game *entity.Game, trade *entity.Trade) ([]entity.Event, error) {
	if err := that.ValidateTrade(game, trade); err != nil {
		return nil, err
	}

	proposer := game.Players[trade.ProposerID]
	responder := game.Players[trade.ResponderID]

	that.transferSide(game, proposer, responder, trade.Offer)
	that.transferSide(game, responder, proposer, trade.Request)
	game.RecountAssets(proposer)
	game.RecountAssets(responder)

	trade.Status = entity.TradeAccepted

	event := entity.NewEvent(entity.EventTradeAccepted)
	event.TradeID = trade.ID
	event.Trade = trade
	event.PlayerID = trade.ResponderID
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

func (that *Engine) transferSide(game *entity.Game, from, to *entity.Player, side entity.TradeOffer) {
	from.Money -= side.Money
	to.Money += side.Money

	from.GetOutOfJailFreeCards -= side.GetOutOfJailFreeCards
	to.GetOutOfJailFreeCards += side.GetOutOfJailFreeCards

	for _, tileID := range side.Properties {
		game.PropertyStates[tileID].Owner = to.ID
		from.RemoveProperty(tileID)
		to.Properties = append(to.Properties, tileID)
	}
}
