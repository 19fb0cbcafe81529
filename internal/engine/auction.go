package engine

import (
	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

// StartAuction opens bidding on the unowned tile the acting player declined
// to buy. Every non-bankrupt player starts as an eligible bidder.
func (that *Engine) StartAuction(game *entity.Game, playerID string, tileID int) ([]entity.Event, error) {
	if game.Turn != playerID || game.Phase != entity.PhaseAfterRoll {
		return nil, apperror.ErrNotYourTurn
	}
	tile := board.TileAt(tileID)
	if tile == nil || !tile.IsPurchasable() {
		return nil, apperror.ErrInvalidTile
	}
	if game.Owner(tileID) != "" {
		return nil, apperror.ErrPropertyOwned
	}

	bidders := make([]string, 0, len(game.Order))
	for _, id := range game.Order {
		if player, ok := game.Players[id]; ok && player.Status != entity.PlayerBankrupt {
			bidders = append(bidders, id)
		}
	}

	game.Phase = entity.PhaseAuction
	game.Auction = &entity.Auction{
		TileID:           tileID,
		PlayersInAuction: bidders,
	}

	event := entity.NewEvent(entity.EventAuctionStarted)
	event.PlayerID = playerID
	event.TileID = tileID
	game.AppendEvent(event)
	return []entity.Event{event}, nil
}

// PlaceBid raises the standing bid.
func (that *Engine) PlaceBid(game *entity.Game, playerID string, amount int) ([]entity.Event, error) {
	auction := game.Auction
	if game.Phase != entity.PhaseAuction || auction == nil {
		return nil, apperror.ErrNoActiveAuction
	}
	if !contains(auction.PlayersInAuction, playerID) {
		return nil, apperror.ErrNotInAuction
	}
	if amount <= auction.CurrentBid {
		return nil, apperror.ErrBidTooLow
	}
	player, ok := game.Players[playerID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}
	if player.Money < amount {
		return nil, apperror.ErrInsufficientFunds
	}

	auction.CurrentBid = amount
	auction.CurrentBidderID = playerID

	event := entity.NewEvent(entity.EventAuctionBid)
	event.PlayerID = playerID
	event.TileID = auction.TileID
	event.BidAmount = amount
	game.AppendEvent(event)

	events := []entity.Event{event}
	if len(auction.PlayersInAuction) <= 1 {
		events = append(events, that.endAuction(game)...)
	}
	return events, nil
}

// PassBid withdraws a bidder. When one or zero bidders remain the auction
// resolves: the standing high bidder wins at their bid, or the tile stays
// unsold when nobody ever bid.
func (that *Engine) PassBid(game *entity.Game, playerID string) ([]entity.Event, error) {
	auction := game.Auction
	if game.Phase != entity.PhaseAuction || auction == nil {
		return nil, apperror.ErrNoActiveAuction
	}
	if !contains(auction.PlayersInAuction, playerID) {
		return nil, apperror.ErrNotInAuction
	}

	remaining := auction.PlayersInAuction[:0]
	for _, id := range auction.PlayersInAuction {
		if id != playerID {
			remaining = append(remaining, id)
		}
	}
	auction.PlayersInAuction = remaining

	event := entity.NewEvent(entity.EventAuctionPass)
	event.PlayerID = playerID
	event.TileID = auction.TileID
	game.AppendEvent(event)

	events := []entity.Event{event}
	if len(auction.PlayersInAuction) <= 1 {
		events = append(events, that.endAuction(game)...)
	}
	return events, nil
}

func (that *Engine) endAuction(game *entity.Game) []entity.Event {
	auction := game.Auction
	game.Auction = nil
	game.Phase = entity.PhaseAfterRoll

	winner, ok := game.Players[auction.CurrentBidderID]
	if !ok || auction.CurrentBid <= 0 {
		event := entity.NewEvent(entity.EventAuctionFailed)
		event.TileID = auction.TileID
		game.AppendEvent(event)
		return []entity.Event{event}
	}

	winner.Money -= auction.CurrentBid
	winner.Properties = append(winner.Properties, auction.TileID)
	game.PropertyStates[auction.TileID] = &entity.PropertyState{Owner: winner.ID}
	game.RecountAssets(winner)

	event := entity.NewEvent(entity.EventAuctionWon)
	event.PlayerID = winner.ID
	event.TileID = auction.TileID
	event.BidAmount = auction.CurrentBid
	game.AppendEvent(event)
	return []entity.Event{event}
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
