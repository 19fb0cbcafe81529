package apperror

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found in this game")
	ErrTradeNotFound    = errors.New("trade not found or expired")
	ErrGameFull         = errors.New("game is full")
	ErrGameStarted      = errors.New("game has already started")
	ErrGameOver         = errors.New("game is already over")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start the game")

	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPropertyOwned     = errors.New("property is already owned")
	ErrNotPropertyOwner  = errors.New("player does not own this property")
	ErrInvalidTile       = errors.New("invalid tile for this action")
	ErrNoMonopoly        = errors.New("player does not own all properties in this group")
	ErrMaxDevelopment    = errors.New("property already has maximum development")
	ErrNoHousesToSell    = errors.New("no houses or hotel to sell on this property")
	ErrAlreadyMortgaged  = errors.New("property is already mortgaged")
	ErrNotMortgaged      = errors.New("property is not mortgaged")
	ErrDevelopedProperty = errors.New("property has houses or a hotel on it")

	ErrNotInJail  = errors.New("player is not in jail")
	ErrNoJailCard = errors.New("player does not have a get out of jail free card")

	ErrNoActiveAuction = errors.New("no active auction")
	ErrNotInAuction    = errors.New("player is not part of this auction")
	ErrBidTooLow       = errors.New("bid must be higher than current bid")

	ErrTradeNotPending     = errors.New("trade is not pending")
	ErrNotTradeParticipant = errors.New("player is not a party to this trade")
	ErrUnsettledDebt       = errors.New("outstanding debt or negative balance must be resolved before ending the turn")

	ErrNoAvailableNames = errors.New("no more available bot names")
)
