package entity

import "time"

// Trade statuses. Everything but pending is terminal; a trade document is
// never mutated after reaching one of them. expired marks a timeout, so
// clients can tell it apart from an explicit rejection.
const (
	TradePending   = "pending"
	TradeAccepted  = "accepted"
	TradeDeclined  = "declined"
	TradeCancelled = "cancelled"
	TradeExpired   = "expired"
)

// TradeOffer is one side of a trade: money, undeveloped properties and
// get-out-of-jail-free cards.
type TradeOffer struct {
	Money                 int   `json:"money,omitempty"`
	Properties            []int `json:"properties,omitempty"`
	GetOutOfJailFreeCards int   `json:"get_out_of_jail_free_cards,omitempty"`
}

type Trade struct {
	ID          string     `json:"id"`
	GameID      string     `json:"game_id"`
	ProposerID  string     `json:"proposer_id"`
	ResponderID string     `json:"responder_id"`
	Offer       TradeOffer `json:"offer"`
	Request     TradeOffer `json:"request"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (that *Trade) IsPending() bool {
	return that.Status == TradePending
}
