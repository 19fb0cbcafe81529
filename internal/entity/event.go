package entity

import "time"

// EventType enumerates every domain event the engine can emit. Consumers
// switch over this closed set; adding a type means updating the broadcast and
// bot dispatch switches.
type EventType string

const (
	EventGameStarted  EventType = "GAME_STARTED"
	EventPlayerJoined EventType = "PLAYER_JOINED"
	EventPlayerLeft   EventType = "PLAYER_LEFT"
	EventTurnChanged  EventType = "TURN_CHANGED"

	EventRoll                   EventType = "ROLL"
	EventPassGo                 EventType = "PASS_GO"
	EventAnotherTurn            EventType = "ANOTHER_TURN"
	EventThreeDoublesToJail     EventType = "THREE_CONSECUTIVE_DOUBLES_TO_JAIL"
	EventGoToJail               EventType = "GO_TO_JAIL"
	EventPayTax                 EventType = "PAY_TAX"
	EventRolledDoublesOutOfJail EventType = "ROLLED_DOUBLES_OUT_OF_JAIL"
	EventRolledNoDoublesInJail  EventType = "ROLLED_NO_DOUBLES_IN_JAIL"
	EventForcedUseJailCard      EventType = "FORCED_USE_GOOJF_CARD"
	EventForcedPayBail          EventType = "FORCED_PAY_BAIL"
	EventPayBail                EventType = "PAY_BAIL"
	EventUseJailCard            EventType = "USE_GOOJF_CARD"
	EventInJailNotice           EventType = "IN_JAIL_NOTIF"
	EventRemindTurn             EventType = "REMIND_TURN"

	EventPropertyUnowned     EventType = "PROPERTY_UNOWNED"
	EventPropertyOwnedBySelf EventType = "PROPERTY_OWNED_BY_SELF"
	EventPayRent             EventType = "PAY_RENT"
	EventCannotAffordRent    EventType = "CANNOT_AFFORD_RENT"
	EventBuyProperty         EventType = "BUY_PROPERTY"
	EventBuildHouse          EventType = "BUILD_HOUSE"
	EventSellHouse           EventType = "SELL_HOUSE"
	EventMortgageProperty    EventType = "MORTGAGE_PROPERTY"
	EventUnmortgageProperty  EventType = "UNMORTGAGE_PROPERTY"
	EventSellPropertyToBank  EventType = "SELL_PROPERTY_TO_BANK"

	EventDrawCard        EventType = "DRAW_CARD"
	EventCardMoneyEffect EventType = "CARD_MONEY_EFFECT"
	EventCardMoveEffect  EventType = "CARD_MOVE_EFFECT"
	EventCardJailFree    EventType = "GET_OUT_OF_JAIL_FREE_CARD"
	EventCardGoToJail    EventType = "GO_TO_JAIL_CARD"
	EventCardRepairs     EventType = "REPAIRS_CARD"

	EventAuctionStarted EventType = "AUCTION_STARTED"
	EventAuctionBid     EventType = "AUCTION_BID"
	EventAuctionPass    EventType = "AUCTION_PASS"
	EventAuctionWon     EventType = "AUCTION_WON"
	EventAuctionFailed  EventType = "AUCTION_FAILED"

	EventTradeOffer     EventType = "TRADE_OFFER"
	EventTradeAccepted  EventType = "TRADE_ACCEPTED"
	EventTradeDeclined  EventType = "TRADE_DECLINED"
	EventTradeCancelled EventType = "TRADE_CANCELLED"

	EventDebtSettled EventType = "DEBT_SETTLED"
	EventBankruptcy  EventType = "BANKRUPTCY"
	EventGameOver    EventType = "GAME_OVER"
	EventGameStats   EventType = "GAME_STATS"
)

// Event is the structured domain record appended to a game's log and fanned
// out to subscribers. Only Type and TS are always set; the remaining fields
// are populated per event kind.
type Event struct {
	Type EventType `json:"type"`
	TS   time.Time `json:"ts"`

	PlayerID   string `json:"player_id,omitempty"`
	TileID     int    `json:"tile_id,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
	CreditorID string `json:"creditor_id,omitempty"`
	WinnerID   string `json:"winner_id,omitempty"`

	Amount        int `json:"amount,omitempty"`
	AmountPaid    int `json:"amount_paid,omitempty"`
	RemainingDebt int `json:"remaining_debt,omitempty"`
	EachAmount    int `json:"each_amount,omitempty"`
	Cost          int `json:"cost,omitempty"`
	Refund        int `json:"refund,omitempty"`
	Level         int `json:"level,omitempty"`
	BidAmount     int `json:"bid_amount,omitempty"`

	D1       int  `json:"d1,omitempty"`
	D2       int  `json:"d2,omitempty"`
	Steps    int  `json:"steps,omitempty"`
	Position int  `json:"pos,omitempty"`
	OnStart  bool `json:"on_start,omitempty"`

	JailTurns          int  `json:"jail_turns,omitempty"`
	ConsecutiveDoubles int  `json:"consecutive_doubles,omitempty"`
	CanUseCard         bool `json:"can_use_card,omitempty"`

	DeckType    string `json:"deck_type,omitempty"`
	Description string `json:"description,omitempty"`

	TradeID string `json:"trade_id,omitempty"`
	Trade   *Trade `json:"trade,omitempty"`
	By      string `json:"by,omitempty"`
	Expired bool   `json:"expired,omitempty"`

	Stats []PlayerStatsHistory `json:"stats,omitempty"`
}

// NewEvent stamps a fresh event of the given type.
func NewEvent(eventType EventType) Event {
	return Event{Type: eventType, TS: time.Now().UTC()}
}

// PlayerStatsSnapshot is one per-turn record of a player's economic standing.
type PlayerStatsSnapshot struct {
	TurnNumber int `json:"turn_number"`
	Money      int `json:"money"`
	NetWorth   int `json:"net_worth"`
}

// PlayerStatsHistory pairs a player with their snapshot series, as emitted in
// the final GAME_STATS event.
type PlayerStatsHistory struct {
	PlayerID string                `json:"player_id"`
	Stats    []PlayerStatsSnapshot `json:"stats"`
}
