package entity

import (
	"time"

	"github.com/himalgames/monopoly-backend/internal/board"
)

// Player lifecycle statuses. bankrupt, left and kicked are terminal.
const (
	PlayerActive       = "active"
	PlayerLeft         = "left"
	PlayerKicked       = "kicked"
	PlayerBankrupt     = "bankrupt"
	PlayerDisconnected = "disconnected"
)

// Assets is a derived summary of a player's holdings. It is recomputed from
// propertyStates after every mutation, never independently edited.
type Assets struct {
	Properties int `json:"properties"`
	Houses     int `json:"houses"`
	Utilities  int `json:"utilities"`
	Routes     int `json:"routes"`
	TotalValue int `json:"total_value"`
}

type Player struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name"`
	IsBot  bool   `json:"is_bot"`
	Color  string `json:"color,omitempty"`

	Money      int    `json:"money"`
	Properties []int  `json:"properties"`
	Assets     Assets `json:"assets"`

	Position  int  `json:"position"`
	InJail    bool `json:"in_jail"`
	JailTurns int  `json:"jail_turns"`

	GetOutOfJailFreeCards int `json:"get_out_of_jail_free_cards"`

	LastRollWasDouble  bool `json:"last_roll_was_double"`
	ConsecutiveDoubles int  `json:"consecutive_doubles"`

	DebtToPlayerID string `json:"debt_to_player_id,omitempty"`
	DebtAmount     int    `json:"debt_amount,omitempty"`

	Status      string    `json:"status"`
	SocketID    string    `json:"socket_id,omitempty"`
	IsConnected bool      `json:"is_connected"`
	LastActive  time.Time `json:"last_active"`
}

func NewPlayer(id, name string, isBot bool, money int) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		IsBot:       isBot,
		Money:       money,
		Position:    board.StartPos,
		Properties:  []int{},
		Status:      PlayerActive,
		IsConnected: true,
		LastActive:  time.Now().UTC(),
	}
}

func (that *Player) IsActive() bool {
	return that.Status == PlayerActive
}

// HasDebt reports whether the player still owes money or is overdrawn.
func (that *Player) HasDebt() bool {
	return that.DebtAmount > 0 || that.Money < 0
}

func (that *Player) OwnsProperty(tileID int) bool {
	for _, id := range that.Properties {
		if id == tileID {
			return true
		}
	}
	return false
}

func (that *Player) RemoveProperty(tileID int) {
	properties := that.Properties[:0]
	for _, id := range that.Properties {
		if id != tileID {
			properties = append(properties, id)
		}
	}
	that.Properties = properties
}
