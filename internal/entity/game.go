package entity

import (
	"math/rand"

	"github.com/himalgames/monopoly-backend/internal/board"
)

// Game phases. The phase gates which actions are currently legal.
const (
	PhaseBeforeRoll         = "before_roll"
	PhaseRolling            = "rolling"
	PhaseAfterRoll          = "after_roll"
	PhaseAuction            = "auction"
	PhaseBankruptcyImminent = "bankruptcy_imminent"
	PhaseGameOver           = "game_over"
)

// Game statuses.
const (
	StatusLobby  = "lobby"
	StatusActive = "active"
	StatusEnd    = "end"
)

// eventLogTail bounds how much of the event log is durably kept on persist.
const eventLogTail = 10

type PropertyState struct {
	Owner     string `json:"owner,omitempty"`
	Level     int    `json:"level"`
	Mortgaged bool   `json:"mortgaged,omitempty"`
}

type Deck struct {
	Chance    []int `json:"chance"`
	Community []int `json:"community"`
}

type Auction struct {
	TileID           int      `json:"tile_id"`
	CurrentBid       int      `json:"current_bid"`
	CurrentBidderID  string   `json:"current_bidder_id,omitempty"`
	PlayersInAuction []string `json:"players_in_auction"`
}

type Game struct {
	ID             string                 `json:"id"`
	Players        map[string]*Player     `json:"players"`
	Order          []string               `json:"order"`
	Turn           string                 `json:"turn"`
	Phase          string                 `json:"phase"`
	PropertyStates map[int]*PropertyState `json:"property_states"`
	Deck           Deck                   `json:"deck"`
	EventLog       []Event                `json:"event_log"`
	Auction        *Auction               `json:"auction,omitempty"`
	Host           string                 `json:"host,omitempty"`
	Status         string                 `json:"status"`
	TurnNumber     int                    `json:"turn_number"`
	IsSimulation   bool                   `json:"is_simulation,omitempty"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:             id,
		Players:        make(map[string]*Player),
		Order:          []string{},
		Phase:          PhaseBeforeRoll,
		PropertyStates: make(map[int]*PropertyState),
		Deck:           Deck{Chance: []int{}, Community: []int{}},
		EventLog:       []Event{},
		Status:         StatusLobby,
	}
}

func (that *Game) IsLobby() bool    { return that.Status == StatusLobby }
func (that *Game) IsActive() bool   { return that.Status == StatusActive }
func (that *Game) IsGameOver() bool { return that.Phase == PhaseGameOver }

// AppendEvent records a domain event on the game's log.
func (that *Game) AppendEvent(event Event) {
	that.EventLog = append(that.EventLog, event)
}

// TailEvents returns the bounded tail of the event log kept on persistence.
func (that *Game) TailEvents() []Event {
	if len(that.EventLog) <= eventLogTail {
		return that.EventLog
	}
	return that.EventLog[len(that.EventLog)-eventLogTail:]
}

// Owner returns the owning player id for a tile, or "" when unowned.
func (that *Game) Owner(tileID int) string {
	if state, ok := that.PropertyStates[tileID]; ok {
		return state.Owner
	}
	return ""
}

// HasMonopoly reports whether the player owns every property tile in a group.
func (that *Game) HasMonopoly(playerID, group string) bool {
	tiles := board.PropertiesInGroup(group)
	if len(tiles) == 0 {
		return false
	}
	for _, tile := range tiles {
		if that.Owner(tile.ID) != playerID {
			return false
		}
	}
	return true
}

// OwnedOfType counts how many tiles of a board type a player owns, used for
// route and utility rent scaling.
func (that *Game) OwnedOfType(playerID, tileType string) int {
	count := 0
	for i := range board.Tiles {
		tile := &board.Tiles[i]
		if tile.Type == tileType && that.Owner(tile.ID) == playerID {
			count++
		}
	}
	return count
}

// NextActivePlayer walks the turn order starting after fromID and returns the
// first non-bankrupt player, or "" when none remains. When fromID is no
// longer in the order (it was removed by bankruptcy), the walk starts at the
// head of the remaining order.
func (that *Game) NextActivePlayer(fromID string) string {
	if len(that.Order) == 0 {
		return ""
	}

	start := 0
	for i, id := range that.Order {
		if id == fromID {
			start = i + 1
			break
		}
	}

	for i := 0; i < len(that.Order); i++ {
		candidate := that.Order[(start+i)%len(that.Order)]
		player, ok := that.Players[candidate]
		if ok && player.Status != PlayerBankrupt {
			return candidate
		}
	}
	return ""
}

// RemoveFromOrder drops a player from the turn rotation.
func (that *Game) RemoveFromOrder(playerID string) {
	order := that.Order[:0]
	for _, id := range that.Order {
		if id != playerID {
			order = append(order, id)
		}
	}
	that.Order = order
}

// DrawFrom pops the next card id from a deck queue, refilling and reshuffling
// (Fisher-Yates) when the queue is empty, then cycles the drawn card to the
// back. Cards are never permanently removed.
func (that *Game) DrawFrom(deck string, rng *rand.Rand) int {
	queue := &that.Deck.Chance
	if deck == board.DeckCommunity {
		queue = &that.Deck.Community
	}

	if len(*queue) == 0 {
		*queue = board.DeckIDs(deck)
		rng.Shuffle(len(*queue), func(i, j int) {
			(*queue)[i], (*queue)[j] = (*queue)[j], (*queue)[i]
		})
	}

	cardID := (*queue)[0]
	*queue = append((*queue)[1:], cardID)
	return cardID
}

// RecountAssets recomputes a player's derived asset summary from the current
// property states.
func (that *Game) RecountAssets(player *Player) {
	var assets Assets

	for _, tileID := range player.Properties {
		tile := board.TileAt(tileID)
		state := that.PropertyStates[tileID]
		if tile == nil || state == nil {
			continue
		}

		if state.Mortgaged {
			assets.TotalValue += tile.MortgageAmount()
		} else {
			assets.TotalValue += tile.Cost
		}

		switch tile.Type {
		case board.TypeProperty:
			assets.Properties += tile.Cost
			if state.Level > 0 {
				assets.Houses += state.Level * tile.HouseCost
				assets.TotalValue += state.Level * tile.HouseCost
			}
		case board.TypeUtility:
			assets.Utilities += tile.Cost
		case board.TypeRoute:
			assets.Routes += tile.Cost
		}
	}

	player.Assets = assets
}
