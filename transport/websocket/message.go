package websocket

import (
	"encoding/json"

	"github.com/himalgames/monopoly-backend/internal/entity"
)

// Message is the envelope for every frame in both directions: an action name
// and an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ActionPayload carries the request fields; each action reads the subset it
// needs.
type ActionPayload struct {
	GameID   string `json:"game_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Name     string `json:"name,omitempty"`

	Difficulty   string `json:"difficulty,omitempty"`
	IsSimulation bool   `json:"is_simulation,omitempty"`

	TileID int `json:"tile_id,omitempty"`
	Amount int `json:"amount,omitempty"`

	TradeID     string             `json:"trade_id,omitempty"`
	ResponderID string             `json:"responder_id,omitempty"`
	Offer       *entity.TradeOffer `json:"offer,omitempty"`
	Request     *entity.TradeOffer `json:"request,omitempty"`
}

type ResponsePayload struct {
	Game   *entity.Game   `json:"game,omitempty"`
	Player *entity.Player `json:"player,omitempty"`
	Trade  *entity.Trade  `json:"trade,omitempty"`
	Events []entity.Event `json:"events,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
