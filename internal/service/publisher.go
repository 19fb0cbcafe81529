package service

import "github.com/himalgames/monopoly-backend/internal/entity"

// Publisher is the fan-out boundary to connected clients. The websocket
// layer implements it; services only ever push through this interface and
// never learn about sockets.
type Publisher interface {
	// BroadcastGame pushes the fresh state and the events produced by one
	// mutation to everyone in the game's room.
	BroadcastGame(gameID string, game *entity.Game, events []entity.Event)

	// NotifyPlayer pushes a private event to a single player.
	NotifyPlayer(gameID, playerID string, event entity.Event)
}

// NopPublisher is used in tests and simulations with no connected clients.
type NopPublisher struct{}

func (NopPublisher) BroadcastGame(string, *entity.Game, []entity.Event) {}

func (NopPublisher) NotifyPlayer(string, string, entity.Event) {}
