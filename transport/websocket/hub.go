package websocket

import (
	"log/slog"
	"sync"

	"github.com/himalgames/monopoly-backend/internal/entity"
)

// Hub tracks which clients sit in which game room and is the concrete
// Publisher the services push through.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "ws_hub"),
		rooms:  make(map[string]map[*client]bool),
	}
}

func (that *Hub) join(gameID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rooms[gameID] == nil {
		that.rooms[gameID] = make(map[*client]bool)
	}
	that.rooms[gameID][c] = true
}

func (that *Hub) leave(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if c.gameID == "" {
		return
	}
	room := that.rooms[c.gameID]
	delete(room, c)
	if len(room) == 0 {
		delete(that.rooms, c.gameID)
	}
}

// BroadcastGame pushes a state update to everyone in the room.
func (that *Hub) BroadcastGame(gameID string, game *entity.Game, events []entity.Event) {
	frame := mustMarshal(Message{
		Action:  "game:update",
		Payload: mustMarshal(ResponsePayload{Game: game, Events: events}),
	})

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.rooms[gameID] {
		c.enqueue(frame)
	}
}

// NotifyPlayer pushes a private event to one player's connections.
func (that *Hub) NotifyPlayer(gameID, playerID string, event entity.Event) {
	frame := mustMarshal(Message{
		Action:  "game:notice",
		Payload: mustMarshal(ResponsePayload{Events: []entity.Event{event}}),
	})

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.rooms[gameID] {
		if c.playerID == playerID {
			c.enqueue(frame)
		}
	}
}
