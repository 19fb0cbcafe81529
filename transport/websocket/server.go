package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/himalgames/monopoly-backend/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 16 * 1024
	sendBuffer     = 32
)

type handlerFunc func(ctx context.Context, c *client, payload ActionPayload) error

type Server struct {
	logger *slog.Logger

	hub      *Hub
	upgrader websocket.Upgrader

	games    service.GameService
	gameplay service.GameplayService
	trades   service.TradeService

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, games service.GameService, gameplay service.GameplayService, trades service.TradeService) *Server {
	server := &Server{
		logger: logger.With("component", "ws_server"),
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		games:    games,
		gameplay: gameplay,
		trades:   trades,
		handlers: make(map[string]handlerFunc),
	}

	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:reconnect"] = server.handleReconnect
	server.handlers["game:add_bot"] = server.handleAddBot
	server.handlers["game:start"] = server.handleStartGame
	server.handlers["game:leave"] = server.handleLeaveGame

	server.handlers["game:roll"] = server.handleRoll
	server.handlers["game:buy"] = server.handleBuyProperty
	server.handlers["game:build"] = server.handleBuildHouse
	server.handlers["game:sell_house"] = server.handleSellHouse
	server.handlers["game:mortgage"] = server.handleMortgage
	server.handlers["game:unmortgage"] = server.handleUnmortgage
	server.handlers["game:sell"] = server.handleSellToBank
	server.handlers["game:pay_bail"] = server.handlePayBail
	server.handlers["game:use_jail_card"] = server.handleUseJailCard
	server.handlers["game:end_turn"] = server.handleEndTurn

	server.handlers["auction:start"] = server.handleStartAuction
	server.handlers["auction:bid"] = server.handlePlaceBid
	server.handlers["auction:pass"] = server.handlePassBid

	server.handlers["trade:propose"] = server.handleProposeTrade
	server.handlers["trade:accept"] = server.handleAcceptTrade
	server.handlers["trade:decline"] = server.handleDeclineTrade
	server.handlers["trade:cancel"] = server.handleCancelTrade

	return server
}

// Start runs the WebSocket server until the listener fails.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	gameID   string
	playerID string
}

func (that *client) enqueue(frame []byte) {
	select {
	case that.send <- frame:
	default:
		// slow consumer, drop the frame rather than block the hub
	}
}

func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	go that.writePump(c)
	that.readPump(ctx, c)
}

func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump")

	defer func() {
		that.disconnect(ctx, c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			that.sendError(c, message.Action, fmt.Errorf("malformed message: %w", err))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(c, message.Action, fmt.Errorf("unknown action %q", message.Action))
			continue
		}

		var payload ActionPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				that.sendError(c, message.Action, fmt.Errorf("malformed payload: %w", err))
				continue
			}
		}

		if err = handler(ctx, c, payload); err != nil {
			that.sendError(c, message.Action, err)
		}
	}
}

func (that *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *Server) disconnect(ctx context.Context, c *client) {
	that.hub.leave(c)
	close(c.send)

	if c.gameID != "" && c.playerID != "" {
		if err := that.games.UpdatePresence(ctx, c.gameID, c.playerID, "", false); err != nil {
			that.logger.Error("failed to mark player disconnected", "error", err)
		}
	}
}

func (that *Server) reply(c *client, action string, payload ResponsePayload) {
	c.enqueue(mustMarshal(Message{
		Action:  action,
		Payload: mustMarshal(payload),
	}))
}

func (that *Server) sendError(c *client, action string, err error) {
	if action == "" {
		action = "error"
	}
	that.reply(c, action, ResponsePayload{Error: err.Error()})
}
