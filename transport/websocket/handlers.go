package websocket

import (
	"context"
	"fmt"

	"github.com/himalgames/monopoly-backend/internal/apperror"
	"github.com/himalgames/monopoly-backend/internal/entity"
)

func (that *Server) handleNewGame(ctx context.Context, c *client, payload ActionPayload) error {
	game, player, err := that.games.CreateGame(ctx, payload.Name, payload.UserID, payload.IsSimulation)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.attach(ctx, c, game.ID, player.ID)
	that.reply(c, "game:new", ResponsePayload{Game: game, Player: player})
	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, payload ActionPayload) error {
	game, player, err := that.games.JoinGame(ctx, payload.GameID, payload.Name, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	that.attach(ctx, c, game.ID, player.ID)
	that.reply(c, "game:join", ResponsePayload{Game: game, Player: player})
	that.hub.BroadcastGame(game.ID, game, game.TailEvents())
	return nil
}

// handleReconnect re-binds a dropped connection to its player.
func (that *Server) handleReconnect(ctx context.Context, c *client, payload ActionPayload) error {
	game, err := that.games.GetGameByID(ctx, payload.GameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	player, ok := game.Players[payload.PlayerID]
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	that.attach(ctx, c, game.ID, player.ID)
	that.reply(c, "game:reconnect", ResponsePayload{Game: game, Player: player})
	return nil
}

func (that *Server) attach(ctx context.Context, c *client, gameID, playerID string) {
	c.gameID = gameID
	c.playerID = playerID
	that.hub.join(gameID, c)

	if err := that.games.UpdatePresence(ctx, gameID, playerID, c.conn.RemoteAddr().String(), true); err != nil {
		that.logger.Error("failed to mark player connected", "error", err)
	}
}

func (that *Server) handleAddBot(ctx context.Context, c *client, payload ActionPayload) error {
	game, player, err := that.games.AddBot(ctx, payload.GameID, payload.Difficulty)
	if err != nil {
		return fmt.Errorf("failed to add bot: %w", err)
	}

	that.reply(c, "game:add_bot", ResponsePayload{Player: player})
	that.hub.BroadcastGame(game.ID, game, game.TailEvents())
	return nil
}

func (that *Server) handleStartGame(ctx context.Context, c *client, payload ActionPayload) error {
	if _, err := that.games.StartGame(ctx, payload.GameID, c.playerID); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, c *client, payload ActionPayload) error {
	if _, err := that.games.LeaveGame(ctx, payload.GameID, c.playerID); err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	that.hub.leave(c)
	c.gameID, c.playerID = "", ""
	return nil
}

func (that *Server) handleRoll(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.Roll(ctx, payload.GameID, c.playerID)
	return err
}

func (that *Server) handleBuyProperty(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.BuyProperty(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handleBuildHouse(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.BuildHouse(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handleSellHouse(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.SellHouse(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handleMortgage(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.MortgageProperty(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handleUnmortgage(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.UnmortgageProperty(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handleSellToBank(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.SellPropertyToBank(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handlePayBail(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.PayBail(ctx, payload.GameID, c.playerID)
	return err
}

func (that *Server) handleUseJailCard(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.UseJailCard(ctx, payload.GameID, c.playerID)
	return err
}

func (that *Server) handleEndTurn(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.EndTurn(ctx, payload.GameID, c.playerID)
	return err
}

func (that *Server) handleStartAuction(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.StartAuction(ctx, payload.GameID, c.playerID, payload.TileID)
	return err
}

func (that *Server) handlePlaceBid(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.PlaceBid(ctx, payload.GameID, c.playerID, payload.Amount)
	return err
}

func (that *Server) handlePassBid(ctx context.Context, c *client, payload ActionPayload) error {
	_, _, err := that.gameplay.PassBid(ctx, payload.GameID, c.playerID)
	return err
}

func (that *Server) handleProposeTrade(ctx context.Context, c *client, payload ActionPayload) error {
	offer, request := entity.TradeOffer{}, entity.TradeOffer{}
	if payload.Offer != nil {
		offer = *payload.Offer
	}
	if payload.Request != nil {
		request = *payload.Request
	}

	trade, err := that.trades.ProposeTrade(ctx, payload.GameID, c.playerID, payload.ResponderID, offer, request)
	if err != nil {
		return fmt.Errorf("failed to propose trade: %w", err)
	}

	that.reply(c, "trade:propose", ResponsePayload{Trade: trade})
	return nil
}

func (that *Server) handleAcceptTrade(ctx context.Context, c *client, payload ActionPayload) error {
	_, err := that.trades.AcceptTrade(ctx, payload.GameID, payload.TradeID, c.playerID)
	return err
}

func (that *Server) handleDeclineTrade(ctx context.Context, c *client, payload ActionPayload) error {
	return that.trades.DeclineTrade(ctx, payload.GameID, payload.TradeID, c.playerID)
}

func (that *Server) handleCancelTrade(ctx context.Context, c *client, payload ActionPayload) error {
	return that.trades.CancelTrade(ctx, payload.GameID, payload.TradeID, c.playerID)
}
