package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/himalgames/monopoly-backend/internal/engine"
	"github.com/himalgames/monopoly-backend/internal/entity"
	"github.com/himalgames/monopoly-backend/internal/repository"
)

const (
	// botDelay paces bot actions so humans can follow along; simulations
	// skip it entirely.
	botDelay = 1 * time.Second

	// botActivationBudget caps how many actions one activation may take,
	// as a stop against a decision loop that never settles.
	botActivationBudget = 128

	botActivationTimeout = 2 * time.Minute

	tradeCooldown = 2 * time.Minute
)

// BotService supervises every bot across every game on this node. It reacts
// to state changes by driving whichever registered bot holds the turn
// through the same public operations a human uses; it owns no game state of
// its own beyond the registry.
type BotService interface {
	BotNotifier
	TradeNotifier

	Register(gameID string, meta entity.BotMetadata)
	LoadActiveGames(ctx context.Context) error
}

type botService struct {
	logger *slog.Logger

	engine    *engine.Engine
	gameplay  GameplayService
	trades    TradeService
	gameRepo  repository.GameRepository
	botRepo   repository.BotRepository
	tradeRepo repository.TradeRepository

	mu       sync.Mutex
	registry map[string]map[string]entity.BotMetadata
	inFlight map[string]bool
	pending  map[string]bool
}

func NewBotService(
	logger *slog.Logger,
	gameEngine *engine.Engine,
	gameplay GameplayService,
	trades TradeService,
	gameRepo repository.GameRepository,
	botRepo repository.BotRepository,
	tradeRepo repository.TradeRepository,
) BotService {
	return &botService{
		logger:    logger.With("component", "bot_service"),
		engine:    gameEngine,
		gameplay:  gameplay,
		trades:    trades,
		gameRepo:  gameRepo,
		botRepo:   botRepo,
		tradeRepo: tradeRepo,
		registry:  make(map[string]map[string]entity.BotMetadata),
		inFlight:  make(map[string]bool),
		pending:   make(map[string]bool),
	}
}

func (that *botService) Register(gameID string, meta entity.BotMetadata) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.registry[gameID] == nil {
		that.registry[gameID] = make(map[string]entity.BotMetadata)
	}
	that.registry[gameID][meta.PlayerID] = meta
}

func (that *botService) ReleaseGame(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.registry, gameID)
	delete(that.inFlight, gameID)
	delete(that.pending, gameID)
}

func (that *botService) botFor(gameID, playerID string) (entity.BotMetadata, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	meta, ok := that.registry[gameID][playerID]
	return meta, ok
}

// LoadActiveGames rebuilds the registry from persisted bot metadata after a
// restart, then pokes each game in case a bot was mid-turn when the process
// died.
func (that *botService) LoadActiveGames(ctx context.Context) error {
	gameIDs, err := that.gameRepo.ActiveGameIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active games: %w", err)
	}

	for _, gameID := range gameIDs {
		metas, err := that.botRepo.ListByGame(ctx, gameID)
		if err != nil {
			return fmt.Errorf("failed to load bot metadata: %w", err)
		}
		for _, meta := range metas {
			that.Register(gameID, meta)
		}
		if len(metas) > 0 {
			that.OnStateChanged(gameID)
		}
	}

	return nil
}

// OnStateChanged wakes the decision loop for a game. A loop already running
// is flagged to go one more round instead of starting a second one, so at
// most one loop mutates a game's bots at a time.
func (that *botService) OnStateChanged(gameID string) {
	that.mu.Lock()
	if len(that.registry[gameID]) == 0 {
		that.mu.Unlock()
		return
	}
	if that.inFlight[gameID] {
		that.pending[gameID] = true
		that.mu.Unlock()
		return
	}
	that.inFlight[gameID] = true
	that.mu.Unlock()

	go that.runLoop(gameID)
}

func (that *botService) runLoop(gameID string) {
	logger := that.logger.With("method", "runLoop", "game_id", gameID)

	ctx, cancel := context.WithTimeout(context.Background(), botActivationTimeout)
	defer cancel()

	budget := botActivationBudget
	for {
		acted := that.step(ctx, logger, gameID)

		budget--
		if budget <= 0 {
			logger.Warn("bot activation budget exhausted")
			acted = false
		}

		if acted {
			continue
		}

		that.mu.Lock()
		if that.pending[gameID] && budget > 0 {
			that.pending[gameID] = false
			that.mu.Unlock()
			continue
		}
		delete(that.inFlight, gameID)
		that.mu.Unlock()
		return
	}
}

// step performs at most one bot action and reports whether it did anything.
func (that *botService) step(ctx context.Context, logger *slog.Logger, gameID string) bool {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return false
	}
	if !game.IsActive() {
		return false
	}

	if game.Phase == entity.PhaseAuction {
		return that.stepAuction(ctx, logger, game)
	}

	meta, ok := that.botFor(gameID, game.Turn)
	if !ok {
		return false
	}
	player, ok := game.Players[game.Turn]
	if !ok || !player.IsBot {
		return false
	}

	that.pause(game)

	switch game.Phase {
	case entity.PhaseBeforeRoll:
		return that.stepBeforeRoll(ctx, logger, game, player, meta)
	case entity.PhaseAfterRoll:
		return that.stepAfterRoll(ctx, logger, game, player, meta)
	default:
		return false
	}
}

func (that *botService) pause(game *entity.Game) {
	if !game.IsSimulation {
		time.Sleep(botDelay)
	}
}

func (that *botService) stepBeforeRoll(ctx context.Context, logger *slog.Logger, game *entity.Game, player *entity.Player, meta entity.BotMetadata) bool {
	if player.InJail {
		if player.GetOutOfJailFreeCards > 0 {
			if _, _, err := that.gameplay.UseJailCard(ctx, game.ID, player.ID); err == nil {
				return true
			}
		}
		if that.shouldPayBail(player, meta) {
			if _, _, err := that.gameplay.PayBail(ctx, game.ID, player.ID); err == nil {
				return true
			}
		}
	}

	if _, _, err := that.gameplay.Roll(ctx, game.ID, player.ID); err != nil {
		logger.Error("bot failed to roll", "error", err, "player_id", player.ID)
		return false
	}
	return true
}

// shouldPayBail: harder bots buy themselves out early to keep earning rent;
// easy bots sit and roll for doubles.
func (that *botService) shouldPayBail(player *entity.Player, meta entity.BotMetadata) bool {
	bail := that.engine.Settings().BailAmount

	switch meta.Difficulty {
	case board.DifficultyHard:
		return player.Money >= bail*4
	case board.DifficultyMedium:
		return player.Money >= bail*8
	default:
		return false
	}
}

func (that *botService) stepAfterRoll(ctx context.Context, logger *slog.Logger, game *entity.Game, player *entity.Player, meta entity.BotMetadata) bool {
	if player.InJail {
		// jail roll failed, nothing else to do this turn
		return that.endTurn(ctx, logger, game, player)
	}

	tile := board.TileAt(player.Position)
	if tile != nil && tile.IsPurchasable() && game.Owner(tile.ID) == "" {
		if that.shouldBuy(game, player, tile, meta) {
			if _, _, err := that.gameplay.BuyProperty(ctx, game.ID, player.ID, tile.ID); err == nil {
				return true
			}
		} else if that.engine.Settings().Auction {
			if _, _, err := that.gameplay.StartAuction(ctx, game.ID, player.ID, tile.ID); err == nil {
				return true
			}
		}
	}

	if tileID, ok := that.pickBuild(game, player, meta); ok {
		if _, _, err := that.gameplay.BuildHouse(ctx, game.ID, player.ID, tileID); err == nil {
			return true
		}
	}

	if meta.Difficulty == board.DifficultyHard {
		that.maybeProposeTrade(ctx, logger, game, player)
	}

	return that.endTurn(ctx, logger, game, player)
}

func (that *botService) endTurn(ctx context.Context, logger *slog.Logger, game *entity.Game, player *entity.Player) bool {
	if _, _, err := that.gameplay.EndTurn(ctx, game.ID, player.ID); err != nil {
		logger.Error("bot failed to end turn", "error", err, "player_id", player.ID)
		return false
	}
	return true
}

// shouldBuy applies the per-difficulty purchase policy to the tile the bot
// just landed on.
func (that *botService) shouldBuy(game *entity.Game, player *entity.Player, tile *board.Tile, meta entity.BotMetadata) bool {
	if player.Money < tile.Cost {
		return false
	}

	switch meta.Difficulty {
	case board.DifficultyHard:
		// always buy while a minimal cash buffer survives; completing a
		// group is worth going lower
		if that.completesGroup(game, player, tile) {
			return true
		}
		return player.Money-tile.Cost >= 1000
	case board.DifficultyMedium:
		return player.Money-tile.Cost >= 2000
	default:
		return player.Position%2 == 0 // cheap pseudo coin flip
	}
}

func (that *botService) completesGroup(game *entity.Game, player *entity.Player, tile *board.Tile) bool {
	if tile.Type != board.TypeProperty {
		return false
	}
	for _, sibling := range board.PropertiesInGroup(tile.Group) {
		if sibling.ID == tile.ID {
			continue
		}
		if game.Owner(sibling.ID) != player.ID {
			return false
		}
	}
	return true
}

// pickBuild chooses the cheapest buildable house on a monopoly the bot can
// afford while keeping its reserve.
func (that *botService) pickBuild(game *entity.Game, player *entity.Player, meta entity.BotMetadata) (int, bool) {
	reserve := 3000
	if meta.Difficulty == board.DifficultyHard {
		reserve = 1500
	}
	if meta.Difficulty == board.DifficultyEasy {
		return 0, false
	}

	best, bestCost := 0, 0
	for _, tileID := range player.Properties {
		tile := board.TileAt(tileID)
		state := game.PropertyStates[tileID]
		if tile == nil || state == nil || tile.Type != board.TypeProperty {
			continue
		}
		if state.Mortgaged || state.Level >= 5 {
			continue
		}
		if !game.HasMonopoly(player.ID, tile.Group) {
			continue
		}
		if player.Money-tile.HouseCost < reserve {
			continue
		}
		if best == 0 || tile.HouseCost < bestCost {
			best, bestCost = tileID, tile.HouseCost
		}
	}

	return best, best != 0
}

// stepAuction lets one bot bidder act: raise while the price stays under its
// valuation, pass otherwise.
func (that *botService) stepAuction(ctx context.Context, logger *slog.Logger, game *entity.Game) bool {
	auction := game.Auction
	if auction == nil {
		return false
	}

	tile := board.TileAt(auction.TileID)
	if tile == nil {
		return false
	}

	for _, bidderID := range auction.PlayersInAuction {
		meta, ok := that.botFor(game.ID, bidderID)
		if !ok {
			continue
		}
		if bidderID == auction.CurrentBidderID {
			continue // already winning, wait the others out
		}
		player, ok := game.Players[bidderID]
		if !ok {
			continue
		}

		that.pause(game)

		limit := that.auctionLimit(game, player, tile, meta)
		next := auction.CurrentBid + tile.Cost/10
		if next == auction.CurrentBid {
			next = auction.CurrentBid + 1
		}

		if next <= limit && player.Money >= next {
			if _, _, err := that.gameplay.PlaceBid(ctx, game.ID, bidderID, next); err != nil {
				logger.Error("bot failed to bid", "error", err, "player_id", bidderID)
				continue
			}
			return true
		}

		if _, _, err := that.gameplay.PassBid(ctx, game.ID, bidderID); err != nil {
			logger.Error("bot failed to pass", "error", err, "player_id", bidderID)
			continue
		}
		return true
	}

	return false
}

func (that *botService) auctionLimit(game *entity.Game, player *entity.Player, tile *board.Tile, meta entity.BotMetadata) int {
	switch meta.Difficulty {
	case board.DifficultyHard:
		if that.completesGroup(game, player, tile) {
			return tile.Cost * 13 / 10
		}
		return tile.Cost
	case board.DifficultyMedium:
		return tile.Cost * 8 / 10
	default:
		return tile.Cost / 2
	}
}

// maybeProposeTrade looks for a color group where the bot holds all but one
// tile and offers the holder a cash premium for it, throttled per pair.
func (that *botService) maybeProposeTrade(ctx context.Context, logger *slog.Logger, game *entity.Game, player *entity.Player) {
	target, ownerID, ok := that.missingGroupTile(game, player)
	if !ok {
		return
	}

	onCooldown, err := that.tradeRepo.OnCooldown(ctx, game.ID, player.ID, ownerID)
	if err != nil || onCooldown {
		return
	}

	offer := target.Cost * 3 / 2
	if player.Money < offer+1000 {
		return
	}

	_, err = that.trades.ProposeTrade(ctx, game.ID, player.ID, ownerID,
		entity.TradeOffer{Money: offer},
		entity.TradeOffer{Properties: []int{target.ID}},
	)
	if err != nil {
		logger.Error("bot failed to propose trade", "error", err, "player_id", player.ID)
		return
	}

	if err = that.tradeRepo.SetCooldown(ctx, game.ID, player.ID, ownerID, tradeCooldown); err != nil {
		logger.Error("failed to set trade cooldown", "error", err)
	}
}

func (that *botService) missingGroupTile(game *entity.Game, player *entity.Player) (*board.Tile, string, bool) {
	for _, group := range board.Groups() {
		tiles := board.PropertiesInGroup(group)

		owned := 0
		var foreign []*board.Tile
		for _, tile := range tiles {
			switch game.Owner(tile.ID) {
			case player.ID:
				owned++
			case "":
				// unowned tile: the group can still be bought outright
			default:
				foreign = append(foreign, tile)
			}
		}

		if owned != len(tiles)-1 || len(foreign) != 1 {
			continue
		}

		missing := foreign[0]
		state := game.PropertyStates[missing.ID]
		if state != nil && state.Level == 0 && !state.Mortgaged {
			return missing, state.Owner, true
		}
	}
	return nil, "", false
}

// OnTradeOffered makes a bot responder answer immediately: value both sides
// and accept when the margin clears its difficulty bar.
func (that *botService) OnTradeOffered(gameID string, trade *entity.Trade) {
	meta, ok := that.botFor(gameID, trade.ResponderID)
	if !ok {
		return
	}

	go func() {
		logger := that.logger.With("method", "OnTradeOffered", "game_id", gameID)

		ctx, cancel := context.WithTimeout(context.Background(), botActivationTimeout)
		defer cancel()

		game, err := that.gameRepo.GetByID(ctx, gameID)
		if err != nil {
			return
		}
		that.pause(game)

		gain := that.sideValue(trade.Offer)
		cost := that.sideValue(trade.Request)

		if gain*10 >= cost*that.acceptBar(meta) {
			if _, err = that.trades.AcceptTrade(ctx, gameID, trade.ID, trade.ResponderID); err != nil {
				logger.Error("bot failed to accept trade", "error", err)
			}
			return
		}

		if err = that.trades.DeclineTrade(ctx, gameID, trade.ID, trade.ResponderID); err != nil {
			logger.Error("bot failed to decline trade", "error", err)
		}
	}()
}

// acceptBar is the required gain/cost ratio in tenths.
func (that *botService) acceptBar(meta entity.BotMetadata) int {
	switch meta.Difficulty {
	case board.DifficultyHard:
		return 13
	case board.DifficultyMedium:
		return 11
	default:
		return 10
	}
}

func (that *botService) sideValue(side entity.TradeOffer) int {
	value := side.Money
	for _, tileID := range side.Properties {
		if tile := board.TileAt(tileID); tile != nil {
			value += tile.Cost
		}
	}
	value += side.GetOutOfJailFreeCards * that.engine.Settings().BailAmount
	return value
}

// OnTradeDeclined lets a hard bot proposer come back once with a sweetened
// cash offer; the pair cooldown stops endless haggling.
func (that *botService) OnTradeDeclined(gameID string, trade *entity.Trade) {
	meta, ok := that.botFor(gameID, trade.ProposerID)
	if !ok || meta.Difficulty != board.DifficultyHard {
		return
	}
	if len(trade.Offer.Properties) > 0 || trade.Offer.Money <= 0 {
		return
	}

	go func() {
		logger := that.logger.With("method", "OnTradeDeclined", "game_id", gameID)

		ctx, cancel := context.WithTimeout(context.Background(), botActivationTimeout)
		defer cancel()

		// the reversed pair slot marks that one retry already went out
		retried, err := that.tradeRepo.OnCooldown(ctx, gameID, trade.ResponderID, trade.ProposerID)
		if err != nil || retried {
			return
		}

		game, err := that.gameRepo.GetByID(ctx, gameID)
		if err != nil {
			return
		}
		player, ok := game.Players[trade.ProposerID]
		if !ok {
			return
		}

		sweetened := trade.Offer.Money * 12 / 10
		if player.Money < sweetened+1000 {
			return
		}
		that.pause(game)

		if err = that.tradeRepo.SetCooldown(ctx, gameID, trade.ResponderID, trade.ProposerID, tradeCooldown); err != nil {
			logger.Error("failed to mark trade retry", "error", err)
			return
		}

		_, err = that.trades.ProposeTrade(ctx, gameID, trade.ProposerID, trade.ResponderID,
			entity.TradeOffer{Money: sweetened}, trade.Request)
		if err != nil {
			logger.Error("bot failed to re-propose trade", "error", err)
		}
	}()
}
