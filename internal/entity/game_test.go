package entity

import (
	"math/rand"
	"testing"

	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_NextActivePlayer(t *testing.T) {
	newGame := func() *Game {
		game := NewGame("game-1")
		for _, id := range []string{"a", "b", "c"} {
			game.Players[id] = NewPlayer(id, id, false, 15000)
			game.Order = append(game.Order, id)
		}
		return game
	}

	t.Run("walks the order in a circle", func(t *testing.T) {
		game := newGame()

		assert.Equal(t, "b", game.NextActivePlayer("a"))
		assert.Equal(t, "c", game.NextActivePlayer("b"))
		assert.Equal(t, "a", game.NextActivePlayer("c"))
	})

	t.Run("skips bankrupt players", func(t *testing.T) {
		game := newGame()
		game.Players["b"].Status = PlayerBankrupt

		assert.Equal(t, "c", game.NextActivePlayer("a"))
	})

	t.Run("starts from the head when the player left the order", func(t *testing.T) {
		game := newGame()
		game.RemoveFromOrder("a")

		assert.Equal(t, "b", game.NextActivePlayer("a"))
	})

	t.Run("returns empty when nobody remains", func(t *testing.T) {
		game := newGame()
		for _, player := range game.Players {
			player.Status = PlayerBankrupt
		}

		assert.Empty(t, game.NextActivePlayer("a"))
	})
}

func TestGame_DrawFrom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	t.Run("a full cycle yields every card exactly once", func(t *testing.T) {
		// Given: a fresh game with an empty draw queue
		game := NewGame("game-1")
		deckSize := len(board.ChanceCards)

		// When: the deck is drawn through completely
		seen := make(map[int]int)
		for i := 0; i < deckSize; i++ {
			seen[game.DrawFrom(board.DeckChance, rng)]++
		}

		// Then: all cards came up once, none lost or duplicated
		require.Len(t, seen, deckSize)
		for _, card := range board.ChanceCards {
			assert.Equal(t, 1, seen[card.ID])
		}
	})

	t.Run("drawn cards cycle to the back of the queue", func(t *testing.T) {
		game := NewGame("game-1")
		deckSize := len(board.ChanceCards)

		first := game.DrawFrom(board.DeckChance, rng)
		for i := 0; i < deckSize-1; i++ {
			game.DrawFrom(board.DeckChance, rng)
		}

		// the deck wrapped around without a reshuffle losing anything
		assert.Equal(t, first, game.DrawFrom(board.DeckChance, rng))
		assert.Len(t, game.Deck.Chance, deckSize)
	})

	t.Run("decks draw independently", func(t *testing.T) {
		game := NewGame("game-1")

		game.DrawFrom(board.DeckChance, rng)
		game.DrawFrom(board.DeckCommunity, rng)

		assert.Len(t, game.Deck.Chance, len(board.ChanceCards))
		assert.Len(t, game.Deck.Community, len(board.CommunityCards))
	})
}

func TestGame_TailEvents(t *testing.T) {
	t.Run("keeps a short log as-is", func(t *testing.T) {
		game := NewGame("game-1")
		for i := 0; i < 3; i++ {
			game.AppendEvent(NewEvent(EventRoll))
		}

		assert.Len(t, game.TailEvents(), 3)
	})

	t.Run("bounds a long log to its tail", func(t *testing.T) {
		game := NewGame("game-1")
		for i := 0; i < 25; i++ {
			event := NewEvent(EventRoll)
			event.Steps = i
			game.AppendEvent(event)
		}

		tail := game.TailEvents()
		require.Len(t, tail, eventLogTail)
		assert.Equal(t, 24, tail[len(tail)-1].Steps)
		assert.Equal(t, 25-eventLogTail, tail[0].Steps)
	})
}

func TestGame_HasMonopoly(t *testing.T) {
	game := NewGame("game-1")
	game.Players["a"] = NewPlayer("a", "a", false, 15000)

	game.PropertyStates[38] = &PropertyState{Owner: "a"}
	assert.False(t, game.HasMonopoly("a", "TREK"))

	game.PropertyStates[40] = &PropertyState{Owner: "a"}
	assert.True(t, game.HasMonopoly("a", "TREK"))

	assert.False(t, game.HasMonopoly("a", "no-such-group"))
}

func TestGame_RecountAssets(t *testing.T) {
	// Given: a player holding a developed property, a mortgaged one and a route
	game := NewGame("game-1")
	player := NewPlayer("a", "a", false, 15000)
	game.Players["a"] = player
	player.Properties = []int{2, 3, 6}
	game.PropertyStates[2] = &PropertyState{Owner: "a", Level: 2}
	game.PropertyStates[3] = &PropertyState{Owner: "a", Mortgaged: true}
	game.PropertyStates[6] = &PropertyState{Owner: "a"}

	// When: assets are recomputed
	game.RecountAssets(player)

	// Then: houses count at build cost, mortgaged tiles at mortgage value
	assert.Equal(t, 1500+1500, player.Assets.Properties)
	assert.Equal(t, 2*550, player.Assets.Houses)
	assert.Equal(t, 2000, player.Assets.Routes)
	assert.Equal(t, 1500+2*550+750+2000, player.Assets.TotalValue)
}

func TestPlayer_HasDebt(t *testing.T) {
	player := NewPlayer("a", "a", false, 0)
	assert.False(t, player.HasDebt())

	player.DebtAmount = 100
	assert.True(t, player.HasDebt())

	player.DebtAmount = 0
	player.Money = -50
	assert.True(t, player.HasDebt())
}
