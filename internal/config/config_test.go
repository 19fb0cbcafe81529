package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte(`log-level: "debug"
http-port: "9191"
socket-port: "8181"

redis:
  host: "redis.local"
  port: "6380"

game:
  max-players: 6
  bot-difficulty: "easy"
  turn-time-limit-seconds: 45
  trade-lifetime-seconds: 90
  mortgage-enabled: true
  auction-enabled: false
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	config := MustLoad(path)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "9191", config.HTTPPort)
	assert.Equal(t, "redis.local:6380", config.Redis.GetRedisAddr())
	assert.Equal(t, 6, config.Game.MaxPlayers)
}

func TestGameSettings(t *testing.T) {
	game := Game{
		MaxPlayers:           6,
		BotDifficulty:        "easy",
		TurnTimeLimitSeconds: 45,
		TradeLifetimeSeconds: 90,
		MortgageEnabled:      true,
		AuctionEnabled:       false,
	}

	settings := game.Settings()

	assert.Equal(t, 6, settings.MaxPlayers)
	assert.Equal(t, "easy", settings.BotDifficulty)
	assert.Equal(t, 45*time.Second, settings.TurnTimeLimit)
	assert.Equal(t, 90*time.Second, settings.TradeLifetime)
	assert.True(t, settings.Mortgage)
	assert.False(t, settings.Auction)
	// rule defaults stay untouched
	assert.Equal(t, 15000, settings.InitialPlayerMoney)
	assert.Equal(t, 2000, settings.PassGoAmount)
}
