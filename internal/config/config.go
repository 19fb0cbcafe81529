package config

import (
	"fmt"
	"time"

	"github.com/himalgames/monopoly-backend/internal/board"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	MaxPlayers           int    `yaml:"max-players" env-default:"4"`
	BotDifficulty        string `yaml:"bot-difficulty" env-default:"hard"`
	TurnTimeLimitSeconds int    `yaml:"turn-time-limit-seconds" env-default:"30"`
	TradeLifetimeSeconds int    `yaml:"trade-lifetime-seconds" env-default:"60"`
	MortgageEnabled      bool   `yaml:"mortgage-enabled" env-default:"false"`
	AuctionEnabled       bool   `yaml:"auction-enabled" env-default:"true"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Settings applies the configured overrides on top of the rule defaults.
func (that *Game) Settings() board.Settings {
	settings := board.DefaultSettings()
	settings.MaxPlayers = that.MaxPlayers
	settings.BotDifficulty = that.BotDifficulty
	settings.TurnTimeLimit = time.Duration(that.TurnTimeLimitSeconds) * time.Second
	settings.TradeLifetime = time.Duration(that.TradeLifetimeSeconds) * time.Second
	settings.Mortgage = that.MortgageEnabled
	settings.Auction = that.AuctionEnabled
	return settings
}
