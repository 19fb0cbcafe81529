package board

import "time"

// Bot difficulty tiers.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Settings struct {
	InitialPlayerMoney      int
	BailAmount              int
	PassGoAmount            int
	OnGoAmount              int // extra bonus for landing exactly on Start
	UnmortgageInterestRate  float64
	Mortgage                bool // whether mortgaging is part of bot liquidation
	Auction                 bool
	DoubleRentOnMonopoly    bool
	BotDifficulty           string
	MaxPlayers              int
	TurnTimeLimit           time.Duration
	TradeLifetime           time.Duration
	UtilityRentMultiplier   int // dice total multiplier with one utility
	UtilityRentMultiplierX2 int // dice total multiplier with both utilities
}

func DefaultSettings() Settings {
	return Settings{
		InitialPlayerMoney:      15000,
		BailAmount:              500,
		PassGoAmount:            2000,
		OnGoAmount:              1000,
		UnmortgageInterestRate:  0.05,
		Mortgage:                false,
		Auction:                 true,
		DoubleRentOnMonopoly:    true,
		BotDifficulty:           DifficultyHard,
		MaxPlayers:              4,
		TurnTimeLimit:           30 * time.Second,
		TradeLifetime:           60 * time.Second,
		UtilityRentMultiplier:   40,
		UtilityRentMultiplierX2: 100,
	}
}
