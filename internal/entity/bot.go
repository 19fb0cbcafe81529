package entity

// BotMetadata is the durable record of a bot attached to a game, enough to
// rebuild its controller after a process restart.
type BotMetadata struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}
