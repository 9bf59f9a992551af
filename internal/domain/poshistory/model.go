package poshistory

import "fmt"

// GameRecord is one game's worth of position assignments for a player.
type GameRecord struct {
	GameID    string   `json:"gameId"`
	Date      int64    `json:"date"`
	Positions []string `json:"positions"`
}

// History accumulates per-game position records for one player. It is
// append-only from the consuming feature's point of view; persistence
// treats it as an opaque record keyed by the player.
type History struct {
	ID        string       `json:"id"`
	PlayerID  string       `json:"playerId"`
	TeamID    string       `json:"teamId"`
	Games     []GameRecord `json:"games,omitempty"`
	CreatedAt int64        `json:"createdAt"`
	UpdatedAt int64        `json:"updatedAt"`
}

func (h History) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("position history id is required")
	}
	if h.PlayerID == "" {
		return fmt.Errorf("position history player id is required")
	}
	if h.TeamID == "" {
		return fmt.Errorf("position history team id is required")
	}

	return nil
}

func (h History) RecordID() string { return h.ID }

func (h History) ModifiedAt() int64 { return h.UpdatedAt }
