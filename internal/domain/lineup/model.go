package lineup

import "fmt"

// Assignment places one player at one position.
type Assignment struct {
	Position string `json:"position"`
	PlayerID string `json:"playerId"`
}

// Inning is the assignment set for a single inning of a game lineup.
type Inning struct {
	Inning      int          `json:"inning"`
	Assignments []Assignment `json:"assignments"`
}

// Lineup is either a game lineup (GameID set, per-inning assignments) or a
// reusable template (no GameID, a single assignment set, optionally the
// team default).
type Lineup struct {
	ID          string       `json:"id"`
	TeamID      string       `json:"teamId"`
	GameID      string       `json:"gameId,omitempty"`
	Innings     []Inning     `json:"innings,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty"`
	Status      string       `json:"status,omitempty"`
	IsDefault   bool         `json:"isDefault,omitempty"`
	CreatedAt   int64        `json:"createdAt"`
	UpdatedAt   int64        `json:"updatedAt"`
}

// IsTemplate reports whether the lineup is a reusable non-game lineup.
func (l Lineup) IsTemplate() bool { return l.GameID == "" }

func (l Lineup) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("lineup id is required")
	}
	if l.TeamID == "" {
		return fmt.Errorf("lineup team id is required")
	}
	if l.GameID != "" && l.IsDefault {
		return fmt.Errorf("game lineups cannot be the team default")
	}

	return nil
}

func (l Lineup) RecordID() string { return l.ID }

func (l Lineup) ModifiedAt() int64 { return l.UpdatedAt }
