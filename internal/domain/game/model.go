package game

import "fmt"

// Status tracks a game through its lifecycle.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCanceled:
		return Status(v), nil
	default:
		return "", fmt.Errorf("invalid game status %q", v)
	}
}

// Game is a single scheduled or played game for a team.
// LineupID is set by the caller once a lineup exists for the game; deleting
// a game does not cascade here, that is the calling layer's job.
type Game struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId"`
	Opponent  string `json:"opponent"`
	Date      int64  `json:"date"`
	Location  string `json:"location,omitempty"`
	Innings   int    `json:"innings"`
	Status    Status `json:"status"`
	LineupID  string `json:"lineupId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.TeamID == "" {
		return fmt.Errorf("game team id is required")
	}
	if g.Date <= 0 {
		return fmt.Errorf("game date is required")
	}
	if _, err := ParseStatus(string(g.Status)); err != nil {
		return err
	}

	return nil
}

func (g Game) RecordID() string { return g.ID }

func (g Game) ModifiedAt() int64 { return g.UpdatedAt }
