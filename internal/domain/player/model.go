package player

import "fmt"

// Player is a roster member of one team.
type Player struct {
	ID                 string   `json:"id"`
	TeamID             string   `json:"teamId"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	JerseyNumber       string   `json:"jerseyNumber,omitempty"`
	PrimaryPositions   []string `json:"primaryPositions,omitempty"`
	SecondaryPositions []string `json:"secondaryPositions,omitempty"`
	Active             bool     `json:"active"`
	CreatedAt          int64    `json:"createdAt"`
	UpdatedAt          int64    `json:"updatedAt"`
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.FirstName == "" && p.LastName == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}

func (p Player) RecordID() string { return p.ID }

func (p Player) ModifiedAt() int64 { return p.UpdatedAt }
