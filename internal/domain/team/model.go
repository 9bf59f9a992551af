package team

import "fmt"

// Team is the ownership root for players, games, lineups and practices.
// Child entities reference it by ID; Team stores no reverse pointers.
type Team struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	AgeGroup  string            `json:"ageGroup"`
	Season    string            `json:"season"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt int64             `json:"createdAt"`
	UpdatedAt int64             `json:"updatedAt"`
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

func (t Team) RecordID() string { return t.ID }

func (t Team) ModifiedAt() int64 { return t.UpdatedAt }
