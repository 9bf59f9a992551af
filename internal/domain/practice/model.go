package practice

import "fmt"

// Practice is a training session for a team.
type Practice struct {
	ID              string `json:"id"`
	TeamID          string `json:"teamId"`
	Date            int64  `json:"date"`
	Location        string `json:"location,omitempty"`
	Focus           string `json:"focus,omitempty"`
	Notes           string `json:"notes,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
}

func (p Practice) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("practice id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("practice team id is required")
	}
	if p.Date <= 0 {
		return fmt.Errorf("practice date is required")
	}

	return nil
}

func (p Practice) RecordID() string { return p.ID }

func (p Practice) ModifiedAt() int64 { return p.UpdatedAt }
