package models

import "time"

type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Sport     string    `json:"sport,omitempty"`
	CaptainID *int      `json:"captain_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
