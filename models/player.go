package models

import (
	"strings"
	"time"
)

type Player struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Nickname  *string   `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers the nickname and falls back to the full name.
func (p *Player) DisplayName() string {
	if p.Nickname != nil && *p.Nickname != "" {
		return *p.Nickname
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
