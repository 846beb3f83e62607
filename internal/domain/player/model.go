package player

import "time"

// Player mirrors the upstream players endpoint.
type Player struct {
	ID          string
	Name        string
	CountryCode string
	ClubID      string
	Hidden      bool
	CreatedAt   *time.Time
}
