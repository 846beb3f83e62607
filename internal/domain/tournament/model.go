package tournament

import "time"

// Tournament is a scheduled competition owned by the upstream service;
// the gateway only proxies CRUD operations.
type Tournament struct {
	ID        string
	Sport     string
	Name      string
	ClubID    string
	StartDate *time.Time
	EndDate   *time.Time
	CreatedBy string
}
