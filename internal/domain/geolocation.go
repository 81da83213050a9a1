package domain

import "time"

// UpsertOutcome reports which branch of an upsert fired at the storage engine.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)

// Geolocation is the persisted record for a single IP address, optionally
// bound to a registrable domain. IP is the conflict key for storage; URL is a
// secondary non-unique lookup field. Timestamps are server-assigned.
type Geolocation struct {
	IP         string    `json:"ip"`
	URL        *string   `json:"url"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	City       string    `json:"city"`
	Region     string    `json:"region"`
	Country    string    `json:"country"`
	Continent  string    `json:"continent"`
	PostalCode string    `json:"postal_code"`
	Timezone   string    `json:"timezone"`
	ISP        string    `json:"isp"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
