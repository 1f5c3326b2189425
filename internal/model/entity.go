package model

import "time"

// Entity represents a counterparty name to be screened against sanction lists.
type Entity struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
