package model

import "time"

// Sanction is one record from a sanction or watch list. Country and Source
// are short tags (e.g. "RU", "OFAC") and may be empty depending on the list.
type Sanction struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
