package model

// Match is one ranked screening hit: a sanction record together with its
// similarity score against the query name. Score is in [0,100]; matches are
// ordered by score descending, ties keeping the sanction list's order.
type Match struct {
	SanctionID int64   `json:"sanction_id"`
	Name       string  `json:"name"`
	Country    string  `json:"country,omitempty"`
	Source     string  `json:"source,omitempty"`
	Score      float64 `json:"score"`
}
