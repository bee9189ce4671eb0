package models

import "time"

// Order is what remains of a cart after checkout.
type Order struct {
	ID         string     `json:"id"`
	UpstreamID int64      `json:"upstreamId,omitempty"`
	Username   string     `json:"username,omitempty"`
	Items      []LineItem `json:"items"`
	Summary    Summary    `json:"summary"`
	PlacedAt   time.Time  `json:"placedAt"`
}
