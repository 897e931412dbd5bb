package model

import "time"

// CartLine mirrors the checkout item payload so a stored cart can be placed
// directly.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Color     string `json:"color,omitempty"`
}

// Cart lives only in Redis, keyed by user id, with a TTL. It is storefront
// convenience state; order placement takes its items from the request body.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}
