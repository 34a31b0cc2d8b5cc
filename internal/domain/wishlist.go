package domain

import (
	"time"

	"github.com/google/uuid"
)

// WishlistEntry is a saved product joined with its current catalog summary.
type WishlistEntry struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	ImagePath   string    `json:"image_path,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}
