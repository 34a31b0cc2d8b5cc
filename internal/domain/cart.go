package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's single open cart, created lazily on first access.
// One row per user, enforced by a unique constraint on user_id.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem is one pending purchase line. At most one row exists per
// (cart_id, product_id, variant_id), enforced by a unique constraint so that
// concurrent adds merge instead of duplicating.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	VariantID uuid.UUID `json:"variant_id" db:"variant_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart item joined with live product and variant data for display.
type CartLine struct {
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand"`
	ColorName   string    `json:"color_name"`
	Size        string    `json:"size"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   float64   `json:"line_total"`
	Stock       int       `json:"stock"`
	ImagePath   string    `json:"image_path,omitempty"`
}
