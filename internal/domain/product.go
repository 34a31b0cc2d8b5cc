package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Brand       string    `json:"brand" db:"brand"`
	SoldCount   int       `json:"sold_count" db:"sold_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Variants []*ProductVariant `json:"variants,omitempty" db:"-"`
	Images   []*ProductImage   `json:"images,omitempty" db:"-"`
}

// ProductVariant is a purchasable SKU of a product: one size/color/gender
// combination carrying its own stock count.
type ProductVariant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	ColorName string    `json:"color_name" db:"color_name"`
	ColorHex  string    `json:"color_hex" db:"color_hex"`
	Size      string    `json:"size" db:"size"`
	Gender    string    `json:"gender" db:"gender"`
	Stock     int       `json:"stock" db:"stock"`
	SKU       string    `json:"sku" db:"sku"`
}

// ProductImage is an uploaded image stored on disk and served statically.
type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	FilePath  string    `json:"file_path" db:"file_path"`
	Position  int       `json:"position" db:"position"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
