package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trendline/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound = errors.New("product image not found")
)

// ImageRepository defines the interface for product image metadata access.
// The files themselves live on disk; this repository only tracks their paths.
type ImageRepository interface {
	Add(ctx context.Context, image *domain.ProductImage) error
	// Delete removes the image row for the given product and returns the file
	// path so the caller can unlink it.
	Delete(ctx context.Context, productID, imageID uuid.UUID) (string, error)
	NextPosition(ctx context.Context, productID uuid.UUID) (int, error)
}

type imageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *sql.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Add inserts a new image row
func (r *imageRepository) Add(ctx context.Context, image *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, file_path, position)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, image.ID, image.ProductID, image.FilePath, image.Position)
	if err != nil {
		if foreignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add product image: %w", err)
	}

	return nil
}

// Delete removes the image row, scoped to the product so an image ID cannot be
// detached from someone else's product.
func (r *imageRepository) Delete(ctx context.Context, productID, imageID uuid.UUID) (string, error) {
	var filePath string
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM product_images
		WHERE id = $1 AND product_id = $2
		RETURNING file_path
	`, imageID, productID).Scan(&filePath)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrImageNotFound
		}
		return "", fmt.Errorf("failed to delete product image: %w", err)
	}

	return filePath, nil
}

// NextPosition returns the append position for a new image of the product.
func (r *imageRepository) NextPosition(ctx context.Context, productID uuid.UUID) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0)
		FROM product_images
		WHERE product_id = $1
	`, productID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute image position: %w", err)
	}
	return next, nil
}
