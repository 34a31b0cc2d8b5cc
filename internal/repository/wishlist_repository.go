package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trendline/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrWishlistEntryNotFound = errors.New("wishlist entry not found")
)

// WishlistRepository defines the interface for wishlist data access
type WishlistRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error)
	// Add is idempotent: adding an already-saved product is a no-op.
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// List returns saved products joined with their current catalog summary.
func (r *wishlistRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error) {
	query := `
		SELECT w.product_id, p.name, p.brand, p.price,
		       COALESCE((
		           SELECT pi.file_path FROM product_images pi
		           WHERE pi.product_id = p.id
		           ORDER BY pi.position ASC LIMIT 1
		       ), ''),
		       w.created_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	entries := []*domain.WishlistEntry{}
	for rows.Next() {
		entry := &domain.WishlistEntry{}
		err := rows.Scan(
			&entry.ProductID,
			&entry.ProductName,
			&entry.Brand,
			&entry.Price,
			&entry.ImagePath,
			&entry.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist: %w", err)
	}

	return entries, nil
}

// Add saves a product, ignoring duplicates via the unique constraint.
func (r *wishlistRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		INSERT INTO wishlist_items (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, userID, productID, time.Now())
	if err != nil {
		if foreignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add wishlist entry: %w", err)
	}

	return nil
}

// Remove deletes a saved product
func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrWishlistEntryNotFound
	}

	return nil
}
