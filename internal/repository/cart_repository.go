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
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access.
//
// Line merging is pushed into the database: cart_items carries a unique
// constraint on (cart_id, product_id, variant_id) and AddItem upserts against
// it, so two concurrent adds for the same variant produce one merged line
// instead of duplicates.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating it on first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	// Lines returns the cart's items joined with product, variant, and first
	// image data.
	Lines(ctx context.Context, cartID uuid.UUID) ([]*domain.CartLine, error)
	// AddItem inserts a line or increments the existing one atomically, and
	// returns the resulting quantity.
	AddItem(ctx context.Context, cartID, productID, variantID uuid.UUID, quantity int) (int, error)
	// QuantityOf returns the quantity currently in the cart for a variant,
	// zero when absent.
	QuantityOf(ctx context.Context, cartID, variantID uuid.UUID) (int, error)
	// FindItemOwned returns the item only when it belongs to the user's cart.
	FindItemOwned(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error)
	// UpdateItemQuantity overwrites the quantity of an item the user owns.
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	// RemoveItem deletes an item the user owns.
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	// Clear deletes all items from the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreate finds or lazily creates the user's single cart. The insert races
// safely against concurrent first requests: ON CONFLICT (user_id) DO NOTHING
// plus the follow-up select always converge on one row.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart := &domain.Cart{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return cart, nil
}

// Lines returns enriched cart lines, newest last.
func (r *cartRepository) Lines(ctx context.Context, cartID uuid.UUID) ([]*domain.CartLine, error) {
	query := `
		SELECT ci.id, ci.product_id, ci.variant_id,
		       p.name, p.brand, p.price,
		       v.color_name, v.size, v.stock,
		       ci.quantity,
		       COALESCE((
		           SELECT pi.file_path FROM product_images pi
		           WHERE pi.product_id = p.id
		           ORDER BY pi.position ASC LIMIT 1
		       ), '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN product_variants v ON v.id = ci.variant_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.CartLine{}
	for rows.Next() {
		line := &domain.CartLine{}
		err := rows.Scan(
			&line.ItemID,
			&line.ProductID,
			&line.VariantID,
			&line.ProductName,
			&line.Brand,
			&line.UnitPrice,
			&line.ColorName,
			&line.Size,
			&line.Stock,
			&line.Quantity,
			&line.ImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		line.LineTotal = line.UnitPrice * float64(line.Quantity)
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// AddItem performs the atomic insert-or-increment upsert.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID, variantID uuid.UUID, quantity int) (int, error) {
	var resulting int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, variant_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (cart_id, product_id, variant_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING quantity
	`, uuid.New(), cartID, productID, variantID, quantity, time.Now()).Scan(&resulting)

	if err != nil {
		if foreignKeyViolation(err) {
			return 0, ErrVariantNotFound
		}
		return 0, fmt.Errorf("failed to add cart item: %w", err)
	}

	return resulting, nil
}

// QuantityOf returns how many units of the variant are already in the cart.
func (r *cartRepository) QuantityOf(ctx context.Context, cartID, variantID uuid.UUID) (int, error) {
	var quantity int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM cart_items
		WHERE cart_id = $1 AND variant_id = $2
	`, cartID, variantID).Scan(&quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to read cart quantity: %w", err)
	}
	return quantity, nil
}

// FindItemOwned joins through carts so an item ID belonging to another user
// behaves exactly like a missing item.
func (r *cartRepository) FindItemOwned(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.variant_id, ci.quantity, ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE ci.id = $1 AND c.user_id = $2
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, itemID, userID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.VariantID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// UpdateItemQuantity overwrites the quantity; the ownership predicate is part
// of the mutating query itself.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items ci
		SET quantity = $3, updated_at = $4
		FROM carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, itemID, userID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// RemoveItem deletes a single item the user owns.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Clear removes every item from the user's cart. The cart row itself stays.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
