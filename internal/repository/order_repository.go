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
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// InsufficientStockError reports which product could not be fulfilled.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateFromCart converts the user's cart into an order inside one
	// transaction: conditional stock decrements, the order header, item
	// snapshots, sold counters, and the cart wipe all commit or roll back
	// together.
	CreateFromCart(ctx context.Context, userID, addressID uuid.UUID, paymentMethod, notes string) (*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// FindByIDForUser behaves like FindByID but only sees the user's own
	// orders; someone else's order looks missing.
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error)
	// UpdateStatus applies one allowed transition. Cancelling restocks the
	// order's variants in the same transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, address_id, status, payment_method, notes, total, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.AddressID,
		&order.Status,
		&order.PaymentMethod,
		&order.Notes,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	return order, err
}

type checkoutLine struct {
	productID   uuid.UUID
	variantID   uuid.UUID
	productName string
	colorName   string
	size        string
	quantity    int
	unitPrice   float64
	stock       int
}

// CreateFromCart runs the whole checkout in a single transaction.
func (r *orderRepository) CreateFromCart(ctx context.Context, userID, addressID uuid.UUID, paymentMethod, notes string) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartEmpty
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, ci.variant_id, p.name, v.color_name, v.size, ci.quantity, p.price, v.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN product_variants v ON v.id = ci.variant_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}

	lines := []checkoutLine{}
	for rows.Next() {
		var l checkoutLine
		if err := rows.Scan(&l.productID, &l.variantID, &l.productName, &l.colorName, &l.size, &l.quantity, &l.unitPrice, &l.stock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	// Conditional decrement: zero rows affected means another checkout got the
	// stock first, so the whole order rolls back instead of overselling.
	var total float64
	for _, l := range lines {
		result, err := tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, l.quantity, l.variantID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, &InsufficientStockError{
				ProductName: l.productName,
				Requested:   l.quantity,
				Available:   l.stock,
			}
		}

		total += l.unitPrice * float64(l.quantity)
	}

	now := time.Now()
	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        userID,
		AddressID:     addressID,
		Status:        domain.OrderStatusPending,
		PaymentMethod: paymentMethod,
		Notes:         notes,
		Total:         total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, address_id, status, payment_method, notes, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, order.ID, order.UserID, order.AddressID, order.Status, order.PaymentMethod, order.Notes, order.Total, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, l := range lines {
		item := &domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   l.productID,
			VariantID:   l.variantID,
			ProductName: l.productName,
			ColorName:   l.colorName,
			Size:        l.size,
			Quantity:    l.quantity,
			UnitPrice:   l.unitPrice,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, variant_id, product_name, color_name, size, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, item.ID, item.OrderID, item.ProductID, item.VariantID, item.ProductName, item.ColorName, item.Size, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products SET sold_count = sold_count + $1 WHERE id = $2
		`, l.quantity, l.productID)
		if err != nil {
			return nil, fmt.Errorf("failed to update sold count: %w", err)
		}

		order.Items = append(order.Items, item)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	return order, nil
}

// FindByID retrieves an order with its items.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// FindByIDForUser retrieves an order only when it belongs to the user.
func (r *orderRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, product_name, color_name, size, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.ProductName,
			&item.ColorName,
			&item.Size,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// ListByUser returns the user's orders newest first, without items.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListAll returns orders across all users with optional status filtering.
func (r *orderRepository) ListAll(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if status != nil {
		whereClause = fmt.Sprintf("WHERE status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT `+orderColumns+`
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus validates the transition against the current row under lock and
// applies it. Cancelling returns the reserved stock to the variants.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if next == domain.OrderStatusCancelled {
		_, err = tx.ExecContext(ctx, `
			UPDATE product_variants v
			SET stock = stock + oi.quantity
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.variant_id = v.id
		`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to restock variants: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products p
			SET sold_count = sold_count - oi.quantity
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id
		`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to adjust sold counts: %w", err)
		}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, id, next, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	order.Status = next
	order.UpdatedAt = now
	return order, nil
}
