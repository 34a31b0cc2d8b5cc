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
	ErrVariantNotFound      = errors.New("product variant not found")
	ErrVariantAlreadyExists = errors.New("variant with this SKU already exists")
)

// VariantRepository defines the interface for product variant data access
type VariantRepository interface {
	Create(ctx context.Context, variant *domain.ProductVariant) error
	Update(ctx context.Context, variant *domain.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error)
}

type variantRepository struct {
	db *sql.DB
}

// NewVariantRepository creates a new instance of VariantRepository
func NewVariantRepository(db *sql.DB) VariantRepository {
	return &variantRepository{db: db}
}

// Create inserts a new variant. The referenced product must exist.
func (r *variantRepository) Create(ctx context.Context, variant *domain.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, product_id, color_name, color_hex, size, gender, stock, sku)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.ProductID,
		variant.ColorName,
		variant.ColorHex,
		variant.Size,
		variant.Gender,
		variant.Stock,
		variant.SKU,
	)

	if err != nil {
		if uniqueViolation(err) {
			return ErrVariantAlreadyExists
		}
		if foreignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create variant: %w", err)
	}

	return nil
}

// Update modifies variant attributes and stock
func (r *variantRepository) Update(ctx context.Context, variant *domain.ProductVariant) error {
	query := `
		UPDATE product_variants
		SET color_name = $2, color_hex = $3, size = $4, gender = $5, stock = $6, sku = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.ColorName,
		variant.ColorHex,
		variant.Size,
		variant.Gender,
		variant.Stock,
		variant.SKU,
	)

	if err != nil {
		if uniqueViolation(err) {
			return ErrVariantAlreadyExists
		}
		return fmt.Errorf("failed to update variant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrVariantNotFound
	}

	return nil
}

// Delete removes a variant
func (r *variantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrVariantNotFound
	}

	return nil
}

// FindByID retrieves a variant by ID
func (r *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	query := `
		SELECT id, product_id, color_name, color_hex, size, gender, stock, sku
		FROM product_variants
		WHERE id = $1
	`

	v := &domain.ProductVariant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.ProductID,
		&v.ColorName,
		&v.ColorHex,
		&v.Size,
		&v.Gender,
		&v.Stock,
		&v.SKU,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find variant by ID: %w", err)
	}

	return v, nil
}
