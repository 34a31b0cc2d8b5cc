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
	ErrAddressNotFound = errors.New("address not found")
)

// AddressRepository defines the interface for shipping address data access.
// Every mutating query carries the owning user in its predicate, so an address
// ID belonging to another user is indistinguishable from a missing one.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error)
	// Create inserts a new address. The user's first address becomes the
	// default; address.IsDefault reports the outcome.
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// SetDefault atomically moves the is_default flag: all other rows of the
	// user are unset and the target set inside one transaction.
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, recipient, line1, line2, city, postal_code, phone, is_default, created_at`

func scanAddress(row interface{ Scan(...any) error }) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Recipient,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.PostalCode,
		&a.Phone,
		&a.IsDefault,
		&a.CreatedAt,
	)
	return a, err
}

// ListByUser returns the user's addresses, default first.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// FindOwned retrieves an address only when it belongs to the user.
func (r *addressRepository) FindOwned(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	address, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}

	return address, nil
}

// Create inserts a new address. Whether the row becomes the default is decided
// in the INSERT itself: the user's first address claims the flag, and the
// partial unique index on (user_id) WHERE is_default picks a single winner
// when two first inserts race. The loser retries once as a regular address.
func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, recipient, line1, line2, city, postal_code, phone, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $2 AND is_default),
			$9)
		RETURNING is_default
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		address.ID,
		address.UserID,
		address.Recipient,
		address.Line1,
		address.Line2,
		address.City,
		address.PostalCode,
		address.Phone,
		address.CreatedAt,
	).Scan(&address.IsDefault)

	if uniqueViolation(err) {
		err = r.db.QueryRowContext(ctx, `
			INSERT INTO addresses (id, user_id, recipient, line1, line2, city, postal_code, phone, is_default, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
			RETURNING is_default`,
			address.ID,
			address.UserID,
			address.Recipient,
			address.Line1,
			address.Line2,
			address.City,
			address.PostalCode,
			address.Phone,
			address.CreatedAt,
		).Scan(&address.IsDefault)
	}

	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// Update modifies an address the user owns
func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	query := `
		UPDATE addresses
		SET recipient = $3, line1 = $4, line2 = $5, city = $6, postal_code = $7, phone = $8
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.UserID,
		address.Recipient,
		address.Line1,
		address.Line2,
		address.City,
		address.PostalCode,
		address.Phone,
	)

	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// Delete removes an address the user owns
func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// SetDefault unsets the flag across the user's rows, then sets the target, in
// one transaction so no interleaving can leave two defaults.
func (r *addressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default = TRUE`, userID); err != nil {
		return fmt.Errorf("failed to unset default addresses: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default address change: %w", err)
	}

	return nil
}
