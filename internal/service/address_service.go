package service

import (
	"context"
	"time"

	"trendline/internal/domain"
	"trendline/internal/repository"

	"github.com/google/uuid"
)

// AddressService defines the interface for shipping address business logic
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	Create(ctx context.Context, address *domain.Address) (*domain.Address, error)
	Update(ctx context.Context, address *domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService creates a new instance of AddressService
func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	return s.addressRepo.ListByUser(ctx, userID)
}

// Create stores a new address. The user's first address becomes the default
// automatically so checkout always has one to preselect; the repository
// decides that inside the insert so concurrent creates cannot mint two.
func (s *addressService) Create(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	address.ID = uuid.New()
	address.CreatedAt = time.Now()

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

func (s *addressService) Update(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, err
	}
	return s.addressRepo.FindOwned(ctx, address.UserID, address.ID)
}

// Delete removes an address. When the default is deleted the oldest remaining
// address is promoted so the user keeps exactly one default.
func (s *addressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	address, err := s.addressRepo.FindOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.addressRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	if address.IsDefault {
		remaining, err := s.addressRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			return s.addressRepo.SetDefault(ctx, userID, remaining[0].ID)
		}
	}

	return nil
}

func (s *addressService) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return s.addressRepo.SetDefault(ctx, userID, id)
}
