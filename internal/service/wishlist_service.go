package service

import (
	"context"

	"trendline/internal/domain"
	"trendline/internal/repository"

	"github.com/google/uuid"
)

// WishlistService defines the interface for wishlist business logic
type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistEntry, error) {
	return s.wishlistRepo.List(ctx, userID)
}

// Add saves a product to the wishlist. Saving an already-saved product is a
// no-op, not an error.
func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.wishlistRepo.Add(ctx, userID, productID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlistRepo.Remove(ctx, userID, productID)
}
