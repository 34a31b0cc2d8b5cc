package service

import (
	"context"
	"errors"
	"fmt"

	"trendline/internal/domain"
	"trendline/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrVariantMismatch = errors.New("variant does not belong to this product")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CartView is the cart as returned to clients: the cart id, its enriched
// lines, and the running total.
type CartView struct {
	CartID uuid.UUID          `json:"cart_id"`
	Lines  []*domain.CartLine `json:"lines"`
	Total  float64            `json:"total"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	// AddItem validates the variant against the product and the requested
	// quantity against remaining stock, then merges the line atomically.
	AddItem(ctx context.Context, userID, productID, variantID uuid.UUID, quantity int) (*CartView, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

func (s *cartService) view(ctx context.Context, cartID uuid.UUID) (*CartView, error) {
	lines, err := s.cartRepo.Lines(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &CartView{CartID: cartID, Lines: lines}
	for _, line := range lines {
		view.Total += line.LineTotal
	}
	return view, nil
}

// GetCart finds or creates the user's cart and returns its lines.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

// AddItem adds quantity units of a variant to the cart.
func (s *cartService) AddItem(ctx context.Context, userID, productID, variantID uuid.UUID, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	variant, err := s.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.ProductID != productID {
		return nil, ErrVariantMismatch
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Stock check covers what is already in the cart, not just this request.
	// The checkout transaction remains the final arbiter; this keeps obviously
	// unfulfillable carts from forming.
	inCart, err := s.cartRepo.QuantityOf(ctx, cart.ID, variantID)
	if err != nil {
		return nil, err
	}
	if inCart+quantity > variant.Stock {
		product, perr := s.productRepo.FindByID(ctx, productID)
		name := variant.SKU
		if perr == nil {
			name = product.Name
		}
		return nil, &repository.InsufficientStockError{
			ProductName: name,
			Requested:   inCart + quantity,
			Available:   variant.Stock,
		}
	}

	if _, err := s.cartRepo.AddItem(ctx, cart.ID, productID, variantID, quantity); err != nil {
		return nil, err
	}

	return s.view(ctx, cart.ID)
}

// UpdateItem overwrites a line's quantity, subject to ownership and stock.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.FindItemOwned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	variant, err := s.variantRepo.FindByID(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if quantity > variant.Stock {
		product, perr := s.productRepo.FindByID(ctx, item.ProductID)
		name := variant.SKU
		if perr == nil {
			name = product.Name
		}
		return nil, &repository.InsufficientStockError{
			ProductName: name,
			Requested:   quantity,
			Available:   variant.Stock,
		}
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}

	return s.view(ctx, item.CartID)
}

// RemoveItem deletes one line from the user's cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error) {
	item, err := s.cartRepo.FindItemOwned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.RemoveItem(ctx, userID, itemID); err != nil {
		return nil, err
	}

	return s.view(ctx, item.CartID)
}

// Clear empties the user's cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
