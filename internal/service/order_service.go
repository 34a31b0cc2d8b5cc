package service

import (
	"context"

	"trendline/internal/domain"
	"trendline/internal/mailer"
	"trendline/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService defines the interface for checkout and order business logic
type OrderService interface {
	// Checkout converts the user's cart into an order. The address must belong
	// to the caller. On success a confirmation email goes out best-effort.
	Checkout(ctx context.Context, userID, addressID uuid.UUID, paymentMethod, notes string) (*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error)
	GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	// UpdateStatus applies an allowed transition and emails the buyer
	// fire-and-forget; a failed send never rolls back the transition.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	mailer      mailer.Mailer
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		mailer:      m,
		logger:      logger,
	}
}

// Checkout validates the shipping address and runs the checkout transaction.
func (s *orderService) Checkout(ctx context.Context, userID, addressID uuid.UUID, paymentMethod, notes string) (*domain.Order, error) {
	if _, err := s.addressRepo.FindOwned(ctx, userID, addressID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.CreateFromCart(ctx, userID, addressID, paymentMethod, notes)
	if err != nil {
		return nil, err
	}

	s.notify(userID, order, s.mailer.SendOrderConfirmation)

	return order, nil
}

// GetOrder returns one of the caller's orders with its items.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByIDForUser(ctx, userID, orderID)
}

// ListOrders returns the caller's orders newest first.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// ListAllOrders returns orders across all users for the admin panel.
func (s *orderService) ListAllOrders(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	return s.orderRepo.ListAll(ctx, status, page, pageSize)
}

// GetOrderAdmin returns any order with its items.
func (s *orderService) GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// UpdateStatus applies the transition and sends the status email.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return nil, err
	}

	s.notify(order.UserID, order, s.mailer.SendOrderStatusUpdate)

	return order, nil
}

// notify looks up the buyer's email and sends in the background. Uses a fresh
// context because the request that triggered the email may finish first.
func (s *orderService) notify(userID uuid.UUID, order *domain.Order, send func(string, *domain.Order) error) {
	go func() {
		user, err := s.userRepo.FindByID(context.Background(), userID)
		if err != nil {
			s.logger.Error("Failed to load user for order email",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
			return
		}

		if err := send(user.Email, order); err != nil {
			s.logger.Error("Failed to send order email",
				zap.String("order_id", order.ID.String()),
				zap.String("status", string(order.Status)),
				zap.Error(err),
			)
		}
	}()
}
