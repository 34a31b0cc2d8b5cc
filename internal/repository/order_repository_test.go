package repository

import (
	"context"
	"errors"
	"testing"

	"trendline/internal/domain"

	"github.com/google/uuid"
)

func TestOrderRepository_CheckoutDecrementsStockAndClearsCart(t *testing.T) {
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "checkout-"+uuid.NewString()+"@example.com")
	address := seedAddress(t, user.ID)
	product, variant := seedProduct(t, 10)

	cart, err := cartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := cartRepo.AddItem(ctx, cart.ID, product.ID, variant.ID, 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	order, err := orderRepo.CreateFromCart(ctx, user.ID, address.ID, "cod", "ring the bell")
	if err != nil {
		t.Fatalf("CreateFromCart failed: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected new order to be pending, got %s", order.Status)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected one order item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.ProductName != product.Name || item.Quantity != 3 || item.UnitPrice != product.Price {
		t.Fatalf("order item snapshot mismatch: %+v", item)
	}
	wantTotal := product.Price * 3
	if order.Total != wantTotal {
		t.Fatalf("expected total %.2f, got %.2f", wantTotal, order.Total)
	}

	if stock := variantStock(t, variant.ID); stock != 7 {
		t.Fatalf("expected stock 7 after checkout, got %d", stock)
	}

	lines, err := cartRepo.Lines(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected cart cleared after checkout, got %d lines", len(lines))
	}
}

func TestOrderRepository_CheckoutRejectsOversell(t *testing.T) {
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "oversell-"+uuid.NewString()+"@example.com")
	address := seedAddress(t, user.ID)
	product, variant := seedProduct(t, 2)

	cart, err := cartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := cartRepo.AddItem(ctx, cart.ID, product.ID, variant.ID, 5); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	_, err = orderRepo.CreateFromCart(ctx, user.ID, address.ID, "cod", "")
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 5 || stockErr.Available != 2 {
		t.Fatalf("unexpected stock error details: %+v", stockErr)
	}

	// Nothing was committed: stock intact, cart intact.
	if stock := variantStock(t, variant.ID); stock != 2 {
		t.Fatalf("expected stock untouched at 2, got %d", stock)
	}
	lines, err := cartRepo.Lines(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected cart untouched, got %d lines", len(lines))
	}
}

func TestOrderRepository_CheckoutRequiresNonEmptyCart(t *testing.T) {
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "empty-"+uuid.NewString()+"@example.com")
	address := seedAddress(t, user.ID)

	if _, err := orderRepo.CreateFromCart(ctx, user.ID, address.ID, "cod", ""); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestOrderRepository_StatusTransitions(t *testing.T) {
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "status-"+uuid.NewString()+"@example.com")
	address := seedAddress(t, user.ID)
	product, variant := seedProduct(t, 10)

	cart, err := cartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := cartRepo.AddItem(ctx, cart.ID, product.ID, variant.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderRepo.CreateFromCart(ctx, user.ID, address.ID, "card", "")
	if err != nil {
		t.Fatalf("CreateFromCart failed: %v", err)
	}

	// Skipping a step is rejected.
	if _, err := orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending->shipped, got %v", err)
	}

	// The forward chain works one step at a time.
	for _, next := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusCompleted,
	} {
		updated, err := orderRepo.UpdateStatus(ctx, order.ID, next)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected status %s, got %s", next, updated.Status)
		}
	}

	// Completed is terminal.
	if _, err := orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from completed, got %v", err)
	}
}

func TestOrderRepository_CancellationRestocks(t *testing.T) {
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := seedUser(t, "cancel-"+uuid.NewString()+"@example.com")
	address := seedAddress(t, user.ID)
	product, variant := seedProduct(t, 10)

	cart, err := cartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := cartRepo.AddItem(ctx, cart.ID, product.ID, variant.ID, 4); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderRepo.CreateFromCart(ctx, user.ID, address.ID, "cod", "")
	if err != nil {
		t.Fatalf("CreateFromCart failed: %v", err)
	}
	if stock := variantStock(t, variant.ID); stock != 6 {
		t.Fatalf("expected stock 6 after checkout, got %d", stock)
	}

	if _, err := orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}

	if stock := variantStock(t, variant.ID); stock != 10 {
		t.Fatalf("expected stock restored to 10 after cancellation, got %d", stock)
	}
}

func TestOrderRepository_FindByIDForUserHidesForeignOrders(t *testing.T) {
	cartRepo := NewCartRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	ctx := context.Background()

	buyer := seedUser(t, "buyer-"+uuid.NewString()+"@example.com")
	other := seedUser(t, "other-"+uuid.NewString()+"@example.com")
	address := seedAddress(t, buyer.ID)
	product, variant := seedProduct(t, 5)

	cart, err := cartRepo.GetOrCreate(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := cartRepo.AddItem(ctx, cart.ID, product.ID, variant.ID, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	order, err := orderRepo.CreateFromCart(ctx, buyer.ID, address.ID, "cod", "")
	if err != nil {
		t.Fatalf("CreateFromCart failed: %v", err)
	}

	if _, err := orderRepo.FindByIDForUser(ctx, buyer.ID, order.ID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := orderRepo.FindByIDForUser(ctx, other.ID, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign lookup, got %v", err)
	}
}
