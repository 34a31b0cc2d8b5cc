package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trendline/internal/middleware"
	"trendline/internal/repository"
	"trendline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockCartService returns canned results so the handler's error mapping can
// be exercised without a database.
type mockCartService struct {
	addErr    error
	updateErr error
	view      *service.CartView
}

func (m *mockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*service.CartView, error) {
	return m.view, nil
}

func (m *mockCartService) AddItem(ctx context.Context, userID, productID, variantID uuid.UUID, quantity int) (*service.CartView, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	return m.view, nil
}

func (m *mockCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*service.CartView, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.view, nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*service.CartView, error) {
	return m.view, nil
}

func (m *mockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

// withUser fakes the auth middleware by injecting a user into the context.
func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserIDKey, uuid.NewString())
		ctx = context.WithValue(ctx, middleware.UserRoleKey, "user")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newCartRouter(svc service.CartService) chi.Router {
	handler := NewCartHandler(svc, zap.NewNop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router, withUser)
	return router
}

func TestCartHandler_StockConflictMapsTo409(t *testing.T) {
	svc := &mockCartService{
		addErr: &repository.InsufficientStockError{
			ProductName: "Court Classic",
			Requested:   6,
			Available:   5,
		},
	}
	router := newCartRouter(svc)

	w := doJSON(t, router, "POST", "/api/cart/items", AddCartItemRequest{
		ProductID: uuid.NewString(),
		VariantID: uuid.NewString(),
		Quantity:  6,
	}, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d: %s", w.Code, w.Body.String())
	}

	var resp middleware.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp.Error.Message == "" {
		t.Fatal("expected a populated error message")
	}
}

func TestCartHandler_ForeignItemMapsTo404(t *testing.T) {
	svc := &mockCartService{updateErr: repository.ErrCartItemNotFound}
	router := newCartRouter(svc)

	w := doJSON(t, router, "PUT", "/api/cart/items/"+uuid.NewString(), UpdateCartItemRequest{
		Quantity: 2,
	}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign cart item, got %d", w.Code)
	}
}

func TestCartHandler_VariantMismatchMapsTo400(t *testing.T) {
	svc := &mockCartService{addErr: service.ErrVariantMismatch}
	router := newCartRouter(svc)

	w := doJSON(t, router, "POST", "/api/cart/items", AddCartItemRequest{
		ProductID: uuid.NewString(),
		VariantID: uuid.NewString(),
		Quantity:  1,
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for variant mismatch, got %d", w.Code)
	}
}

func TestCartHandler_GetReturnsCart(t *testing.T) {
	cartID := uuid.New()
	svc := &mockCartService{view: &service.CartView{CartID: cartID}}
	router := newCartRouter(svc)

	w := doJSON(t, router, "GET", "/api/cart", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var view service.CartView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to parse cart: %v", err)
	}
	if view.CartID != cartID {
		t.Fatalf("expected cart %s, got %s", cartID, view.CartID)
	}
}

func TestCartHandler_RequiresAuth(t *testing.T) {
	handler := NewCartHandler(&mockCartService{}, zap.NewNop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router, middleware.AuthMiddleware("test-secret", zap.NewNop()))

	req := httptest.NewRequest("GET", "/api/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}
