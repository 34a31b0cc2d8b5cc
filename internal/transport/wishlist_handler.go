package transport

import (
	"errors"
	"net/http"

	"trendline/internal/middleware"
	"trendline/internal/repository"
	"trendline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WishlistHandler handles HTTP requests for wishlist operations
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers all wishlist routes. Every route requires auth.
func (h *WishlistHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/{productID}", h.Add)
		r.Delete("/{productID}", h.Remove)
	})
}

// List returns the caller's saved products
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	entries, err := h.wishlistService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, entries)
}

// Add saves a product to the caller's wishlist. Re-saving is a no-op.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.wishlistService.Add(r.Context(), userID, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to add to wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "product saved to wishlist"})
}

// Remove deletes a product from the caller's wishlist
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.wishlistService.Remove(r.Context(), userID, productID); err != nil {
		if errors.Is(err, repository.ErrWishlistEntryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "wishlist entry not found")
			return
		}

		h.logger.Error("Failed to remove from wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove from wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product removed from wishlist"})
}
