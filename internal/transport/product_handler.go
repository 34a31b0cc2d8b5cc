package transport

import (
	"errors"
	"net/http"
	"strings"

	"trendline/internal/domain"
	"trendline/internal/middleware"
	"trendline/internal/repository"
	"trendline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	Brand       string  `json:"brand" validate:"required,max=100"`
}

// VariantRequest represents the variant create/update payload
type VariantRequest struct {
	ColorName string `json:"color_name" validate:"required,max=50"`
	ColorHex  string `json:"color_hex" validate:"required,hexcolor"`
	Size      string `json:"size" validate:"required,max=20"`
	Gender    string `json:"gender" validate:"required,oneof=men women unisex"`
	Stock     int    `json:"stock" validate:"gte=0"`
	SKU       string `json:"sku" validate:"required,max=64"`
}

// ProductListResponse is a paginated page of products
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
}

// ProductHandler handles HTTP requests for product catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, maxUploadBytes int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/autocomplete", h.Autocomplete)
		r.Get("/{id}", h.Get)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)

			r.Post("/{id}/variants", h.CreateVariant)
			r.Put("/{id}/variants/{variantID}", h.UpdateVariant)
			r.Delete("/{id}/variants/{variantID}", h.DeleteVariant)

			r.Post("/{id}/images", h.UploadImage)
			r.Delete("/{id}/images/{imageID}", h.DeleteImage)
		})
	})
}

// List returns a paginated product page, optionally filtered by category
// and sorted by a whitelisted column.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)

	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		categoryID = &id
	}

	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrderAsc
	if strings.EqualFold(r.URL.Query().Get("sort_order"), "desc") {
		sortOrder = repository.SortOrderDesc
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
	})
}

// Search runs a case-insensitive text search over name, description and brand
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	page, pageSize := paginationParams(r)

	products, total, err := h.catalogService.SearchProducts(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err), zap.String("query", query))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
	})
}

// Autocomplete returns product name suggestions for a prefix
func (h *ProductHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		middleware.RespondWithJSON(w, http.StatusOK, []string{})
		return
	}

	suggestions, err := h.catalogService.Autocomplete(r.Context(), prefix)
	if err != nil {
		h.logger.Error("Failed to autocomplete", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to autocomplete")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suggestions)
}

// Get returns a single product with its variants and images
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  categoryID,
		Brand:       req.Brand,
	}

	if err := h.catalogService.CreateProduct(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}

		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update modifies an existing product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	product := &domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  categoryID,
		Brand:       req.Brand,
	}

	if err := h.catalogService.UpdateProduct(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}

		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product with its variants, images and image files
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
}

// CreateVariant adds a variant to a product
func (h *ProductHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req VariantRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	variant := &domain.ProductVariant{
		ProductID: productID,
		ColorName: req.ColorName,
		ColorHex:  req.ColorHex,
		Size:      req.Size,
		Gender:    req.Gender,
		Stock:     req.Stock,
		SKU:       req.SKU,
	}

	if err := h.catalogService.CreateVariant(r.Context(), variant); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrVariantAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "variant with this SKU already exists")
			return
		}

		h.logger.Error("Failed to create variant", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create variant")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, variant)
}

// UpdateVariant modifies a variant, including restocking
func (h *ProductHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	variantID, err := uuid.Parse(chi.URLParam(r, "variantID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid variant ID")
		return
	}

	var req VariantRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	variant := &domain.ProductVariant{
		ID:        variantID,
		ProductID: productID,
		ColorName: req.ColorName,
		ColorHex:  req.ColorHex,
		Size:      req.Size,
		Gender:    req.Gender,
		Stock:     req.Stock,
		SKU:       req.SKU,
	}

	if err := h.catalogService.UpdateVariant(r.Context(), variant); err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "variant not found")
			return
		}
		if errors.Is(err, repository.ErrVariantAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "variant with this SKU already exists")
			return
		}

		h.logger.Error("Failed to update variant", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update variant")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, variant)
}

// DeleteVariant removes a variant
func (h *ProductHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := uuid.Parse(chi.URLParam(r, "variantID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid variant ID")
		return
	}

	if err := h.catalogService.DeleteVariant(r.Context(), variantID); err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "variant not found")
			return
		}

		h.logger.Error("Failed to delete variant", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete variant")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "variant deleted successfully"})
}

// UploadImage accepts a multipart form with an "image" file field and
// attaches it to the product.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid or oversized multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	image, err := h.catalogService.SaveImage(r.Context(), productID, header.Filename, file)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, service.ErrUnsupportedImageType) {
			middleware.RespondWithError(w, http.StatusBadRequest, "unsupported image type")
			return
		}

		h.logger.Error("Failed to save image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	h.logger.Info("Product image uploaded",
		zap.String("product_id", productID.String()),
		zap.String("file_path", image.FilePath),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, image)
}

// DeleteImage removes an image row and its file
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	if err := h.catalogService.DeleteImage(r.Context(), productID, imageID); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "image not found")
			return
		}

		h.logger.Error("Failed to delete image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "image deleted successfully"})
}
