package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"trendline/internal/config"
	"trendline/internal/domain"
	"trendline/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// CatalogService defines the interface for product and category management
type CatalogService interface {
	// Categories
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// Products
	ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	// DeleteProduct removes the product with its variants and images in one
	// transaction, then unlinks the image files from disk.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// Variants
	CreateVariant(ctx context.Context, variant *domain.ProductVariant) error
	UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	// Images
	SaveImage(ctx context.Context, productID uuid.UUID, originalName string, data io.Reader) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	variantRepo  repository.VariantRepository
	imageRepo    repository.ImageRepository
	uploads      config.UploadsConfig
	logger       *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	variantRepo repository.VariantRepository,
	imageRepo repository.ImageRepository,
	uploads config.UploadsConfig,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		variantRepo:  variantRepo,
		imageRepo:    imageRepo,
		uploads:      uploads,
		logger:       logger,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}

func (s *catalogService) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	return s.productRepo.Autocomplete(ctx, prefix, 10)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		return err
	}

	product.ID = uuid.New()
	product.SoldCount = 0
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	return s.productRepo.Create(ctx, product)
}

func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		return err
	}

	product.UpdatedAt = time.Now()
	return s.productRepo.Update(ctx, product)
}

// DeleteProduct removes rows first, files second. A file that fails to unlink
// is logged and left behind; the database stays consistent either way.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	filePaths, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, path := range filePaths {
		if err := os.Remove(filepath.Join(s.uploads.Dir, filepath.Base(path))); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove image file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *catalogService) CreateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	variant.ID = uuid.New()
	return s.variantRepo.Create(ctx, variant)
}

func (s *catalogService) UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error {
	return s.variantRepo.Update(ctx, variant)
}

func (s *catalogService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return s.variantRepo.Delete(ctx, id)
}

// SaveImage streams the upload to disk under a random hex name, then records
// the row. The row is written last so a crash cannot leave metadata pointing
// at a missing file.
func (s *catalogService) SaveImage(ctx context.Context, productID uuid.UUID, originalName string, data io.Reader) (*domain.ProductImage, error) {
	ext := filepath.Ext(originalName)
	if !allowedImageExtensions[ext] {
		return nil, ErrUnsupportedImageType
	}

	// The extension is client-supplied, so sniff the actual bytes too. A
	// renamed executable must not land in the public uploads dir.
	head := make([]byte, 512)
	n, err := io.ReadFull(data, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	head = head[:n]
	if !allowedImageContentTypes[http.DetectContentType(head)] {
		return nil, ErrUnsupportedImageType
	}
	data = io.MultiReader(bytes.NewReader(head), data)

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	nameBytes := make([]byte, 16)
	if _, err := rand.Read(nameBytes); err != nil {
		return nil, fmt.Errorf("failed to generate file name: %w", err)
	}
	fileName := hex.EncodeToString(nameBytes) + ext

	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	diskPath := filepath.Join(s.uploads.Dir, fileName)
	out, err := os.Create(diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(out, data); err != nil {
		out.Close()
		os.Remove(diskPath)
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(diskPath)
		return nil, fmt.Errorf("failed to close image file: %w", err)
	}

	position, err := s.imageRepo.NextPosition(ctx, productID)
	if err != nil {
		os.Remove(diskPath)
		return nil, err
	}

	image := &domain.ProductImage{
		ID:        uuid.New(),
		ProductID: productID,
		FilePath:  s.uploads.BaseURL + "/" + fileName,
		Position:  position,
	}

	if err := s.imageRepo.Add(ctx, image); err != nil {
		os.Remove(diskPath)
		return nil, err
	}

	return image, nil
}

// DeleteImage removes the row and then the file.
func (s *catalogService) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	filePath, err := s.imageRepo.Delete(ctx, productID, imageID)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.uploads.Dir, filepath.Base(filePath))); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove image file",
			zap.String("path", filePath),
			zap.Error(err),
		)
	}

	return nil
}
