package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"trendline/internal/config"
	"trendline/internal/database"
	"trendline/internal/domain"
	"trendline/internal/logger"
	"trendline/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// seed populates a fresh database with an admin account and a small sample
// catalog so the storefront is usable right after setup. Running it twice is
// safe: existing rows are left alone.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment: %v", err)
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	db := dbService.DB()
	if err := database.RunMigrations(db, "migrations", zlog); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)

	adminEmail := mustEnv("SEED_ADMIN_EMAIL")
	adminPassword := mustEnv("SEED_ADMIN_PASSWORD")

	if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
		zlog.Info("Admin account already exists, skipping", zap.String("email", adminEmail))
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			zlog.Fatal("Failed to hash admin password", zap.Error(err))
		}
		admin := &domain.User{
			ID:           uuid.New(),
			Email:        adminEmail,
			PasswordHash: string(hash),
			FirstName:    "Store",
			LastName:     "Admin",
			Role:         "admin",
			Active:       true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			zlog.Fatal("Failed to create admin account", zap.Error(err))
		}
		zlog.Info("Admin account created", zap.String("email", adminEmail))
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        "Sneakers",
		Description: "Everyday and performance sneakers",
		CreatedAt:   time.Now(),
	}
	if err := categoryRepo.Create(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			zlog.Info("Sample category already exists, skipping")
			return
		}
		zlog.Fatal("Failed to create sample category", zap.Error(err))
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Court Classic",
		Description: "Low-top leather sneaker with a rubber cupsole.",
		Price:       89.90,
		CategoryID:  category.ID,
		Brand:       "Trendline",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := productRepo.Create(ctx, product); err != nil {
		zlog.Fatal("Failed to create sample product", zap.Error(err))
	}

	sizes := []string{"40", "41", "42", "43", "44"}
	for i, size := range sizes {
		variant := &domain.ProductVariant{
			ID:        uuid.New(),
			ProductID: product.ID,
			ColorName: "White",
			ColorHex:  "#FFFFFF",
			Size:      size,
			Gender:    "unisex",
			Stock:     10,
			SKU:       fmt.Sprintf("CC-WHT-%s-%03d", size, i+1),
		}
		if err := variantRepo.Create(ctx, variant); err != nil {
			zlog.Fatal("Failed to create sample variant", zap.Error(err), zap.String("size", size))
		}
	}

	zlog.Info("Seed completed",
		zap.String("category", category.Name),
		zap.String("product", product.Name),
		zap.Int("variants", len(sizes)),
	)
}

// mustEnv reads a required seed setting; seeding refuses to run without it
// so no credentials are ever baked into the binary.
func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("%s must be set to run the seeder", key)
	}
	return v
}
