package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"trendline/internal/domain"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

// seedUser inserts a user with a bcrypt-hashed password and returns it.
func seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         "user",
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := NewUserRepository(testDB).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// seedProduct inserts a category, a product, and one variant with the given
// stock, and returns the product and variant.
func seedProduct(t *testing.T, stock int) (*domain.Product, *domain.ProductVariant) {
	t.Helper()
	ctx := context.Background()

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        "cat-" + uuid.NewString(),
		Description: "test category",
		CreatedAt:   time.Now(),
	}
	if err := NewCategoryRepository(testDB).Create(ctx, category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "prod-" + uuid.NewString(),
		Description: "test product",
		Price:       49.90,
		CategoryID:  category.ID,
		Brand:       "TestBrand",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := NewProductRepository(testDB).Create(ctx, product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	variant := &domain.ProductVariant{
		ID:        uuid.New(),
		ProductID: product.ID,
		ColorName: "Black",
		ColorHex:  "#000000",
		Size:      "42",
		Gender:    "unisex",
		Stock:     stock,
		SKU:       fmt.Sprintf("SKU-%s", uuid.NewString()),
	}
	if err := NewVariantRepository(testDB).Create(ctx, variant); err != nil {
		t.Fatalf("failed to seed variant: %v", err)
	}

	return product, variant
}

// seedAddress inserts an address for the user and returns it. The user's
// first address comes back as the default.
func seedAddress(t *testing.T, userID uuid.UUID) *domain.Address {
	t.Helper()

	address := &domain.Address{
		ID:         uuid.New(),
		UserID:     userID,
		Recipient:  "Test User",
		Line1:      "1 Test Street",
		City:       "Testville",
		PostalCode: "12345",
		Phone:      "+3612345678",
		CreatedAt:  time.Now(),
	}
	if err := NewAddressRepository(testDB).Create(context.Background(), address); err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}
	return address
}

func variantStock(t *testing.T, variantID uuid.UUID) int {
	t.Helper()

	var stock int
	if err := testDB.QueryRow("SELECT stock FROM product_variants WHERE id = $1", variantID).Scan(&stock); err != nil {
		t.Fatalf("failed to read variant stock: %v", err)
	}
	return stock
}
