package server

import (
	"fmt"
	"net/http"
	"time"

	"trendline/internal/config"
	"trendline/internal/database"
	"trendline/internal/mailer"
	custommiddleware "trendline/internal/middleware"
	"trendline/internal/repository"
	"trendline/internal/service"
	"trendline/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	// Basic middleware stack
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, db.Health())
	})

	// Uploaded product images are served statically
	fileServer := http.StripPrefix(cfg.Uploads.BaseURL+"/", http.FileServer(http.Dir(cfg.Uploads.Dir)))
	router.Get(cfg.Uploads.BaseURL+"/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	// Initialize repositories
	sqlDB := db.DB()
	userRepo := repository.NewUserRepository(sqlDB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(sqlDB)
	resetTokenRepo := repository.NewResetTokenRepository(redisClient)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	variantRepo := repository.NewVariantRepository(sqlDB)
	imageRepo := repository.NewImageRepository(sqlDB)
	cartRepo := repository.NewCartRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	addressRepo := repository.NewAddressRepository(sqlDB)
	wishlistRepo := repository.NewWishlistRepository(sqlDB)

	// Initialize services
	mail := mailer.New(cfg.SMTP)
	userService := service.NewUserService(userRepo, refreshTokenRepo, resetTokenRepo, mail, logger, cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiry)*time.Minute, time.Duration(cfg.JWT.RefreshExpiry)*24*time.Hour)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, variantRepo, imageRepo, cfg.Uploads, logger)
	cartService := service.NewCartService(cartRepo, productRepo, variantRepo)
	orderService := service.NewOrderService(orderRepo, addressRepo, userRepo, mail, logger)
	addressService := service.NewAddressService(addressRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	contactService := service.NewContactService(mail, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(catalogService, int64(cfg.Uploads.MaxSizeMB)<<20, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	addressHandler := transport.NewAddressHandler(addressService, logger)
	wishlistHandler := transport.NewWishlistHandler(wishlistService, logger)
	contactHandler := transport.NewContactHandler(contactService, logger)

	// Middleware guards
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	categoryHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	addressHandler.RegisterRoutes(router, authMiddleware)
	wishlistHandler.RegisterRoutes(router, authMiddleware)
	contactHandler.RegisterRoutes(router, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:contact",
	}, logger))

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
