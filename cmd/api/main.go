package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"marketplace/internal/adapter/api"
	"marketplace/internal/adapter/api/handler"
	apimiddleware "marketplace/internal/adapter/api/middleware"
	"marketplace/internal/adapter/api/router"
	"marketplace/internal/adapter/repository"
	domainrepo "marketplace/internal/domain/repository"
	"marketplace/internal/infrastructure/firebase"
	"marketplace/internal/infrastructure/ratelimit"
	"marketplace/internal/infrastructure/session"
	"marketplace/internal/infrastructure/storage"
	"marketplace/internal/usecase"
	"marketplace/pkg/config"
	"marketplace/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		itemRepo domainrepo.ItemRepository
		userRepo domainrepo.UserRepository
		images   usecase.ImageStore
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		itemRepo = repository.NewMemoryItemRepository()
		userRepo = repository.NewMemoryUserRepository()

	default:
		opts, err := firebase.CredentialOptions(cfg.ServiceAccountJSON, cfg.ServiceAccountPath)
		if err != nil {
			log.Fatalf("Failed to load credentials: %v", err)
		}

		firestoreClient, err := firebase.NewFirestore(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Firestore: %v", err)
		}
		defer firestoreClient.Close()

		itemRepo = repository.NewFirestoreItemRepository(firestoreClient)
		userRepo = repository.NewFirestoreUserRepository(firestoreClient)

		if cfg.StorageBucket != "" {
			storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
			if err != nil {
				log.Fatalf("Failed to initialize Cloud Storage: %v", err)
			}
			defer storageClient.Close()
			images = storageClient
		}
	}

	if images == nil {
		logger.Warn("STORAGE_BUCKET not set, item image uploads are disabled")
	}

	sessions := session.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)

	reviewUseCase := usecase.NewReviewUseCase(itemRepo, userRepo)
	authUseCase := usecase.NewAuthUseCase(userRepo, sessions, cfg.BootstrapAdmin)
	userUseCase := usecase.NewUserUseCase(userRepo, reviewUseCase)
	itemUseCase := usecase.NewItemUseCase(itemRepo, userRepo, reviewUseCase, images)

	handler.Setup(authUseCase, userUseCase, itemUseCase, reviewUseCase, cfg.CookieSecure, cfg.StorageDriver)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	loginLimiter := ratelimit.NewRateLimiter(cfg.LoginRatePerMinute)
	loginLimiter.StartCleanupRoutine(ctx.Done())

	router.Setup(e, authMiddleware, adminMiddleware, loginLimiter)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
