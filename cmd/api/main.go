package main

import (
	"context"
	"log"
	"time"

	"github.com/gauri-sd/user-document-management/internal/config"
	"github.com/gauri-sd/user-document-management/internal/database"
	"github.com/gauri-sd/user-document-management/internal/handler"
	"github.com/gauri-sd/user-document-management/internal/middleware"
	"github.com/gauri-sd/user-document-management/internal/processor"
	"github.com/gauri-sd/user-document-management/internal/queue"
	"github.com/gauri-sd/user-document-management/internal/repository"
	"github.com/gauri-sd/user-document-management/internal/server"
	"github.com/gauri-sd/user-document-management/internal/service"
	"github.com/gauri-sd/user-document-management/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(ctx, cfg.DatabaseUrl, database.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	storageClient, err := storage.NewStorage(ctx, &storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Connected to MinIO")

	// Lifecycle events are optional; without a broker the publisher is nil
	// and publishing is a no-op.
	var events *queue.EventPublisher
	if cfg.RabbitMQUrl != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQUrl)
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, job events disabled: %v", err)
		} else {
			defer rabbit.Close()
			events, err = queue.NewEventPublisher(rabbit, cfg.EventsQueue)
			if err != nil {
				log.Fatalf("Failed to set up event publisher: %v", err)
			}
			log.Println("Connected to RabbitMQ")
		}
	}

	userRepo := repository.NewUserRepository(db.Pool)
	documentRepo := repository.NewDocumentRepository(db.Pool)
	jobRepo := repository.NewJobRepository(db.Pool)

	jwtService := service.NewJWTService(cfg.JWTSecretKey, cfg.AccessTokenTTL)
	hashingService := service.NewHashingService()
	blacklist := service.NewTokenBlacklist()
	blacklist.StartSweeper(ctx, time.Minute)

	authService := service.NewAuthService(userRepo, hashingService, jwtService, blacklist)
	documentService := service.NewDocumentService(documentRepo, storageClient)
	ingestionService := service.NewIngestionService(jobRepo, documentRepo, processor.NewRegistry(), events, cfg.ProcessingStepDelay)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService)
	ingestionHandler := handler.NewIngestionHandler(ingestionService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, blacklist)

	g := server.NewServer(db, authHandler, documentHandler, ingestionHandler, authMiddleware, cfg.WebhookServiceKey)

	log.Printf("Server starting on %s", cfg.Port)
	if err := g.Run(cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
