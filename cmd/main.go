package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/eventhub/internal/config"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/jobs"
	"github.com/mansoorceksport/eventhub/internal/middleware"
	"github.com/mansoorceksport/eventhub/internal/repository"
	"github.com/mansoorceksport/eventhub/internal/server"
	"github.com/mansoorceksport/eventhub/internal/service"
	"github.com/mansoorceksport/eventhub/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting EventHub API...")

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.ConfigFrom(cfg.OTEL))
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	firebaseApp, err := middleware.InitFirebase(ctx,
		cfg.Firebase.ProjectID,
		cfg.Firebase.PrivateKey,
		cfg.Firebase.ClientEmail,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to get Firebase Auth client: %v", err)
	}
	log.Println("[Startup] Firebase initialized")

	ctxMongo, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
		mongoOpts.SetMonitor(otelmongo.NewMonitor())
	}

	mongoClient, err := mongo.Connect(ctxMongo, mongoOpts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctxMongo, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("[Startup] MongoDB connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("[Startup] Redis connected")

	// Image uploads are disabled without an S3 endpoint
	var fileRepo domain.FileRepository
	if cfg.S3.Endpoint != "" {
		s3Repo, err := repository.NewSeaweedS3Repository(ctx, cfg.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 repository: %v", err)
		} else {
			fileRepo = s3Repo
			log.Printf("[Startup] S3 storage ready (bucket: %s)", cfg.S3.Bucket)
		}
	}

	scheduler := jobs.NewScheduler()

	app := server.NewApp(server.AppDependencies{
		Config:          cfg,
		MongoDB:         mongoClient.Database(cfg.MongoDB.Database),
		RedisClient:     redisClient,
		AuthClient:      authClient,
		FileRepo:        fileRepo,
		PaymentProvider: service.NewPaymentProvider(cfg.Payment),
		Meter:           telemetry.Meter(),
		Scheduler:       scheduler,
	})

	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		scheduler.Stop(stopCtx)
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	log.Printf("[Startup] Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
