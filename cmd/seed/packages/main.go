package main

import (
	"context"
	"log"
	"time"

	"github.com/mansoorceksport/eventhub/internal/config"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/repository"
	"github.com/mansoorceksport/eventhub/internal/service"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds the default listing package catalog into an empty database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	// Cached quotes are invalidated when Redis is reachable; otherwise they age out.
	var cache domain.PriceQuoteCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("[Seed] Redis unavailable, skipping quote invalidation: %v", err)
	} else {
		cache = repository.NewRedisCacheRepository(redisClient)
	}

	repo := repository.NewMongoListingPackageRepository(client.Database(cfg.MongoDB.Database))
	created, err := service.NewCatalogService(repo, cache).SeedDefaults(ctx)
	if err != nil {
		log.Fatalf("Failed to seed listing packages: %v", err)
	}
	log.Printf("[Seed] Done, %d listing packages created", created)
}
