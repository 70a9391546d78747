package cache

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/config"
)

// limiterDatabase keeps rate limiter counters apart from DB 0.
const limiterDatabase = 1

var client *redis.Client

// SetupCache initializes the connection to the cache server. With no
// CACHE_HOST configured the cache stays disabled and nil is returned.
func SetupCache(cfg config.Cache) *redis.Client {
	if cfg.Host == "" {
		log.Info("No cache host configured, running without cache")
		client = nil
		return nil
	}

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0, // use default DB
	})

	// Test the connection
	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Warnf("Could not connect to cache: %v", err)
	} else {
		log.Infof("Successfully connected to cache: %s", pong)
	}
	return client
}

// Ping checks the cache connection. A disabled cache is healthy.
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// NewLimiterStorage returns a redis-backed fiber.Storage for the API rate
// limiter, or nil (in-memory limiter) when no cache is configured.
func NewLimiterStorage(cfg config.Cache) fiber.Storage {
	if cfg.Host == "" {
		return nil
	}
	return redisstorage.New(redisstorage.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Database: limiterDatabase,
		Reset:    false,
	})
}
