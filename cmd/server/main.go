package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"anoa.com/akademia/internal/bootstrap"
	"anoa.com/akademia/internal/config"
	"anoa.com/akademia/internal/server"
	"anoa.com/akademia/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedOwner(db); err != nil {
			log.Fatalf("failed to seed owner account: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)
	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// connectRedis returns nil when Redis is unconfigured or unreachable; the
// query cache and notice stream degrade gracefully without it.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without cache and live notices")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, running without Redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, running without Redis: %v", err)
		return nil
	}

	return client
}
