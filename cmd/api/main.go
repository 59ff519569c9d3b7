package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chatlog-api/internal/config"
	"chatlog-api/internal/db"
	apihttp "chatlog-api/internal/http"
	"chatlog-api/internal/reply"
	"chatlog-api/internal/repository"
	"chatlog-api/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("schema applied")
	}

	var limiter service.AppendRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, append rate limit disabled", zap.Error(err))
		} else {
			limiter = service.NewRedisAppendRateLimiter(redisClient, cfg.AppendRateWindow, cfg.AppendRateMax)
		}
		cancel()
	}

	store := repository.NewPgStore(pool)
	chatSvc := service.NewChatService(logger, store)
	conversationSvc := service.NewConversationService(logger, store, reply.NewStatic(cfg.ReplyText), limiter)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc, conversationSvc)
	router := apihttp.NewRouter(logger, chatHandler, func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
