package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artembek/auction/pkg/cache"
	"github.com/artembek/auction/pkg/config"
	"github.com/artembek/auction/pkg/cooldown"
	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/server"
	"github.com/artembek/auction/pkg/service"
	"github.com/redis/go-redis/v9"
)

const (
	gracefulTimeout = time.Second * 15
)

func main() {
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("### Can't apply migrations: %v", err)
	}

	redis, closeRedis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("### Can't init redis: %v", err)
	}
	defer closeRedis()

	itemSvc, bidSvc, userSvc := composeServices(db, redis, cfg)

	srv, err := server.New(cfg.ListenAddr, itemSvc, bidSvc, userSvc)
	if err != nil {
		log.Fatalf("### Can't create server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("### Can't listen and serve: %v", err)
		}
	}()
	slog.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	srv.Shutdown(ctx)
}

func composeServices(db *sql.DB, redis *redis.Client, cfg *config.Config) (item service.Item, bid service.Bid, user service.User) {
	itemRepo := &database.ItemDatabase{DB: db}
	bidRepo := &database.BidDatabase{DB: db}
	userRepo := &database.UserDatabase{DB: db}

	item = &service.ItemGeneric{
		DB:                  db,
		ItemRepository:      itemRepo,
		FinishBatchSize:     cfg.FinishBatchSize,
		PickWinnerBatchSize: cfg.PickWinnerBatchSize,
	}
	item = &service.ItemLogging{Item: item}

	bid = &service.BidGeneric{
		DB:              db,
		ItemRepository:  itemRepo,
		UserRepository:  userRepo,
		BidRepository:   bidRepo,
		Gate:            &cooldown.Gate{Redis: redis, TTL: cfg.BidCooldownTTL},
		RefundBatchSize: cfg.RefundBatchSize,
	}
	bid = &service.BidLogging{Bid: bid}

	user = &service.UserGeneric{
		UserRepository: userRepo,
	}

	return
}

func parseLogLevel(lvl string) slog.Level {
	switch lvl {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String():
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
