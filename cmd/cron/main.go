package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/artembek/auction/pkg/batch"
	"github.com/artembek/auction/pkg/cache"
	"github.com/artembek/auction/pkg/config"
	"github.com/artembek/auction/pkg/cooldown"
	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/service"
	"github.com/robfig/cron/v3"
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

	itemRepo := &database.ItemDatabase{DB: db}
	bidRepo := &database.BidDatabase{DB: db}
	userRepo := &database.UserDatabase{DB: db}

	var itemSvc service.Item = &service.ItemGeneric{
		DB:                  db,
		ItemRepository:      itemRepo,
		FinishBatchSize:     cfg.FinishBatchSize,
		PickWinnerBatchSize: cfg.PickWinnerBatchSize,
	}
	itemSvc = &service.ItemLogging{Item: itemSvc}

	var bidSvc service.Bid = &service.BidGeneric{
		DB:              db,
		ItemRepository:  itemRepo,
		UserRepository:  userRepo,
		BidRepository:   bidRepo,
		Gate:            &cooldown.Gate{Redis: redis, TTL: cfg.BidCooldownTTL},
		RefundBatchSize: cfg.RefundBatchSize,
	}
	bidSvc = &service.BidLogging{Bid: bidSvc}

	ctx := context.Background()

	entries := []struct {
		spec string
		job  *batch.Job
	}{
		{cfg.FinishCronSpec, batch.NewJob("finish_items", itemSvc.FinishBatch)},
		{cfg.PickWinnerCronSpec, batch.NewJob("pick_winner", itemSvc.PickWinnerBatch)},
		{cfg.RefundCronSpec, batch.NewJob("refund_participant", bidSvc.RefundBatch)},
		{cfg.PayCronSpec, batch.NewJob("pay_creator", bidSvc.PayBatch)},
	}

	c := cron.New(cron.WithSeconds())
	for _, e := range entries {
		job := e.job

		_, err := c.AddFunc(e.spec, func() {
			if err := job.Run(ctx); err != nil {
				slog.Error("job failed", slog.String("job", job.Name()), slog.Any("error", err))
			}
		})
		if err != nil {
			log.Fatalf("### Can't register job %s: %v", job.Name(), err)
		}

		slog.Info("job registered", slog.String("job", job.Name()), slog.String("spec", e.spec))
	}

	c.Start()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	<-c.Stop().Done()
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
