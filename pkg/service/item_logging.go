package service

import (
	"context"
	"log/slog"
	"time"
)

type ItemLogging struct {
	Item
}

func (il *ItemLogging) Publish(ctx context.Context, userID, itemID int) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int("user_id", userID),
			slog.Int("item_id", itemID),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to publish item", slog.Any("error", err))
		} else {
			log.Debug("item published")
		}
	}(time.Now())

	return il.Item.Publish(ctx, userID, itemID)
}

func (il *ItemLogging) FinishBatch(ctx context.Context, cursor int) (next int, err error) {
	defer func(t0 time.Time) {
		logBatchStep("finish_items", cursor, next, time.Since(t0), err)
	}(time.Now())

	return il.Item.FinishBatch(ctx, cursor)
}

func (il *ItemLogging) PickWinnerBatch(ctx context.Context, cursor int) (next int, err error) {
	defer func(t0 time.Time) {
		logBatchStep("pick_winner", cursor, next, time.Since(t0), err)
	}(time.Now())

	return il.Item.PickWinnerBatch(ctx, cursor)
}
