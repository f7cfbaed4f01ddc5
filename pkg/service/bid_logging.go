package service

import (
	"context"
	"log/slog"
	"time"
)

type BidLogging struct {
	Bid
}

func (bl *BidLogging) Place(ctx context.Context, userID, itemID, amount int) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int("user_id", userID),
			slog.Int("item_id", itemID),
			slog.Int("amount", amount),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to place bid", slog.Any("error", err))
		} else {
			log.Debug("bid placed")
		}
	}(time.Now())

	return bl.Bid.Place(ctx, userID, itemID, amount)
}

func (bl *BidLogging) RefundBatch(ctx context.Context, cursor int) (next int, err error) {
	defer func(t0 time.Time) {
		logBatchStep("refund", cursor, next, time.Since(t0), err)
	}(time.Now())

	return bl.Bid.RefundBatch(ctx, cursor)
}

func (bl *BidLogging) PayBatch(ctx context.Context, cursor int) (next int, err error) {
	defer func(t0 time.Time) {
		logBatchStep("pay", cursor, next, time.Since(t0), err)
	}(time.Now())

	return bl.Bid.PayBatch(ctx, cursor)
}

func logBatchStep(job string, cursor, next int, delay time.Duration, err error) {
	log := slog.With(
		slog.String("job", job),
		slog.Int("cursor", cursor),
		slog.Int("next", next),
		slog.String("delay", delay.String()),
	)

	if err != nil {
		log.Error("batch step failed", slog.Any("error", err))
	} else {
		log.Debug("batch step done")
	}
}
