package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/model"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 20
)

type Item interface {
	Create(ctx context.Context, name string, startPrice, timeWindow, createdBy int) (int, error)
	Publish(ctx context.Context, userID, itemID int) error
	Get(ctx context.Context, itemID int) (model.Item, error)
	ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Item, int, error)
	FinishBatch(ctx context.Context, cursor int) (int, error)
	PickWinnerBatch(ctx context.Context, cursor int) (int, error)
}

// ItemGeneric represents an implementation of Item interface containing
// core logics which can be wrapped in other implementations, see
// item_logging.go.
type ItemGeneric struct {
	DB             *sql.DB
	ItemRepository database.ItemRepository

	FinishBatchSize     int
	PickWinnerBatchSize int
}

func (ig *ItemGeneric) Create(ctx context.Context, name string, startPrice, timeWindow, createdBy int) (int, error) {
	id, err := ig.ItemRepository.Create(ctx, name, startPrice, timeWindow, createdBy)
	if err != nil {
		return 0, fmt.Errorf("can't create item: %w", err)
	}

	return id, nil
}

func (ig *ItemGeneric) Publish(ctx context.Context, userID, itemID int) error {
	item, err := ig.ItemRepository.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.ErrItemNotFound
		}
		return fmt.Errorf("can't get item: %w", err)
	}

	if item.CreatedBy != userID {
		return model.ErrNotOwner
	}

	if item.Status != model.ItemStatusDraft {
		return model.ErrNotDraft
	}

	if err := ig.ItemRepository.Publish(ctx, itemID); err != nil {
		return fmt.Errorf("can't publish item: %w", err)
	}

	return nil
}

func (ig *ItemGeneric) Get(ctx context.Context, itemID int) (model.Item, error) {
	item, err := ig.ItemRepository.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.Item{}, model.ErrItemNotFound
		}
		return model.Item{}, fmt.Errorf("can't get item: %w", err)
	}

	return item, nil
}

func (ig *ItemGeneric) ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Item, int, error) {
	return ig.ItemRepository.GetPage(ctx, pageNum, pageSize)
}

// FinishBatch closes one page of ONGOING items whose time window has
// elapsed.
func (ig *ItemGeneric) FinishBatch(ctx context.Context, cursor int) (next int, err error) {
	err = database.WithTx(ctx, ig.DB, sql.LevelDefault, func(tx *sql.Tx) error {
		ids, err := ig.ItemRepository.FinishPage(ctx, tx, cursor, ig.FinishBatchSize+1)
		if err != nil {
			return fmt.Errorf("can't get finish page: %w", err)
		}

		if len(ids) > ig.FinishBatchSize {
			next = ids[ig.FinishBatchSize]
			ids = ids[:ig.FinishBatchSize]
		}

		if len(ids) == 0 {
			return nil
		}

		if err := ig.ItemRepository.MarkFinished(ctx, tx, ids); err != nil {
			return fmt.Errorf("can't mark items finished: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// PickWinnerBatch records the winner bid for one page of finished items
// that have none yet. The cursor walks item ids.
func (ig *ItemGeneric) PickWinnerBatch(ctx context.Context, cursor int) (next int, err error) {
	err = database.WithTx(ctx, ig.DB, sql.LevelDefault, func(tx *sql.Tx) error {
		picks, err := ig.ItemRepository.WinnerCandidates(ctx, tx, cursor, ig.PickWinnerBatchSize+1)
		if err != nil {
			return fmt.Errorf("can't get winner candidates: %w", err)
		}

		if len(picks) > ig.PickWinnerBatchSize {
			next = picks[ig.PickWinnerBatchSize].ItemID
			picks = picks[:ig.PickWinnerBatchSize]
		}

		for _, p := range picks {
			if err := ig.ItemRepository.SetWinner(ctx, tx, p.ItemID, p.BidID); err != nil {
				return fmt.Errorf("can't set winner for item %d: %w", p.ItemID, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}
