package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/artembek/auction/pkg/database"
	"github.com/artembek/auction/pkg/model"
)

type Bid interface {
	Place(ctx context.Context, userID, itemID, amount int) error
	ListByItem(ctx context.Context, itemID, pageNum, pageSize int) ([]model.Bid, int, error)
	ListByUser(ctx context.Context, userID int, onlyActive bool, pageNum, pageSize int) ([]model.Bid, int, error)
	RefundBatch(ctx context.Context, cursor int) (int, error)
	PayBatch(ctx context.Context, cursor int) (int, error)
}

// CooldownGate is the advisory per-user rate limit in front of bid
// placement. It is checked before the transaction and armed after a
// successful commit, never inside.
type CooldownGate interface {
	Active(ctx context.Context, userID int) (bool, error)
	Set(ctx context.Context, userID int) error
}

// BidGeneric contains the core bid logics and the bid-side settlement
// steps. It can be wrapped in other Bid implementations, see bid_logging.go.
type BidGeneric struct {
	DB             *sql.DB
	ItemRepository database.ItemRepository
	UserRepository database.UserRepository
	BidRepository  database.BidRepository
	Gate           CooldownGate

	RefundBatchSize int
}

// Place validates and commits a single bid as one SERIALIZABLE
// transaction. Concurrent bids on the same item are serialized by the
// database; a serialization conflict surfaces as a failed bid and is
// never retried here.
func (bg *BidGeneric) Place(ctx context.Context, userID, itemID, amount int) error {
	active, err := bg.Gate.Active(ctx, userID)
	if err != nil {
		return fmt.Errorf("can't check cooldown: %w", err)
	}

	if active {
		return model.ErrOnCooldown
	}

	err = database.WithTx(ctx, bg.DB, sql.LevelSerializable, func(tx *sql.Tx) error {
		item, err := bg.ItemRepository.GetForBidding(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return model.ErrItemNotFound
			}
			return fmt.Errorf("can't get item: %w", err)
		}

		if item.Status == model.ItemStatusFinished {
			return model.ErrItemFinished
		}

		if item.CreatedBy == userID {
			return model.ErrOwnItem
		}

		if amount <= item.StartPrice {
			return model.ErrBidTooLow
		}

		user, err := bg.UserRepository.GetTx(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return model.ErrUserNotFound
			}
			return fmt.Errorf("can't get user: %w", err)
		}

		highest, err := bg.BidRepository.Highest(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("can't get highest bid: %w", err)
		}

		if amount <= highest {
			return model.ErrBidTooLow
		}

		prevAmount, err := bg.BidRepository.DeactivatePrev(ctx, tx, itemID, userID)
		if err != nil {
			return fmt.Errorf("can't deactivate previous bid: %w", err)
		}

		// the user's previous bid is already escrowed, charge the difference only
		delta := amount - prevAmount
		if delta > user.Balance {
			return model.ErrInsufficientBalance
		}

		if err := bg.UserRepository.Debit(ctx, tx, userID, delta); err != nil {
			return fmt.Errorf("can't debit balance: %w", err)
		}

		if _, err := bg.BidRepository.Insert(ctx, tx, userID, itemID, amount); err != nil {
			return fmt.Errorf("can't insert bid: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	// the bid is already durable; a failed cooldown write must not turn
	// a committed bid into a reported failure
	if err := bg.Gate.Set(ctx, userID); err != nil {
		slog.Error("can't set cooldown", slog.Int("user_id", userID), slog.Any("error", err))
	}

	return nil
}

func (bg *BidGeneric) ListByItem(ctx context.Context, itemID, pageNum, pageSize int) ([]model.Bid, int, error) {
	return bg.BidRepository.GetPageByItem(ctx, itemID, pageNum, pageSize)
}

func (bg *BidGeneric) ListByUser(ctx context.Context, userID int, onlyActive bool, pageNum, pageSize int) ([]model.Bid, int, error) {
	return bg.BidRepository.GetPageByUser(ctx, userID, onlyActive, pageNum, pageSize)
}

// RefundBatch marks one page of losing bids as returned and credits each
// affected user with the sum of their returned amounts in the page.
func (bg *BidGeneric) RefundBatch(ctx context.Context, cursor int) (next int, err error) {
	err = database.WithTx(ctx, bg.DB, sql.LevelDefault, func(tx *sql.Tx) error {
		refs, err := bg.BidRepository.RefundPage(ctx, tx, cursor, bg.RefundBatchSize+1)
		if err != nil {
			return fmt.Errorf("can't get refund page: %w", err)
		}

		refs, next = trimPage(refs, bg.RefundBatchSize)
		if len(refs) == 0 {
			return nil
		}

		if err := bg.BidRepository.MarkReturned(ctx, tx, refIDs(refs)); err != nil {
			return fmt.Errorf("can't mark bids returned: %w", err)
		}

		if err := bg.UserRepository.Credit(ctx, tx, aggregateCredits(refs)); err != nil {
			return fmt.Errorf("can't credit losers: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// PayBatch marks one page of winning bids as paid and credits the items'
// creators with the winning amounts.
func (bg *BidGeneric) PayBatch(ctx context.Context, cursor int) (next int, err error) {
	// TODO: give the payout job its own batch size instead of riding the refund one
	limit := bg.RefundBatchSize

	err = database.WithTx(ctx, bg.DB, sql.LevelDefault, func(tx *sql.Tx) error {
		refs, err := bg.BidRepository.PayPage(ctx, tx, cursor, limit+1)
		if err != nil {
			return fmt.Errorf("can't get pay page: %w", err)
		}

		refs, next = trimPage(refs, limit)
		if len(refs) == 0 {
			return nil
		}

		if err := bg.BidRepository.MarkPaid(ctx, tx, refIDs(refs)); err != nil {
			return fmt.Errorf("can't mark bids paid: %w", err)
		}

		if err := bg.UserRepository.Credit(ctx, tx, aggregateCredits(refs)); err != nil {
			return fmt.Errorf("can't credit creators: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// trimPage implements the shared cursor contract: the page was queried
// with limit+1 rows; a short page means the scan is done, otherwise the
// extra row is dropped and its id becomes the next (inclusive) cursor.
func trimPage(refs []model.BidRef, limit int) ([]model.BidRef, int) {
	if len(refs) <= limit {
		return refs, 0
	}

	return refs[:limit], refs[limit].ID
}

func refIDs(refs []model.BidRef) []int {
	ids := make([]int, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids
}

func aggregateCredits(refs []model.BidRef) map[int]int {
	credits := make(map[int]int, len(refs))
	for _, ref := range refs {
		credits[ref.Creditee] += ref.Amount
	}
	return credits
}
