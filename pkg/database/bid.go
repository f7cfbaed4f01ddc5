package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/artembek/auction/pkg/model"
)

type BidRepository interface {
	// Insert creates a new active bid. Must run inside the bid transaction.
	Insert(ctx context.Context, tx *sql.Tx, userID, itemID, amount int) (int, error)

	// Highest returns the highest bid amount on the item across all users,
	// 0 when nobody has bid yet.
	Highest(ctx context.Context, tx *sql.Tx, itemID int) (int, error)

	// DeactivatePrev marks the user's current active bid on the item as
	// inactive and returned, and reports its amount (0 if there was none).
	// The amount stays escrowed; the caller charges only the difference.
	DeactivatePrev(ctx context.Context, tx *sql.Tx, itemID, userID int) (int, error)

	GetPageByItem(ctx context.Context, itemID, num, size int) ([]model.Bid, int, error)
	GetPageByUser(ctx context.Context, userID int, onlyActive bool, num, size int) ([]model.Bid, int, error)

	RefundPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.BidRef, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, ids []int) error
	PayPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.BidRef, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, ids []int) error
}

type BidDatabase struct {
	DB *sql.DB
}

func (b *BidDatabase) Insert(ctx context.Context, tx *sql.Tx, userID, itemID, amount int) (int, error) {
	q := `
		insert into bids (item_id, user_id, amount, is_active)
		values ($1, $2, $3, true)
		returning id
	`
	var id int
	if err := tx.QueryRowContext(ctx, q, itemID, userID, amount).Scan(&id); err != nil {
		return 0, fmt.Errorf("can't insert bid: %w", err)
	}

	return id, nil
}

func (b *BidDatabase) Highest(ctx context.Context, tx *sql.Tx, itemID int) (int, error) {
	q := `select coalesce(max(amount), 0) from bids where item_id = $1`

	var amount int
	if err := tx.QueryRowContext(ctx, q, itemID).Scan(&amount); err != nil {
		return 0, fmt.Errorf("can't get highest bid: %w", err)
	}

	return amount, nil
}

func (b *BidDatabase) DeactivatePrev(ctx context.Context, tx *sql.Tx, itemID, userID int) (int, error) {
	q := `
		update bids
		set is_active = false, is_returned = true
		where item_id = $1 and user_id = $2 and is_active
		returning amount
	`
	var amount int
	err := tx.QueryRowContext(ctx, q, itemID, userID).Scan(&amount)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("can't deactivate previous bid: %w", err)
	}

	return amount, nil
}

const bidColumns = `
	b.id, b.item_id, b.user_id, b.amount,
	b.is_active, b.is_returned, b.is_paid,
	coalesce(b.id = i.winner_bid_id, false) as is_winner,
	b.created_at
`

func (b *BidDatabase) GetPageByItem(ctx context.Context, itemID, num, size int) ([]model.Bid, int, error) {
	q := `
		select count(*) from bids where item_id = $1
	`
	var total int
	if err := b.DB.QueryRowContext(ctx, q, itemID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count bids: %w", err)
	}

	offset := (num - 1) * size
	q = `
		select ` + bidColumns + `
		from bids b
		join items i on i.id = b.item_id
		where b.item_id = $1
		order by b.id desc
		limit $2 offset $3
	`
	rows, err := b.DB.QueryContext(ctx, q, itemID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query bids: %w", err)
	}
	defer rows.Close()

	return scanBids(rows, size, total)
}

func (b *BidDatabase) GetPageByUser(ctx context.Context, userID int, onlyActive bool, num, size int) ([]model.Bid, int, error) {
	q := `
		select count(*) from bids where user_id = $1 and (not $2 or is_active)
	`
	var total int
	if err := b.DB.QueryRowContext(ctx, q, userID, onlyActive).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count bids: %w", err)
	}

	offset := (num - 1) * size
	q = `
		select ` + bidColumns + `
		from bids b
		join items i on i.id = b.item_id
		where b.user_id = $1 and (not $2 or b.is_active)
		order by b.id desc
		limit $3 offset $4
	`
	rows, err := b.DB.QueryContext(ctx, q, userID, onlyActive, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query bids: %w", err)
	}
	defer rows.Close()

	return scanBids(rows, size, total)
}

// RefundPage selects losing bids still holding escrow: active, not yet
// returned and not the item's winner. Bids on items without a picked
// winner are excluded (null winner_bid_id fails the <> comparison), so
// refunds never run ahead of the pick-winner job.
func (b *BidDatabase) RefundPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.BidRef, error) {
	q := `
		select b.id, b.amount, b.user_id
		from bids b
		join items i on i.id = b.item_id
		where b.is_active
		  and not b.is_returned
		  and b.id <> i.winner_bid_id
		  and b.id >= $1
		order by b.id asc
		limit $2
	`
	rows, err := tx.QueryContext(ctx, q, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query refundable bids: %w", err)
	}
	defer rows.Close()

	return scanBidRefs(rows, limit)
}

func (b *BidDatabase) MarkReturned(ctx context.Context, tx *sql.Tx, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	q := `
		update bids
		set is_returned = true
		where id = any($1) and not is_returned
	`
	if _, err := tx.ExecContext(ctx, q, toInt64s(ids)); err != nil {
		return fmt.Errorf("can't mark bids returned: %w", err)
	}

	return nil
}

// PayPage selects winning bids whose amount has not been handed to the
// item's creator yet. The creditee is the creator, not the bidder.
func (b *BidDatabase) PayPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.BidRef, error) {
	q := `
		select b.id, b.amount, i.created_by
		from bids b
		join items i on i.winner_bid_id = b.id
		where b.is_active
		  and not b.is_paid
		  and b.id >= $1
		order by b.id asc
		limit $2
	`
	rows, err := tx.QueryContext(ctx, q, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query payable bids: %w", err)
	}
	defer rows.Close()

	return scanBidRefs(rows, limit)
}

func (b *BidDatabase) MarkPaid(ctx context.Context, tx *sql.Tx, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	q := `
		update bids
		set is_paid = true
		where id = any($1) and not is_paid
	`
	if _, err := tx.ExecContext(ctx, q, toInt64s(ids)); err != nil {
		return fmt.Errorf("can't mark bids paid: %w", err)
	}

	return nil
}

func scanBids(rows *sql.Rows, size, total int) ([]model.Bid, int, error) {
	bids := make([]model.Bid, 0, size)
	for rows.Next() {
		var bid model.Bid
		err := rows.Scan(
			&bid.ID, &bid.ItemID, &bid.UserID, &bid.Amount,
			&bid.IsActive, &bid.IsReturned, &bid.IsPaid, &bid.IsWinner,
			&bid.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("can't scan bid: %w", err)
		}

		bids = append(bids, bid)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over bids: %w", err)
	}

	return bids, total, nil
}

func scanBidRefs(rows *sql.Rows, capacity int) ([]model.BidRef, error) {
	refs := make([]model.BidRef, 0, capacity)
	for rows.Next() {
		var ref model.BidRef
		if err := rows.Scan(&ref.ID, &ref.Amount, &ref.Creditee); err != nil {
			return nil, fmt.Errorf("can't scan bid ref: %w", err)
		}

		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bid refs: %w", err)
	}

	return refs, nil
}
