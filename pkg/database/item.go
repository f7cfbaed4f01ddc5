package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/artembek/auction/pkg/model"
)

type ItemRepository interface {
	Create(ctx context.Context, name string, startPrice, timeWindow, createdBy int) (int, error)
	Get(ctx context.Context, id int) (model.Item, error)
	GetPage(ctx context.Context, num, size int) ([]model.Item, int, error)
	Publish(ctx context.Context, id int) error

	// GetForBidding loads the item inside the bid transaction. Drafts are
	// invisible to bidders, so only ONGOING and FINISHED rows are returned;
	// rejecting FINISHED is the caller's rule.
	GetForBidding(ctx context.Context, tx *sql.Tx, id int) (model.Item, error)

	FinishPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]int, error)
	MarkFinished(ctx context.Context, tx *sql.Tx, ids []int) error
	WinnerCandidates(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.WinnerPick, error)
	SetWinner(ctx context.Context, tx *sql.Tx, itemID, bidID int) error
}

type ItemDatabase struct {
	DB *sql.DB
}

const itemColumns = "id, name, start_price, time_window, started_at, status, winner_bid_id, created_by, created_at"

func (i *ItemDatabase) Create(ctx context.Context, name string, startPrice, timeWindow, createdBy int) (int, error) {
	q := `
		insert into items (name, start_price, time_window, status, created_by)
		values ($1, $2, $3, $4, $5)
		returning id
	`
	var id int
	if err := i.DB.QueryRowContext(ctx, q, name, startPrice, timeWindow, model.ItemStatusDraft, createdBy).Scan(&id); err != nil {
		return 0, fmt.Errorf("can't insert item: %w", err)
	}

	return id, nil
}

func (i *ItemDatabase) Get(ctx context.Context, id int) (model.Item, error) {
	q := `select ` + itemColumns + ` from items where id = $1`

	item, err := scanItem(i.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		return model.Item{}, fmt.Errorf("can't get item: %w", mapError(err))
	}

	return item, nil
}

func (i *ItemDatabase) GetPage(ctx context.Context, num, size int) ([]model.Item, int, error) {
	q := `
		select count(*) from items where status <> $1
	`
	var total int
	if err := i.DB.QueryRowContext(ctx, q, model.ItemStatusDraft).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count items: %w", err)
	}

	offset := (num - 1) * size
	q = `
		select ` + itemColumns + `
		from items
		where status <> $1
		order by id
		limit $2 offset $3
	`
	rows, err := i.DB.QueryContext(ctx, q, model.ItemStatusDraft, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query items: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0, size)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("can't scan item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over items: %w", err)
	}

	return items, total, nil
}

func (i *ItemDatabase) Publish(ctx context.Context, id int) error {
	q := `
		update items
		set status = $1, started_at = now()
		where id = $2 and status = $3
	`
	res, err := i.DB.ExecContext(ctx, q, model.ItemStatusOngoing, id, model.ItemStatusDraft)
	if err != nil {
		return fmt.Errorf("can't publish item: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return model.ErrNotDraft
	}

	return nil
}

func (i *ItemDatabase) GetForBidding(ctx context.Context, tx *sql.Tx, id int) (model.Item, error) {
	q := `select ` + itemColumns + ` from items where id = $1 and status in ($2, $3)`

	item, err := scanItem(tx.QueryRowContext(ctx, q, id, model.ItemStatusOngoing, model.ItemStatusFinished))
	if err != nil {
		return model.Item{}, fmt.Errorf("can't get item for bidding: %w", mapError(err))
	}

	return item, nil
}

func (i *ItemDatabase) FinishPage(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]int, error) {
	q := `
		select id from items
		where status = $1
		  and now() >= started_at + time_window * interval '1 second'
		  and id >= $2
		order by id asc
		limit $3
	`
	rows, err := tx.QueryContext(ctx, q, model.ItemStatusOngoing, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query due items: %w", err)
	}
	defer rows.Close()

	ids, err := scanIDs(rows, limit)
	if err != nil {
		return nil, fmt.Errorf("can't scan due items: %w", err)
	}

	return ids, nil
}

func (i *ItemDatabase) MarkFinished(ctx context.Context, tx *sql.Tx, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	q := `
		update items
		set status = $1
		where id = any($2) and status = $3
	`
	if _, err := tx.ExecContext(ctx, q, model.ItemStatusFinished, toInt64s(ids), model.ItemStatusOngoing); err != nil {
		return fmt.Errorf("can't mark items finished: %w", err)
	}

	return nil
}

func (i *ItemDatabase) WinnerCandidates(ctx context.Context, tx *sql.Tx, cursor, limit int) ([]model.WinnerPick, error) {
	q := `
		select distinct on (b.item_id) b.item_id, b.id
		from bids b
		join items i on i.id = b.item_id and i.status = $1
		where i.winner_bid_id is null
		  and b.is_active
		  and b.item_id >= $2
		order by b.item_id asc, b.amount desc
		limit $3
	`
	rows, err := tx.QueryContext(ctx, q, model.ItemStatusFinished, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query winner candidates: %w", err)
	}
	defer rows.Close()

	picks := make([]model.WinnerPick, 0, limit)
	for rows.Next() {
		var p model.WinnerPick
		if err := rows.Scan(&p.ItemID, &p.BidID); err != nil {
			return nil, fmt.Errorf("can't scan winner candidate: %w", err)
		}

		picks = append(picks, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over winner candidates: %w", err)
	}

	return picks, nil
}

func (i *ItemDatabase) SetWinner(ctx context.Context, tx *sql.Tx, itemID, bidID int) error {
	q := `
		update items
		set winner_bid_id = $1
		where id = $2 and winner_bid_id is null
	`
	if _, err := tx.ExecContext(ctx, q, bidID, itemID); err != nil {
		return fmt.Errorf("can't set winner bid: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (model.Item, error) {
	var item model.Item
	err := r.Scan(
		&item.ID, &item.Name, &item.StartPrice, &item.TimeWindow,
		&item.StartedAt, &item.Status, &item.WinnerBidID, &item.CreatedBy, &item.CreatedAt,
	)
	return item, err
}

func scanIDs(rows *sql.Rows, capacity int) ([]int, error) {
	ids := make([]int, 0, capacity)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
