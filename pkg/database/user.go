package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/artembek/auction/pkg/model"
)

type UserRepository interface {
	Create(ctx context.Context, username string) (int, error)
	Get(ctx context.Context, id int) (model.User, error)
	GetTx(ctx context.Context, tx *sql.Tx, id int) (model.User, error)
	Deposit(ctx context.Context, id, amount int) error

	// Debit subtracts delta from the user's balance inside the bid
	// transaction. The caller has already checked delta against the balance.
	Debit(ctx context.Context, tx *sql.Tx, id, delta int) error

	// Credit adds each user's aggregated amount to their balance in a
	// single statement. Used by the refund and pay settlement steps.
	Credit(ctx context.Context, tx *sql.Tx, credits map[int]int) error
}

type UserDatabase struct {
	DB *sql.DB
}

func (u *UserDatabase) Create(ctx context.Context, username string) (int, error) {
	q := `insert into users (username) values ($1) returning id`

	var id int
	if err := u.DB.QueryRowContext(ctx, q, username).Scan(&id); err != nil {
		return 0, fmt.Errorf("can't insert user: %w", err)
	}

	return id, nil
}

func (u *UserDatabase) Get(ctx context.Context, id int) (model.User, error) {
	q := `select id, username, balance, created_at from users where id = $1`

	return scanUser(u.DB.QueryRowContext(ctx, q, id))
}

func (u *UserDatabase) GetTx(ctx context.Context, tx *sql.Tx, id int) (model.User, error) {
	q := `select id, username, balance, created_at from users where id = $1`

	return scanUser(tx.QueryRowContext(ctx, q, id))
}

func (u *UserDatabase) Deposit(ctx context.Context, id, amount int) error {
	q := `update users set balance = balance + $1 where id = $2`

	res, err := u.DB.ExecContext(ctx, q, amount, id)
	if err != nil {
		return fmt.Errorf("can't deposit: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return model.ErrUserNotFound
	}

	return nil
}

func (u *UserDatabase) Debit(ctx context.Context, tx *sql.Tx, id, delta int) error {
	q := `update users set balance = balance - $1 where id = $2`

	if _, err := tx.ExecContext(ctx, q, delta, id); err != nil {
		return fmt.Errorf("can't debit balance: %w", err)
	}

	return nil
}

func (u *UserDatabase) Credit(ctx context.Context, tx *sql.Tx, credits map[int]int) error {
	if len(credits) == 0 {
		return nil
	}

	userIDs := make([]int64, 0, len(credits))
	amounts := make([]int64, 0, len(credits))
	for id, amount := range credits {
		userIDs = append(userIDs, int64(id))
		amounts = append(amounts, int64(amount))
	}

	q := `
		update users u
		set balance = balance + c.amount
		from (select unnest($1::bigint[]) as user_id, unnest($2::bigint[]) as amount) c
		where u.id = c.user_id
	`
	if _, err := tx.ExecContext(ctx, q, userIDs, amounts); err != nil {
		return fmt.Errorf("can't credit balances: %w", err)
	}

	return nil
}

func scanUser(r rowScanner) (model.User, error) {
	var user model.User
	if err := r.Scan(&user.ID, &user.Username, &user.Balance, &user.CreatedAt); err != nil {
		return model.User{}, fmt.Errorf("can't scan user: %w", mapError(err))
	}

	return user, nil
}
