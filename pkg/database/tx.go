package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type TxFunc func(*sql.Tx) error

// WithTx runs fn inside a transaction with the given isolation level.
//
// A rollback or commit failing on its own does not override fn's result:
// the failure is logged and the business outcome is reported as is.
func WithTx(ctx context.Context, db *sql.DB, isolation sql.IsolationLevel, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return fmt.Errorf("can't begin tx: %w", err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			_ = tx.Rollback()
			panic(p)

		case err != nil:
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("can't rollback tx", slog.Any("error", rbErr))
			}

		default:
			if cmErr := tx.Commit(); cmErr != nil {
				slog.Error("can't commit tx", slog.Any("error", cmErr))
			}
		}
	}()

	err = fn(tx)
	return
}
