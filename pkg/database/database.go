package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrNotFound = errors.New("record not found")

const (
	maxOpenConns    = 100
	maxIdleConns    = 50
	connMaxLifetime = 15 * time.Minute
)

func New(addr, database, user, password string) (db *sql.DB, close func() error, err error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s", user, password, addr, database)

	db, err = sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("can't open database: %w", err)
	}

	// bid placement holds a SERIALIZABLE tx per request, keep headroom
	// below the server's max_connections
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("can't ping database: %w", err)
	}

	return db, db.Close, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
