package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the embedded migrations that have not been recorded in
// schema_migrations yet, in file-name order. Each migration runs in its
// own transaction together with its bookkeeping row.
func Migrate(ctx context.Context, db *sql.DB) error {
	q := `
		create table if not exists schema_migrations (
			name       text primary key,
			applied_at timestamptz not null default now()
		)
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("can't create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("can't read embedded migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		q := `select exists (select 1 from schema_migrations where name = $1)`
		if err := db.QueryRowContext(ctx, q, name).Scan(&applied); err != nil {
			return fmt.Errorf("can't check migration %s: %w", name, err)
		}

		if applied {
			continue
		}

		script, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("can't read migration %s: %w", name, err)
		}

		err = WithTx(ctx, db, sql.LevelDefault, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return fmt.Errorf("can't apply migration %s: %w", name, err)
			}

			if _, err := tx.ExecContext(ctx, `insert into schema_migrations (name) values ($1)`, name); err != nil {
				return fmt.Errorf("can't record migration %s: %w", name, err)
			}

			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("migration applied", slog.String("name", name))
	}

	return nil
}
