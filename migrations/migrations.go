// Package migrations хранит SQL-схему и применяет её через goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Up применяет все миграции к базе по DSN.
func Up(ctx context.Context, dsn string) error {
	return run(ctx, dsn, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, ".")
	})
}

// Down откатывает последнюю миграцию.
func Down(ctx context.Context, dsn string) error {
	return run(ctx, dsn, func(db *sql.DB) error {
		return goose.DownContext(ctx, db, ".")
	})
}

// Reset откатывает все миграции. Используется в интеграционных тестах.
func Reset(ctx context.Context, dsn string) error {
	return run(ctx, dsn, func(db *sql.DB) error {
		return goose.ResetContext(ctx, db, ".")
	})
}

// Status печатает состояние миграций.
func Status(ctx context.Context, dsn string) error {
	return run(ctx, dsn, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, ".")
	})
}

func run(ctx context.Context, dsn string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("открытие соединения: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("пинг БД: %w", err)
	}

	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}
