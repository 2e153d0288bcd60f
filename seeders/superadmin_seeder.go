package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"loan-broker/internal/repositories"
	"loan-broker/pkg/config"
	"loan-broker/pkg/utils"
)

// SeedSuperAdmin создаёт суперпользователя, если его ещё нет.
func SeedSuperAdmin(ctx context.Context, txManager repositories.TxManagerInterface, cfg *config.Config) error {
	log.Println("  - Запуск сидера SuperAdmin...")

	username := cfg.Seeder.AdminUsername
	password := cfg.Seeder.AdminPassword
	if username == "" || password == "" {
		log.Println("    ℹ️  SEED_ADMIN_USERNAME или SEED_ADMIN_PASSWORD не заданы. Пропускаем создание.")
		return nil
	}

	return txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := findUser(ctx, tx, username)
		if err != nil {
			return err
		}
		if id != 0 {
			log.Println("    ℹ️  Суперпользователь уже существует. Не трогаем.")
			return nil
		}

		if _, err := insertUser(ctx, tx, username, password, true); err != nil {
			return err
		}
		log.Printf("    ✅ Суперпользователь '%s' создан", username)
		return nil
	})
}

// findUser возвращает 0, если пользователя нет.
func findUser(ctx context.Context, tx pgx.Tx, username string) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("поиск пользователя %s: %w", username, err)
	}
	return id, nil
}

func insertUser(ctx context.Context, tx pgx.Tx, username, password string, superuser bool) (uint64, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("хеширование пароля: %w", err)
	}

	var id uint64
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_superuser) VALUES ($1, $2, $3) RETURNING id`,
		username, hash, superuser,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("создание пользователя %s: %w", username, err)
	}
	return id, nil
}
