package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"loan-broker/internal/repositories"
	"loan-broker/pkg/config"
)

// SeedDemo создаёт партнёра, кредитную организацию и её предложения.
// Всё в одной транзакции; существующие пользователи пропускаются.
func SeedDemo(ctx context.Context, txManager repositories.TxManagerInterface, cfg *config.Config) error {
	log.Println("  - Наполнение демо-данных...")

	if cfg.Seeder.DemoPassword == "" {
		log.Println("    ℹ️  SEED_DEMO_PASSWORD не задан. Пропускаем.")
		return nil
	}

	return txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := seedCompany(ctx, tx, demoPartner, cfg.Seeder.DemoPassword); err != nil {
			return err
		}

		creditOrgID, err := seedCompany(ctx, tx, demoCreditOrg, cfg.Seeder.DemoPassword)
		if err != nil {
			return err
		}
		if creditOrgID == 0 {
			return nil
		}

		for _, o := range demoOffers {
			_, err := tx.Exec(ctx,
				`INSERT INTO offers (name, company_id, rotation_start, rotation_end, kind, min_score, max_score)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				o.Name, creditOrgID, o.RotationStart, o.RotationEnd, o.Kind, o.MinScore, o.MaxScore,
			)
			if err != nil {
				return fmt.Errorf("создание предложения %q: %w", o.Name, err)
			}
		}
		log.Printf("    ✅ Создано предложений: %d", len(demoOffers))
		return nil
	})
}

// seedCompany возвращает 0, если пользователь компании уже есть.
func seedCompany(ctx context.Context, tx pgx.Tx, c demoCompany, password string) (uint64, error) {
	existing, err := findUser(ctx, tx, c.Username)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		log.Printf("    ℹ️  Пользователь '%s' уже существует, пропускаем", c.Username)
		return 0, nil
	}

	userID, err := insertUser(ctx, tx, c.Username, password, false)
	if err != nil {
		return 0, err
	}

	var id uint64
	err = tx.QueryRow(ctx,
		`INSERT INTO companies (name, kind, user_id) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Kind, userID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("создание компании %q: %w", c.Name, err)
	}
	log.Printf("    ✅ Компания '%s' (%s) создана, логин '%s'", c.Name, c.Kind, c.Username)
	return id, nil
}
