package seeders

import (
	"context"
	"log"

	"loan-broker/internal/repositories"
	"loan-broker/pkg/config"
)

// SeedAdmin создаёт суперпользователя.
func SeedAdmin(ctx context.Context, txManager repositories.TxManagerInterface, cfg *config.Config) {
	log.Println("▶️  Запуск создания администратора...")
	if err := SeedSuperAdmin(ctx, txManager, cfg); err != nil {
		log.Fatalf("❌ Ошибка создания SuperAdmin: %v", err)
	}
	log.Println("✅ Создание администратора завершено!")
}

// SeedDemoData наполняет компании и предложения для ручной проверки.
func SeedDemoData(ctx context.Context, txManager repositories.TxManagerInterface, cfg *config.Config) {
	log.Println("▶️  Запуск наполнения демо-данных...")
	if err := SeedDemo(ctx, txManager, cfg); err != nil {
		log.Fatalf("❌ Ошибка наполнения демо-данных: %v", err)
	}
	log.Println("✅ Наполнение демо-данных завершено!")
}
