package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"loan-broker/internal/repositories"
	"loan-broker/pkg/config"
	"loan-broker/pkg/database/postgresql"
	"loan-broker/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runAdmin := flag.Bool("admin", false, "Создать суперпользователя")
	runDemo := flag.Bool("demo", false, "Создать партнёра, кредитную организацию и предложения")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -admin -demo)")

	flag.Parse()

	if !*runAdmin && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -admin")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	ctx := context.Background()
	cfg := config.New()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer dbPool.Close()
	txManager := repositories.NewTxManager(dbPool)

	log.Println("======================================================")

	if *runAll || *runAdmin {
		seeders.SeedAdmin(ctx, txManager, cfg)
		log.Println("======================================================")
	}
	if *runAll || *runDemo {
		seeders.SeedDemoData(ctx, txManager, cfg)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
