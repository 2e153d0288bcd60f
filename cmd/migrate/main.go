package main

import (
	"context"
	"flag"
	"log"

	"loan-broker/migrations"
	"loan-broker/pkg/config"
)

func main() {
	command := flag.String("cmd", "up", "Команда: up, down, reset, status")
	flag.Parse()

	cfg := config.New()
	ctx := context.Background()

	var err error
	switch *command {
	case "up":
		err = migrations.Up(ctx, cfg.Postgres.DSN)
	case "down":
		err = migrations.Down(ctx, cfg.Postgres.DSN)
	case "reset":
		err = migrations.Reset(ctx, cfg.Postgres.DSN)
	case "status":
		err = migrations.Status(ctx, cfg.Postgres.DSN)
	default:
		log.Fatalf("❌ Неизвестная команда %q", *command)
	}
	if err != nil {
		log.Fatalf("❌ Миграция %s завершилась ошибкой: %v", *command, err)
	}
	log.Printf("✅ Миграция %s выполнена", *command)
}
