// Command audit-consumer stores session events from the broker in MySQL,
// or in a log file when no database is configured.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/pos-backoffice/internal/config"
	"github.com/iliyamo/pos-backoffice/internal/database"
	"github.com/iliyamo/pos-backoffice/internal/queue"
	"github.com/iliyamo/pos-backoffice/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
	cfg := config.LoadAuditConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink queue.Sink = &queue.FileSink{Path: cfg.LogFile}
	if cfg.UseDB() {
		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		repo := repository.NewSessionEventRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		sink = repo
		log.Printf("writing session events to mysql %s/%s", cfg.DBHost, cfg.DBName)
	} else {
		log.Printf("writing session events to %s", cfg.LogFile)
	}

	if err := queue.StartConsumer(ctx, cfg.AMQPURL, sink); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer: %v", err)
	}
	log.Println("consumer stopped")
}
