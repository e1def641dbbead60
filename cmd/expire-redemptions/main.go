// Command expire-redemptions marks every ACTIVE redemption past its expiry
// as EXPIRED and exits. It is meant to be run from cron.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/georgemunganga/tripfluencer-admin/internal/config"
	"github.com/georgemunganga/tripfluencer-admin/internal/database"
	"github.com/georgemunganga/tripfluencer-admin/internal/migrations"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/redemption"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadSweep()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		log.Fatalf("failed to apply database migrations: %v", err)
	}

	svc := redemption.NewService(redemption.NewPostgresRepository(db), cfg.RedemptionBasePrice, cfg.ExpiryBatchSize)
	n, err := svc.ExpireOld(ctx)
	if err != nil {
		log.Fatalf("expiry sweep failed after %d redemptions: %v", n, err)
	}
	log.Printf("expiry sweep done: %d redemptions expired", n)
}
