package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/tripfluencer-admin/internal/config"
	"github.com/georgemunganga/tripfluencer-admin/internal/database"
	"github.com/georgemunganga/tripfluencer-admin/internal/migrations"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/auth"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/health"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/points"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/pointsettings"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/redemption"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/userdirectory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; production injects the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		log.Fatalf("failed to apply database migrations: %v", err)
	}

	// ── Tier settings ───────────────────────────────────────
	var seed []*pointsettings.Tier
	if cfg.TierSeedFile != "" {
		if seed, err = pointsettings.LoadSeedFile(cfg.TierSeedFile); err != nil {
			log.Fatalf("failed to load tier seed: %v", err)
		}
	}
	settingsService := pointsettings.NewService(pointsettings.NewPostgresRepository(db), seed)
	if _, err := settingsService.InitializeDefaults(context.Background()); err != nil {
		log.Fatalf("failed to initialize tier settings: %v", err)
	}

	// ── Ledgers ─────────────────────────────────────────────
	directory := userdirectory.NewClient(cfg.UserServiceURL, cfg.UserServiceTimeout)
	pointsService := points.NewService(points.NewPostgresRepository(db), settingsService)
	redemptionService := redemption.NewService(
		redemption.NewPostgresRepository(db), cfg.RedemptionBasePrice, cfg.ExpiryBatchSize)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	health.NewHandler(db).RegisterRoutes(router)

	admin := auth.RequireAdmin(auth.NewVerifier(cfg.JWTSecret))
	router.Route("/admin/auth", func(r chi.Router) {
		pointsettings.NewHandler(settingsService).RegisterRoutes(r, admin)
		points.NewHandler(pointsService, directory).RegisterRoutes(r, admin)
		redemption.NewHandler(redemptionService, directory).RegisterRoutes(r, admin)
	})

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("TripFluencer points API starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server exited with error: %v", err)
		os.Exit(1)
	}
}
