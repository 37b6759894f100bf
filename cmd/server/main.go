package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"medware/m/internal/api"
	"medware/m/internal/auth"
	"medware/m/internal/config"
	"medware/m/internal/database"
	"medware/m/internal/logger"
	"medware/m/internal/migrations"
	"medware/m/internal/reports"
	"medware/m/internal/scheduler"
	"medware/m/internal/security"
	"medware/m/internal/seed"
	"medware/m/internal/stock"
	"medware/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New("medware", cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	hasher := security.NewHasher(cfg.Auth.PBKDF2Iterations)
	medicineStore := store.NewMedicineStore(db, log)
	supplierStore := store.NewSupplierStore(db, log)
	userStore := store.NewUserStore(db, hasher, log)
	transactionStore := store.NewTransactionStore(db, log)
	alertStore := store.NewAlertStore(db, log)
	auditStore := store.NewAuditStore(db, log)

	ctx := context.Background()
	if err := userStore.EnsureDefaultAdmin(ctx, "admin", "admin123"); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure default admin")
	}
	seed.LoadCatalog(db, cfg.SeedCatalogPath, log)

	engine := stock.NewEngine(db, cfg.Alerts.ExpiryWarningDays, log)
	reportSvc := reports.New(db, log)
	authSvc := auth.NewService(userStore, hasher, cfg.Auth.MaxFailedAttempts, cfg.Auth.LockoutDuration, log)

	sched := scheduler.New(engine, cfg.Alerts.SweepSchedule, log)
	sched.Start()
	defer sched.Stop()

	handler := api.New(api.Deps{
		Medicines:    medicineStore,
		Suppliers:    supplierStore,
		Users:        userStore,
		Transactions: transactionStore,
		Alerts:       alertStore,
		Audit:        auditStore,
		Engine:       engine,
		Reports:      reportSvc,
		Auth:         authSvc,
		Secret:       cfg.Secret,
		TokenTTL:     cfg.Auth.TokenTTL,
		Log:          log,
	})

	log.Info().Str("port", cfg.HTTPPort).Msg("medware server starting")
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
