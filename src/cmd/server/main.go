package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/controller"
	"github.com/sente-books/ledger-service/src/internal/adapter/http/middleware"
	"github.com/sente-books/ledger-service/src/internal/adapter/http/router"
	"github.com/sente-books/ledger-service/src/internal/adapter/repository/implementations"
	"github.com/sente-books/ledger-service/src/internal/config"
	"github.com/sente-books/ledger-service/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := implementations.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := implementations.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	accountRepo := implementations.NewAccountRepository(db)
	transactionRepo := implementations.NewTransactionRepository(db)

	accountService := services.NewAccountService(accountRepo)
	journalService := services.NewJournalService(transactionRepo, accountRepo, accountService)
	expenseService := services.NewExpenseService(accountService, journalService)

	mux := router.New(
		controller.NewAccountController(accountService),
		controller.NewJournalController(journalService),
		controller.NewExpenseController(expenseService),
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey, cfg.ChannelKeyHash),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("ledger service listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}
