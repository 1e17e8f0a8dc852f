package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KelechiEze/paykoin-sub000/internal/config"
	hrest "github.com/KelechiEze/paykoin-sub000/internal/handler/rest"
	"github.com/KelechiEze/paykoin-sub000/internal/pub"
	"github.com/KelechiEze/paykoin-sub000/internal/repository"
	"github.com/KelechiEze/paykoin-sub000/internal/service"
	"github.com/KelechiEze/paykoin-sub000/internal/usecase"
	"github.com/KelechiEze/paykoin-sub000/internal/worker"
)

func NewWalletHTTPServer(cfg config.AppConfig, logger *zap.Logger) error {
	// --- DB connection ---
	dbpool, err := config.ConnectDB()
	if err != nil {
		return err
	}

	// --- Redis client ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Repositories ---
	accountRepo := repository.NewAccountRepo(dbpool)
	walletRepo := repository.NewWalletRepo(dbpool)
	txnRepo := repository.NewTransactionRepo(dbpool)
	transferRepo := repository.NewTransferRepo(dbpool)
	txManager := repository.NewTxManager(dbpool)

	// --- Services ---
	publisher := pub.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, rdb, logger)
	priceService := service.NewPriceService(cfg.PriceAPIBaseURL, cfg.PriceRequestTimeout, rdb, walletRepo, logger)
	systemSeeder := service.NewSystemSeeder(accountRepo, walletRepo, logger)

	// --- Usecases ---
	accountUC := usecase.NewAccountUsecase(accountRepo, rdb, logger)
	ledgerUC := usecase.NewLedgerUsecase(txnRepo, walletRepo, rdb, logger)
	walletUC := usecase.NewWalletUsecase(walletRepo, txnRepo, txManager, ledgerUC, priceService, publisher, logger)
	transferUC := usecase.NewTransferUsecase(
		accountRepo, walletRepo, transferRepo, txnRepo, txManager,
		ledgerUC, publisher, nil, cfg.TransferTimeout, logger,
	)

	// --- Seed system in a goroutine (non-blocking) ---
	go func() {
		if err := systemSeeder.SeedSystem(context.Background()); err != nil {
			logger.Warn("system seeding failed", zap.Error(err))
		}
	}()

	// --- Workers ---
	priceWorker := worker.NewPriceRefresher(priceService, cfg.PriceRefreshInterval, logger)
	go priceWorker.Start(context.Background())
	defer priceWorker.Stop()

	// --- Handlers ---
	accountHandler := hrest.NewAccountRestHandler(accountUC, walletUC)
	walletHandler := hrest.NewWalletRestHandler(walletUC, ledgerUC)
	transferHandler := hrest.NewTransferRestHandler(transferUC, accountUC)
	feedHandler := hrest.NewFeedWSHandler(ledgerUC, logger)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", accountHandler.Signup)
		r.Get("/accounts/{accountID}", accountHandler.GetAccount)
		r.Get("/accounts/{accountID}/wallets", accountHandler.ListWallets)
		r.Post("/accounts/{accountID}/wallets", walletHandler.CreateWallet)
		r.Get("/accounts/{accountID}/wallets/{asset}/balance", walletHandler.GetBalance)
		r.Post("/accounts/{accountID}/deposits", walletHandler.Deposit)
		r.Post("/accounts/{accountID}/withdrawals", walletHandler.Withdraw)
		r.Get("/wallets/{walletID}/transactions", walletHandler.ListTransactions)

		r.Post("/transfers/preview", transferHandler.PreviewFee)
		r.Post("/transfers/validate", transferHandler.ValidateTransfer)
		r.Post("/transfers/resolve-recipient", transferHandler.ResolveRecipient)
		r.Post("/transfers", transferHandler.SubmitTransfer)

		r.Get("/accounts/{accountID}/wallets/{asset}/feed", feedHandler.Stream)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket feed holds connections open
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("wallet HTTP server listening", zap.String("addr", cfg.HTTPAddr))
	return srv.ListenAndServe()
}
