package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/conciliar/internal/alias"
	aliasStore "github.com/MrJamesThe3rd/conciliar/internal/alias/store"
	"github.com/MrJamesThe3rd/conciliar/internal/config"
	"github.com/MrJamesThe3rd/conciliar/internal/database"
	conciliarHttp "github.com/MrJamesThe3rd/conciliar/internal/http"
	aliasHandler "github.com/MrJamesThe3rd/conciliar/internal/http/alias"
	statementHandler "github.com/MrJamesThe3rd/conciliar/internal/http/statement"
	txHandler "github.com/MrJamesThe3rd/conciliar/internal/http/transaction"
	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/logging"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
	txStore "github.com/MrJamesThe3rd/conciliar/internal/transaction/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.App.LogLevel)
	slog.SetDefault(logger)

	matchCfg, err := cfg.MatchingConfig()
	if err != nil {
		return fmt.Errorf("matching config: %w", err)
	}

	engine, err := matching.NewEngine(matchCfg)
	if err != nil {
		return err
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		aliasService       = alias.NewService(aliasStore.New(db))
		reconcileService   = reconcile.NewService(
			importer.NewService(),
			engine,
			transactionService,
			transactionService,
			aliasService,
			logger,
		)
	)

	var (
		statementH   = statementHandler.NewHandler(reconcileService, cfg.Server.UploadLimit)
		transactionH = txHandler.NewHandler(transactionService)
		aliasH       = aliasHandler.NewHandler(aliasService)
	)

	router := conciliarHttp.New(
		conciliarHttp.Options{CORSOrigins: cfg.Server.CORSOrigins},
		statementH,
		transactionH,
		aliasH,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
