package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hexvale/frontier/internal/api"
	"github.com/hexvale/frontier/internal/config"
	"github.com/hexvale/frontier/internal/infra/logging"
	"github.com/hexvale/frontier/internal/infra/pgutils"
	gamesrepo "github.com/hexvale/frontier/internal/repos/games"
	gamesmem "github.com/hexvale/frontier/internal/repos/games/memory"
	gamespg "github.com/hexvale/frontier/internal/repos/games/postgres"
	settlementsrepo "github.com/hexvale/frontier/internal/repos/settlements"
	settlementsmem "github.com/hexvale/frontier/internal/repos/settlements/memory"
	settlementspg "github.com/hexvale/frontier/internal/repos/settlements/postgres"
	"github.com/hexvale/frontier/internal/services/gamesvc"
	"github.com/hexvale/frontier/pkg/envconf"
	"github.com/hexvale/frontier/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Repositories ---
	var (
		db          *sql.DB
		games       gamesrepo.Games
		settlements settlementsrepo.Settlements
	)

	switch cfg.Storage {
	case storagePostgres:
		pgCfg := new(config.PostgresConfig)

		err = envconf.Load(pgCfg)
		if err != nil {
			return fmt.Errorf("init postgres config: %w", err)
		}

		db, err = pgutils.OpenDB(ctx, pgCfg.DSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}

		db.SetMaxOpenConns(pgCfg.MaxOpenConns)
		db.SetMaxIdleConns(pgCfg.MaxIdleConns)
		db.SetConnMaxIdleTime(pgCfg.ConnMaxIdleTime)
		db.SetConnMaxLifetime(pgCfg.ConnMaxLifetime)

		shutdownqueue.AddNamed("db", func(context.Context) error {
			slog.Info("Close db")

			return db.Close()
		})

		games = gamespg.New(db)
		settlements = settlementspg.New(db)
	case storageMemory:
		games = gamesmem.New()
		settlements = settlementsmem.New()
	}

	// --- Game service ---
	svc := gamesvc.New(db, games, settlements)

	restored, err := svc.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}

	slog.Info("games loaded", "count", restored)

	if cfg.TradeTTL > 0 {
		go svc.RunSweeper(ctx, cfg.TradeTTL, cfg.TradeSweepInterval)
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, svc)

	// Register HTTP server graceful shutdown
	shutdownqueue.AddNamed("server", func(c context.Context) error {
		slog.Info("Shut down server")

		return srv.Shutdown(c)
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "storage", cfg.Storage)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
