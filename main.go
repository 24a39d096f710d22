// Package main is the entry point for the back-office archival service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/yelinaung/backoffice/internal/archive"
	"gitlab.com/yelinaung/backoffice/internal/config"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/httpapi"
	"gitlab.com/yelinaung/backoffice/internal/logger"
	"gitlab.com/yelinaung/backoffice/internal/notify"
	"gitlab.com/yelinaung/backoffice/internal/repository"
	"gitlab.com/yelinaung/backoffice/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("backoffice %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code once every deferred cleanup has run, so
// telemetry is flushed and connections are closed even on failure.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load config")
		return 1
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTelExporter, version)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to set up telemetry")
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to run migrations")
		return 1
	}

	logger.Log.Info().Msg("Database initialized successfully")

	notifier, closeNotifier := buildNotifier(cfg)
	defer closeNotifier()

	archiver := archive.New(
		repository.NewArchiveRepository(pool),
		repository.NewExpenseRepository(pool),
		repository.NewInvoiceRepository(pool),
		archive.WithActivityLog(repository.NewActivityLogRepository(pool)),
		archive.WithNotifier(notifier),
		archive.WithInterval(cfg.ArchiveCheckInterval),
		archive.WithLocation(cfg.Location()),
	)

	if len(args) > 0 && args[0] == "archive" {
		if err := runOnce(ctx, archiver, cfg, args[1:]); err != nil {
			logger.Log.Error().Err(err).Msg("Archive run failed")
			return 1
		}
		return 0
	}

	if err := serve(ctx, cfg, pool, archiver); err != nil {
		logger.Log.Error().Err(err).Msg("Server stopped with error")
		return 1
	}
	logger.Log.Info().Msg("Shut down cleanly")
	return 0
}

// buildNotifier wires the configured notification channels. A channel that
// fails to connect is logged and skipped.
func buildNotifier(cfg *config.Config) (archive.Notifier, func()) {
	var (
		notifiers []archive.Notifier
		closers   []func() error
	)

	if cfg.TelegramEnabled() {
		tg, err := notify.DialTelegram(cfg.TelegramBotToken, cfg.TelegramAdminChatIDs)
		if err != nil {
			logger.Log.Error().Err(err).Msg("Telegram notifications disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := notify.DialEventPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			logger.Log.Error().Err(err).Msg("Archive events disabled")
		} else {
			notifiers = append(notifiers, pub)
			closers = append(closers, pub.Close)
		}
	}

	return notify.Combine(notifiers...), func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Log.Warn().Err(err).Msg("Failed to close notifier")
			}
		}
	}
}

// runOnce handles `backoffice archive [YYYY-MM]`. Without a period it applies
// the day-1 rule to the current time.
func runOnce(ctx context.Context, a *archive.Archiver, cfg *config.Config, args []string) error {
	var (
		result *archive.Result
		err    error
	)
	if len(args) > 0 {
		p, perr := archive.ParsePeriod(args[0])
		if perr != nil {
			return perr
		}
		result, err = a.RunForPeriod(ctx, p)
	} else {
		result, err = a.Tick(ctx, time.Now().In(cfg.Location()))
	}
	if err != nil {
		return err
	}
	if result == nil {
		logger.Log.Info().Msg("Not the first day of the month, nothing to archive")
		return nil
	}

	logger.Log.Info().
		Str("period", result.Period.String()).
		Str("status", string(result.Status)).
		Int64("expenses_pruned", result.ExpensesPruned).
		Int64("invoices_pruned", result.InvoicesPruned).
		Msg("Archive run finished")
	if len(result.PruneErrors) > 0 {
		return errors.Join(result.PruneErrors...)
	}
	return nil
}

// serve runs the HTTP server and the archive loop until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, a *archive.Archiver) error {
	handler := httpapi.NewRouter(httpapi.Deps{
		Archives: repository.NewArchiveRepository(pool),
		Expenses: repository.NewExpenseRepository(pool),
		Invoices: repository.NewInvoiceRepository(pool),
		Budgets:  repository.NewBudgetRepository(pool),
		Clients:  repository.NewClientRepository(pool),
		Products: repository.NewProductRepository(pool),
		Activity: repository.NewActivityLogRepository(pool),
		Runner:   a,
		Location: cfg.Location(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if cfg.ArchiveEnabled {
		g.Go(func() error {
			a.Start(gctx)
			return nil
		})
	} else {
		logger.Log.Info().Msg("Monthly archive is disabled")
	}

	return g.Wait()
}
