// Package server initializes and runs the application server.
// It wires the Postgres repositories, the blob store, the OCR and SMS
// clients and the completion backend, runs migrations, handles graceful
// shutdown, and starts the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dkrylov/medvault/internal/logging"
	"github.com/dkrylov/medvault/internal/server/config"
	"github.com/dkrylov/medvault/internal/server/httpapi"
	"github.com/dkrylov/medvault/internal/server/llm"
	"github.com/dkrylov/medvault/internal/server/notify"
	"github.com/dkrylov/medvault/internal/server/ocr"
	"github.com/dkrylov/medvault/internal/server/repositories/repomanager"
	"github.com/dkrylov/medvault/internal/server/services"
	"github.com/dkrylov/medvault/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := storage.NewS3BlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	jobs, err := ocr.NewTextractClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ocr client init error: %w", err)
	}

	notifier, err := notify.NewSNSSender(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sms sender init error: %w", err)
	}

	completer := llm.NewOpenAICompleter(cfg)

	otps := services.NewOTPService(db, rm, notifier, logger, cfg)
	users := services.NewUserService(db, rm, otps, cfg)
	docs := services.NewDocumentService(db, rm, blobs, jobs, logger, cfg)
	query := services.NewQueryService(db, rm, completer, logger)

	srv := httpapi.NewServer(cfg, logger, users, docs, query)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
