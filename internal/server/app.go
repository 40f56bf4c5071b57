// Package server initializes and runs the main application server. It picks
// the account store and code delivery backends from configuration, wires the
// services together and runs the HTTP endpoint until shut down.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bkkdisplay/confeditor/internal/logging"
	"github.com/bkkdisplay/confeditor/internal/server/config"
	"github.com/bkkdisplay/confeditor/internal/server/httpapi"
	"github.com/bkkdisplay/confeditor/internal/server/notifier"
	"github.com/bkkdisplay/confeditor/internal/server/repositories/accounts"
	"github.com/bkkdisplay/confeditor/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
	db      *sql.DB
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &App{config: cfg, logger: logger}

	repo, err := app.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	configs := services.NewConfigService(repo, cfg.MaxUploadsPerDay, logger)
	authSvc := services.NewAuthService(repo, app.newNotifier(), configs, logger)

	api := httpapi.NewServer(authSvc, configs, []byte(cfg.SecretKey), cfg.SessionTokenValidity, logger)
	app.handler = api.Handler()

	return app, nil
}

func (app *App) openStore(ctx context.Context) (accounts.Repository, error) {
	switch app.config.StoreBackend {
	case config.StoreMemory:
		return accounts.NewMemoryRepository(), nil
	case config.StorePostgres:
		db, err := accounts.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		app.db = db
		return accounts.NewPostgresRepository(db), nil
	case config.StoreSheets:
		creds, err := os.ReadFile(app.config.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading sheets credentials: %w", err)
		}
		return accounts.NewSheetsRepository(ctx, app.config.SpreadsheetID, app.config.Worksheet, creds)
	default:
		return nil, fmt.Errorf("unknown store backend %q", app.config.StoreBackend)
	}
}

// newNotifier returns the SMTP sender when a host is configured, otherwise
// codes go to the server log. The log fallback keeps local development
// working without a mail account.
func (app *App) newNotifier() notifier.Notifier {
	if app.config.SMTPHost == "" {
		return notifier.NewLogNotifier(app.logger)
	}
	return notifier.NewSMTPNotifier(app.config.SMTPHost, app.config.SMTPPort,
		app.config.SMTPUser, app.config.SMTPPassword, app.config.SMTPSender)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
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

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr, "store", app.config.StoreBackend)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Handler:      app.handler,
		Addr:         app.config.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err.Error())
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err.Error())
		}
	}
}
