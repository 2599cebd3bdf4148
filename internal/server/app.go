// Package server initializes and runs the application: configuration,
// database and migrations, the service layer, the public HTTP API, and the
// metrics listener, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/linkt-app/linkt/internal/logging"
	"github.com/linkt-app/linkt/internal/server/auth"
	"github.com/linkt-app/linkt/internal/server/config"
	"github.com/linkt-app/linkt/internal/server/httpapi"
	"github.com/linkt-app/linkt/internal/server/monitoring"
	"github.com/linkt-app/linkt/internal/server/notify"
	"github.com/linkt-app/linkt/internal/server/repositories/repomanager"
	"github.com/linkt-app/linkt/internal/server/services"
	"github.com/linkt-app/linkt/internal/server/verification"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *fiber.App
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer := verification.NewDefaultIssuer()

	smtpHost, smtpPortStr, err := net.SplitHostPort(cfg.SMTPAddr)
	if err != nil {
		return nil, fmt.Errorf("smtp address error: %w", err)
	}
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("smtp address error: %w", err)
	}
	mailer := notify.NewMailer(smtpHost, smtpPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	mailer.InsecureSkipVerify = cfg.SMTPSkipTLSVerify

	tokens := auth.NewJWTManager([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)

	authSvc := services.NewAuthService(db, rm, issuer, mailer, tokens, logger)
	scanSvc := services.NewScanService(db, rm, logger)
	ticketSvc := services.NewTicketService(db, rm, logger)
	posterSvc := services.NewPosterService(db, rm, cfg)

	api := httpapi.NewServer(authSvc, scanSvc, ticketSvc, posterSvc, tokens, rm.Users(db), logger).Router()

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
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

func (app *App) startAPIServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		_ = app.api.ShutdownWithTimeout(shutdownTimeout)
	}()

	app.logger.Info(ctx, "http api listening", "addr", app.config.EndpointAddrHTTP)
	if err := app.api.Listen(app.config.EndpointAddrHTTP); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	srv := &http.Server{Addr: app.config.EndpointAddrMetrics, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "metrics listening", "addr", app.config.EndpointAddrMetrics)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startAPIServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
