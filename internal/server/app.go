// Package server initializes and runs the Vibecast server: the HTTP API
// that ingests uploads, batches and nudges, and the push dispatcher that
// consumes the change feed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vibecast/vibecast/internal/feed"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/push"
	"github.com/vibecast/vibecast/internal/server/config"
	"github.com/vibecast/vibecast/internal/server/db"
	"github.com/vibecast/vibecast/internal/server/dispatch"
	"github.com/vibecast/vibecast/internal/server/httpapi"
	"github.com/vibecast/vibecast/internal/server/repositories/repomanager"
	"github.com/vibecast/vibecast/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	handlers *httpapi.Handlers
	dispatch *dispatch.Dispatcher
	consumer feed.Consumer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	conn, err := db.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	// The feed carries committed mutations to the dispatcher. With no
	// Redis configured both ends share an in-process channel.
	var pub feed.Publisher
	var consumer feed.Consumer
	if c.RedisAddr != "" {
		r, err := feed.NewRedis(ctx, c.RedisAddr, c.FeedStream, logger)
		if err != nil {
			return nil, fmt.Errorf("feed init error: %w", err)
		}
		pub, consumer = r, r
	} else {
		m := feed.NewMemory(256, logger)
		pub, consumer = m, m
	}

	var gateway push.Gateway
	if c.FCMCredentialsFile != "" {
		gateway, err = push.NewFCMGateway(ctx, c.FCMCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("push gateway init error: %w", err)
		}
	} else {
		gateway = push.NewLogGateway(logger)
	}

	fanout := services.NewFanoutService(conn, rm, pub, logger)
	uploads := services.NewUploadService(c)
	nudges := services.NewNudgeService(conn, rm, pub, logger)
	vibes := services.NewVibeService(conn, rm, logger)

	handlers := httpapi.NewHandlers(uploads, fanout, nudges, vibes, rm.Accounts(conn), logger)
	dispatcher := dispatch.New(rm.Accounts(conn), gateway, logger)

	return &App{
		config:   c,
		logger:   logger,
		handlers: handlers,
		dispatch: dispatcher,
		consumer: consumer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:         app.config.EndpointAddrHTTP,
		Handler:      app.handlers.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http api listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startDispatcher(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "dispatcher consuming change feed")
	if err := app.dispatch.Run(ctx, app.consumer); err != nil && ctx.Err() == nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startDispatcher(ctx, cancelFunc)
	}()

	wg.Wait()
}
