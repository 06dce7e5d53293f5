// Package server assembles the token service from configuration and runs its
// gRPC and HTTP transports until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	metrics      *metrics.Metrics
	tokenService *services.TokenService
}

// NewApp opens the configured store, migrates it and builds the token
// service. The caller must Run the app, which closes the store on exit.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)

	rm, err := repomanager.New(ctx, repomanager.Options{
		Backend:        c.StoreBackend,
		DatabaseDSN:    c.DatabaseDSN,
		RedisAddr:      c.RedisAddr,
		RedisPassword:  c.RedisPassword,
		RedisDB:        c.RedisDB,
		RedisKeyPrefix: c.RedisKeyPrefix,
		RedisRetention: c.RedisRetention,
	})
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("migration error: %w", err), rm.Close())
	}

	m := metrics.New()
	ts, err := services.NewTokenService(rm, c,
		services.WithLogger(logger),
		services.WithRecorder(m),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("token service init error: %w", err), rm.Close())
	}

	return &App{config: c, logger: logger, repomanager: rm, metrics: m, tokenService: ts}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.tokenService, app.config.IssuerKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.tokenService, app.metrics.Handler())
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves both transports until ctx is cancelled, a signal arrives or one
// of the servers fails, then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreBackend)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg      sync.WaitGroup
		grpcErr error
		httpErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		grpcErr = app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		httpErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeErr := app.repomanager.Close()
	app.logger.Info(context.Background(), "App stopped")

	return errors.Join(grpcErr, httpErr, closeErr)
}
