// Package server wires the identity service together: it opens the user
// store, builds the hasher and token codec, and runs the NATS transport with
// the optional gRPC mirror and metrics endpoint until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/natsx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const closeTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	userService *services.UserService
	metrics     *metrics.Recorder
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, rm)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("store schema error: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(c)
	if err != nil {
		return nil, err
	}
	us := services.NewUserService(rm.Users(), hasher, auth.NewTokenCodec(c))

	return &App{
		config:      c,
		logger:      logger,
		repos:       rm,
		userService: us,
		metrics:     metrics.NewRecorder(),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
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

// start runs fn in the group; a failure stops the whole app.
func (app *App) start(ctx context.Context, wg *sync.WaitGroup, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, "component failed", "component", name, "error", err)
			cancelFunc()
		}
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver)

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	ns := natsx.NewServer(app.config, app.userService, app.logger, app.metrics)
	app.start(ctx, &wg, cancelFunc, "nats", ns.Run)

	if app.config.EndpointAddrGRPC != "" {
		gsrv := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.metrics)
		app.start(ctx, &wg, cancelFunc, "grpc", gsrv.Run)
	}

	if app.config.MetricsAddr != "" {
		app.start(ctx, &wg, cancelFunc, "metrics", func(ctx context.Context) error {
			return app.metrics.Serve(ctx, app.config.MetricsAddr, app.logger)
		})
	}

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "store close error", "error", err)
	}

	app.logger.Info(closeCtx, "App stopped")
}
