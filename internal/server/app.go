// Package server wires the pinboard server together: it opens the storage
// backend chosen by the configuration, builds the services and runs the
// HTTP endpoint until the process is signalled to stop.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/dmitrijs2005/pinboard/internal/server/cache"
	"github.com/dmitrijs2005/pinboard/internal/server/config"
	"github.com/dmitrijs2005/pinboard/internal/server/httpapi"
	"github.com/dmitrijs2005/pinboard/internal/server/metrics"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pinboard/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	pinService    *services.PinService
	uploadService *services.UploadService
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
}

// NewApp opens storage and builds the services. The schema is not touched
// until Run or the first request.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	db, rm, err := repomanager.Open(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mx := metrics.New(reg)

	ps := services.NewPinService(db, rm, c, cache.New(), logger, mx)
	us := services.NewUploadService(c)

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		pinService:    ps,
		uploadService: us,
		registry:      reg,
		metrics:       mx,
	}, nil
}

// Close releases the connection pool.
func (app *App) Close() error {
	return app.db.Close()
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
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.pinService, app.uploadService,
		app.config.SecretKey, app.metrics, app.registry)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or the process receives SIGINT/SIGTERM.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	// a failure here is retried by the first request
	if err := app.pinService.EnsureSchema(ctx); err != nil {
		app.logger.Warn(ctx, "schema not ready at startup", "error", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "closing storage", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
