// Package httpapi is the JSON-over-HTTP surface of the pinboard server. It
// translates requests into PinService calls and service errors into status
// codes; no business rules live here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/dmitrijs2005/pinboard/internal/server/metrics"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/dmitrijs2005/pinboard/internal/server/services"
)

// ShutdownTimeout bounds how long in-flight requests may run after Run's
// context is cancelled.
const ShutdownTimeout = 10 * time.Second

// PinService is the facade the handlers call.
type PinService interface {
	Ready() bool
	ListPins(ctx context.Context, category string) ([]models.Pin, error)
	CreatePin(ctx context.Context, p *models.NewPin) (*models.Pin, error)
	GetPinWithVisits(ctx context.Context, id int64) (*models.PinWithVisits, error)
	UpdatePin(ctx context.Context, id int64, upd *models.PinUpdate) (*models.Pin, error)
	DeletePin(ctx context.Context, id int64) error
	AddVisit(ctx context.Context, pinID int64, v *models.NewVisit) (*models.Visit, error)
	UpdateVisit(ctx context.Context, id int64, patch *models.VisitPatch) (*models.Visit, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpsertCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// UploadService hands out image upload slots.
type UploadService interface {
	PresignUpload(ctx context.Context, contentType string) (*services.UploadSlot, error)
}

type HTTPServer struct {
	address   string
	echo      *echo.Echo
	pins      PinService
	uploads   UploadService
	logger    logging.Logger
	metrics   *metrics.Metrics
	jwtSecret []byte
}

// NewHTTPServer builds the echo router. gatherer backs /metrics and may be
// nil to leave the endpoint out.
func NewHTTPServer(addr string, l logging.Logger, ps PinService, us UploadService, secretKey string,
	mx *metrics.Metrics, gatherer prometheus.Gatherer) *HTTPServer {
	s := &HTTPServer{
		address:   addr,
		echo:      echo.New(),
		pins:      ps,
		uploads:   us,
		logger:    l.With("module", "http_server"),
		metrics:   mx,
		jwtSecret: []byte(secretKey),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes(gatherer)
	return s
}

func (s *HTTPServer) routes(gatherer prometheus.Gatherer) {
	e := s.echo
	e.Use(s.requestLogger)

	e.GET("/healthz", s.health)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	api.GET("/pins", s.listPins)
	api.GET("/pins/:id", s.getPin)
	api.GET("/categories", s.listCategories)
	api.GET("/stats", s.stats)

	auth := s.requireSession
	api.POST("/pins", s.createPin, auth)
	api.PUT("/pins/:id", s.updatePin, auth)
	api.DELETE("/pins/:id", s.deletePin, auth)
	api.POST("/pins/:id/visits", s.addVisit, auth)
	api.PATCH("/visits/:id", s.updateVisit, auth)
	api.POST("/categories", s.upsertCategory, auth)
	api.POST("/uploads", s.createUpload, auth)
}

// Handler exposes the router, mainly for httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests. It
// returns only after the drain has finished.
func (s *HTTPServer) Run(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	// Start returns ErrServerClosed as soon as Shutdown begins
	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}
