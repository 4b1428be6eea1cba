// Package exchange serves the mock exchange over HTTP.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ggicci/httpin"
	"github.com/ggicci/httpin/integration"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"

	"github.com/stackpop/mocktioneer/config"
	"github.com/stackpop/mocktioneer/metrics"
	"github.com/stackpop/mocktioneer/verification"
)

// Version is reported on the info page. Overridden at build time with -ldflags.
var Version = "dev"

const (
	RootURL           = "/"
	HealthURL         = "/health"
	MetricsURL        = "/metrics"
	AuctionURL        = "/openrtb2/auction"
	APSBidURL         = "/e/dtb/bid"
	MediateURL        = "/adserver/mediate"
	StaticImageURL    = "/static/img/{size}"
	StaticCreativeURL = "/static/creatives/{size}"
	ClickURL          = "/click"
	PixelURL          = "/pixel"
	maxRequestBytes   = 1 << 20
)

func init() {
	integration.UseGochiURLParam("path", chi.URLParam)
}

// Server wires the exchange handlers to their dependencies.
type Server struct {
	cfg      *config.ExchangeConfig
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	verifier *verification.Verifier
	rnr      *render.Render
	router   *chi.Mux
}

// NewServer builds the router. verifier checks auction request signatures.
func NewServer(cfg *config.ExchangeConfig, logger *logrus.Logger, m *metrics.Metrics, verifier *verification.Verifier) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		verifier: verifier,
		rnr: render.New(render.Options{
			StreamingJSON: true,
		}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(s.corsHandler())
	router.Use(s.workerPool(s.cfg.MaxConcurrentRequests))
	router.Use(middleware.Timeout(s.cfg.RequestTimeout))

	router.Get(RootURL, s.handleRoot)
	router.Get(HealthURL, s.handleHealth)
	if s.cfg.MetricsEnabled {
		router.Method(http.MethodGet, MetricsURL, s.metrics.Handler())
	}

	router.Post(AuctionURL, s.handleAuction)
	router.Post(APSBidURL, s.handleAPSBid)
	router.Post(MediateURL, s.handleMediate)

	router.With(httpin.NewInput(imageInput{})).Get(StaticImageURL, s.handleStaticImage)
	router.With(httpin.NewInput(creativeInput{})).Get(StaticCreativeURL, s.handleStaticCreative)
	router.With(httpin.NewInput(clickInput{})).Get(ClickURL, s.handleClick)
	router.Get(PixelURL, s.handlePixel)

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infof("Start listening to http://%s/", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestHost is the host creative URLs point at: the Host header, else the configured default.
func (s *Server) requestHost(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	return s.cfg.DefaultHost
}
