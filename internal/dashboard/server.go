// Package dashboard serves the interactive emissions viewer: an HTML
// selection page, chart image endpoints, and a small JSON API.
package dashboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/logging"
	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/view"
)

// Server holds the dependencies for the dashboard handlers
type Server struct {
	cfg     *model.Config
	svc     *dataset.Service
	builder *view.Builder
	logger  *slog.Logger
}

// NewServer creates the dashboard server over a dataset service
func NewServer(cfg *model.Config, svc *dataset.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		svc:     svc,
		builder: view.NewBuilder(svc, logger),
		logger:  logger,
	}
}

// Handler returns the routed handler with request logging attached
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/", s.indexHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", s.healthzHandler)

	router.HandlerFunc(http.MethodGet, "/charts/emissions", s.emissionsChartHandler)
	router.HandlerFunc(http.MethodGet, "/charts/reconciliation", s.reconciliationChartHandler)
	router.HandlerFunc(http.MethodGet, "/charts/difference", s.differenceChartHandler)

	router.HandlerFunc(http.MethodGet, "/api/v1/actors", s.actorsHandler)
	router.HandlerFunc(http.MethodGet, "/api/v1/reconciliation", s.reconciliationHandler)

	return s.logRequests(router)
}

// ListenAndServe runs the dashboard with production timeouts
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	s.logger.Info("starting dashboard", "addr", srv.Addr, "env", s.cfg.Server.Env)
	return srv.ListenAndServe()
}

// statusRecorder captures the response code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		logging.HTTPRequest(s.logger, r.Method, r.URL.Path, recorder.status,
			float64(time.Since(start).Microseconds())/1000)
	})
}
