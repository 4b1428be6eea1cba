package exchange

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const (
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "*, content-type"
)

// requestLogger logs every request and records its route, status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.RecordRequest(route, status, duration)

		s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"duration":   duration.String(),
		}).Info("request served")
	})
}

// corsHandler lets any origin call the exchange. rs/cors negotiates the
// request; the fixed header values are then applied to every response and
// preflight requests are answered directly with the route's allowed methods.
func (s *Server) corsHandler() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"*"},
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		return c.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", "*")
			header.Set("Access-Control-Allow-Methods", allowedMethods)
			header.Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			allow := s.allowedMethods(r.URL.Path)
			if len(allow) == 0 {
				http.NotFound(w, r)
				return
			}
			header.Set("Allow", strings.Join(append(allow, http.MethodOptions), ", "))
			w.WriteHeader(http.StatusNoContent)
		}))
	}
}

func (s *Server) allowedMethods(path string) []string {
	var methods []string
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		if s.router.Match(chi.NewRouteContext(), method, path) {
			methods = append(methods, method)
		}
	}
	return methods
}

// workerPool bounds the number of requests served at once. A request arriving
// while every slot is taken is rejected with 503 instead of queueing.
func (s *Server) workerPool(maxWorkers int) func(http.Handler) http.Handler {
	semaphore := make(chan struct{}, maxWorkers)
	s.logger.Infof("Worker pool initialized with %d max concurrent workers", maxWorkers)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Acquire worker slot - immediate rejection if pool full
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }() // Release worker slot
				next.ServeHTTP(w, r)
			default:
				s.logger.Warn("No workers available, rejecting request (pool full)")
				s.metrics.RecordRejected()
				s.writeError(w, r, http.StatusServiceUnavailable, errorUnavailable, "no workers available")
			}
		})
	}
}
