package app

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/famhub/famhub/internal/config"
	"github.com/famhub/famhub/pkg/family"
	"github.com/famhub/famhub/pkg/user"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "famhub_http_requests_total",
		Help: "Number of HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "famhub_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// openPaths are reachable without a family context: family signup and
// lookup, health and metrics.
var openPaths = []string{
	"/api/family",
	"/api/health",
	"/metrics",
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	if cfg.Metrics.Enabled {
		r.Use(metricsMiddleware)
	}

	// Propagate X-Family-Id and X-User-Id headers into context for
	// downstream services.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			familyIdHeader := req.Header.Get("X-Family-Id")
			if familyIdHeader != "" {
				f, err := deps.FamilyService.GetFamilyByUid(ctx, familyIdHeader)
				if err != nil {
					if errors.Is(err, family.ErrFamilyNotFound) {
						log.Debugf("family not found: %s", familyIdHeader)
						http.Error(w, "family not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to get family: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				ctx = family.WithFamily(ctx, f)
			} else if requiresFamily(req.URL.Path) {
				http.Error(w, "X-Family-Id header is required", http.StatusForbidden)
				return
			}

			userIdHeader := req.Header.Get("X-User-Id")
			if userIdHeader != "" {
				u, err := deps.UserService.GetUserByUid(ctx, userIdHeader)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", userIdHeader)
						http.Error(w, "user not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to get user: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				ctx = user.WithUser(ctx, u)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

func requiresFamily(path string) bool {
	for _, open := range openPaths {
		if path == open || strings.HasPrefix(path, open+"/") {
			return false
		}
	}
	return strings.HasPrefix(path, "/api/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, req)

		route := req.URL.Path
		if current := mux.CurrentRoute(req); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		requestsTotal.WithLabelValues(route, req.Method, strconv.Itoa(recorder.status)).Inc()
		requestDuration.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}
