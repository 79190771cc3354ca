package routes

import (
	"net/http"
	"time"

	"github.com/woodsxwu/WalkInNow/internal/api/handlers"
	"github.com/woodsxwu/WalkInNow/internal/api/loaders"
	"github.com/woodsxwu/WalkInNow/internal/api/middleware"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	clinicHandler       *handlers.ClinicHandler
	availabilityHandler *handlers.AvailabilityHandler
	providerHandler     *handlers.ProviderHandler

	nextSlots       loaders.NextSlotSource
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
	requestDeadline time.Duration
}

// NewRouter creates a new router. cacheMiddleware may be nil.
func NewRouter(
	clinicHandler *handlers.ClinicHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	providerHandler *handlers.ProviderHandler,
	nextSlots loaders.NextSlotSource,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		clinicHandler:       clinicHandler,
		availabilityHandler: availabilityHandler,
		providerHandler:     providerHandler,
		nextSlots:           nextSlots,
		cacheMiddleware:     cacheMiddleware,
		metrics:             metrics,
		allowedOrigins:      allowedOrigins,
	}
}

// WithRequestDeadline bounds every request's context to d
func (r *Router) WithRequestDeadline(d time.Duration) *Router {
	r.requestDeadline = d
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Clinic directory. Only the bare record is response-cached.
	r.mux.HandleFunc("GET /api/clinics", r.clinicHandler.ListClinics)
	r.mux.Handle("GET /api/clinics/{id}", r.cached(http.HandlerFunc(r.clinicHandler.GetClinic)))

	// Availability
	r.mux.HandleFunc("GET /api/clinics/{id}/next-slot", r.clinicHandler.GetNextSlot)
	r.mux.HandleFunc("GET /api/clinics/{id}/calendar", r.clinicHandler.GetCalendar)
	r.mux.Handle("GET /api/availability/next-slots",
		loaders.Middleware(r.nextSlots)(http.HandlerFunc(r.availabilityHandler.GetNextSlots)))

	r.mux.HandleFunc("GET /api/providers", r.providerHandler.ListProviders)

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits directly on the mux so it sees the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestDeadline(r.requestDeadline)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) cached(h http.Handler) http.Handler {
	if r.cacheMiddleware == nil {
		return h
	}
	return r.cacheMiddleware.Middleware(h)
}
