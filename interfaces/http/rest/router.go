package rest

import (
	"net/http"

	"homeport-backend/interfaces/http/rest/handlers"
	"homeport-backend/interfaces/http/rest/middleware"
	"homeport-backend/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	intake      *handlers.IntakeHandler
	profile     *handlers.ProfileHandler
	attachments *handlers.AttachmentHandler
	validator   *auth.JWTValidator
	enableCORS  bool
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	intake *handlers.IntakeHandler,
	profile *handlers.ProfileHandler,
	attachments *handlers.AttachmentHandler,
	validator *auth.JWTValidator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		intake:      intake,
		profile:     profile,
		attachments: attachments,
		validator:   validator,
		enableCORS:  enableCORS,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.ClientID())

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.homeport.app"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.ClientIDHeader},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		// Anonymous intake. IP-limited since there is no principal yet.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(30))
			r.Post("/intake", rt.intake.SubmitIntake)
		})

		// Authenticated profile surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.validator, rt.logger))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", rt.profile.GetProfile)
				r.Get("/session", rt.profile.GetSession)
				r.Post("/edit", rt.profile.StartEdit)
				r.Patch("/draft", rt.profile.MutateDraft)
				r.Post("/cancel", rt.profile.CancelEdit)
				r.Post("/save", rt.profile.SaveEdit)
				r.Post("/submit", rt.profile.SubmitForReview)
			})

			r.Route("/attachments", func(r chi.Router) {
				r.Post("/", rt.attachments.Upload)
				r.Get("/", rt.attachments.List)
				r.Get("/{name}/url", rt.attachments.ResolveURL)
				r.Delete("/{name}", rt.attachments.Delete)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
