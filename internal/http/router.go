package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/go-tours-api/internal/auth"
	"github.com/redmonkez12/go-tours-api/internal/config"
	"github.com/redmonkez12/go-tours-api/internal/httputil"
	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/review"
	"github.com/redmonkez12/go-tours-api/internal/tour"
	"github.com/redmonkez12/go-tours-api/internal/user"
)

// Handlers bundles the resource handlers mounted by the router
type Handlers struct {
	Auth   *auth.Handler
	Users  *user.Handler
	Tours  *tour.Handler
	Review *review.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Get("/logout", h.Auth.Logout)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Patch("/reset-password/{token}", h.Auth.ResetPassword)

			// Self-service routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Patch("/update-my-password", h.Auth.UpdatePassword)
				r.Get("/me", h.Users.GetMe)
				r.Patch("/update-me", h.Users.UpdateMe)
				r.Delete("/delete-me", h.Users.DeleteMe)
			})

			// Admin-only user management
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Use(auth.RequireRole(user.RoleAdmin))
				r.Get("/", h.Users.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Users.Get)
					r.Patch("/", h.Users.Update)
					r.Delete("/", h.Users.Delete)
				})
			})
		})

		r.Route("/tours", func(r chi.Router) {
			r.Get("/", h.Tours.List)
			r.Get("/top-5-cheap", h.Tours.TopTours)
			r.Get("/tour-stats", h.Tours.Stats)
			r.Get("/tours-within/{distance}/center/{latlng}/unit/{unit}", h.Tours.ToursWithin)
			r.Get("/distances/{latlng}/unit/{unit}", h.Tours.Distances)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Use(auth.RequireRole(user.RoleAdmin, user.RoleLeadGuide, user.RoleGuide))
				r.Get("/monthly-plan/{year}", h.Tours.MonthlyPlan)
			})

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Use(auth.RequireRole(user.RoleAdmin, user.RoleLeadGuide))
				r.Post("/", h.Tours.Create)
			})

			// chi allows a single wildcard name per segment, so the nested
			// review routes share {id} with the tour routes
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Tours.Get)
				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.RequireAuth)
					r.Use(auth.RequireRole(user.RoleAdmin, user.RoleLeadGuide))
					r.Patch("/", h.Tours.Update)
					r.Delete("/", h.Tours.Delete)
				})

				r.Route("/reviews", func(r chi.Router) {
					r.Use(authMiddleware.RequireAuth)
					r.Get("/", h.Review.List)
					r.With(auth.RequireRole(user.RoleUser)).Post("/", h.Review.Create)
				})
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/", h.Review.List)
			r.With(auth.RequireRole(user.RoleUser)).Post("/", h.Review.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Review.Get)
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(user.RoleUser, user.RoleAdmin))
					r.Patch("/", h.Review.Update)
					r.Delete("/", h.Review.Delete)
				})
			})
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
