package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garmentscore/internal/logger"
	"garmentscore/internal/service"
	"garmentscore/internal/transport/rest/handler"
	"garmentscore/internal/transport/rest/middleware"
	"garmentscore/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	CatalogService    service.CatalogSource
	AssessmentService *service.AssessmentService
	ReportService     *service.ReportService
	WSHub             *ws.Hub
	CORSOrigins       string
	Log               *logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, broadcasterOf(c.WSHub))
	catalogHandler := handler.NewCatalogHandler(c.CatalogService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	reportHandler := handler.NewReportHandler(c.ReportService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(middleware.RequestLogger(c.Log))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService)
		v1.HandleFunc("/ws/admin", wsHandler.AdminFeed).Methods("GET")
	}

	// Client routes (require an approved client)
	clientRoutes := v1.NewRoute().Subrouter()
	clientRoutes.Use(authMW.RequireClient)

	clientRoutes.HandleFunc("/assessments", assessmentHandler.Submit).Methods("POST", "OPTIONS")

	// Shared routes (admin or owning client)
	sharedRoutes := v1.NewRoute().Subrouter()
	sharedRoutes.Use(authMW.RequireAny)

	sharedRoutes.HandleFunc("/catalog", catalogHandler.Get).Methods("GET", "OPTIONS")
	sharedRoutes.HandleFunc("/assessments/{id}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	sharedRoutes.HandleFunc("/assessments/{id}/report", reportHandler.GetLatest).Methods("GET", "OPTIONS")
	sharedRoutes.HandleFunc("/reports/{id}", reportHandler.Get).Methods("GET", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/clients/{clientId}/token", authHandler.IssueClientToken).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/clients/{clientId}/token", authHandler.RevokeClient).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/clients/{clientId}/assessments", assessmentHandler.ListByClient).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{id}/report", reportHandler.Regenerate).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/scoreboard", reportHandler.Scoreboard).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/scoreboard/{clientId}", reportHandler.Standing).Methods("GET", "OPTIONS")

	return r
}

// broadcasterOf avoids handing a typed nil hub to handlers
func broadcasterOf(hub *ws.Hub) service.Broadcaster {
	if hub == nil {
		return nil
	}
	return hub
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
