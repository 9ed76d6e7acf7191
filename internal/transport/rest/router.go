package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"codepractice/internal/config"
	"codepractice/internal/service"
	"codepractice/internal/transport/rest/handler"
	"codepractice/internal/transport/rest/middleware"
	"codepractice/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	SessionService    *service.SessionService
	SubmissionService *service.SubmissionService
	CredentialService *service.CredentialService
	AnalyticsService  *service.AnalyticsService
	WSHub             *ws.Hub
	CORS              config.CORSConfig
	RequireAccessPass bool
	Log               hclog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	testHandler := handler.NewTestHandler(c.SessionService, c.SubmissionService, c.AnalyticsService, c.Log.Named("test"))
	credentialHandler := handler.NewCredentialHandler(c.CredentialService, c.Log.Named("credentials"))
	problemHandler := handler.NewProblemHandler(c.SessionService.Catalog())
	wsHandler := ws.NewHandler(c.WSHub, c.SessionService, c.CORS.Origins, c.Log.Named("ws"))

	accessMW := middleware.NewAccessMiddleware(c.CredentialService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))
	r.Use(middleware.AccessLog(c.Log.Named("http")))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/credentials/validate", credentialHandler.Validate).Methods("POST", "OPTIONS")

	var start http.Handler = http.HandlerFunc(testHandler.Start)
	if c.RequireAccessPass {
		start = accessMW.RequireAccessPass(start)
	}
	r.Handle("/test/start", start).Methods("GET", "OPTIONS")

	r.HandleFunc("/test/validate_id/{id}", testHandler.ValidateID).Methods("GET", "OPTIONS")
	r.HandleFunc("/test/{id}/problem", testHandler.Problem).Methods("GET", "OPTIONS")
	r.HandleFunc("/test/{id}/submission", testHandler.Submit).Methods("POST", "OPTIONS")
	r.HandleFunc("/test/{id}/end", testHandler.End).Methods("POST", "OPTIONS")
	r.HandleFunc("/test/{id}/analytics", testHandler.Analytics).Methods("GET", "OPTIONS")

	r.HandleFunc("/problems", problemHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/problems/{id:[0-9]+}", problemHandler.Get).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws/test/{id}", wsHandler.TestWS).Methods("GET")

	return r
}

func corsMiddleware(cors config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cors.Origins)
			w.Header().Set("Access-Control-Allow-Methods", cors.Methods)
			w.Header().Set("Access-Control-Allow-Headers", cors.Headers)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
