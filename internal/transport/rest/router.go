package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"formwoz/internal/service"
	"formwoz/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	InterviewService *service.InterviewService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	interviewHandler := handler.NewInterviewHandler(c.InterviewService)
	recordHandler := handler.NewRecordHandler(c.InterviewService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/rooms", interviewHandler.CreateRoom).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/messages", interviewHandler.Message).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/status", interviewHandler.Status).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/transcript", interviewHandler.Transcript).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/edits", interviewHandler.Edit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/edits/confirm", interviewHandler.ConfirmEdit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/records/{code}", recordHandler.Get).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
