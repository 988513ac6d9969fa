package http

import (
	"net/http"

	"health-program-api/internal/delivery/http/handler"
	"health-program-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	programHandler    *handler.ProgramHandler
	clientHandler     *handler.ClientHandler
	enrollmentHandler *handler.EnrollmentHandler
	dashboardHandler  *handler.DashboardHandler
	auditLogHandler   *handler.AuditLogHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	programHandler *handler.ProgramHandler,
	clientHandler *handler.ClientHandler,
	enrollmentHandler *handler.EnrollmentHandler,
	dashboardHandler *handler.DashboardHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		authHandler:       authHandler,
		userHandler:       userHandler,
		programHandler:    programHandler,
		clientHandler:     clientHandler,
		enrollmentHandler: enrollmentHandler,
		dashboardHandler:  dashboardHandler,
		auditLogHandler:   auditLogHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
	}
}

// Setup registers every route. CORS wraps the whole router so preflight
// requests are answered even though no OPTIONS route exists.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/verify-otp", r.authHandler.VerifyOTP).Methods(http.MethodPost)

	// Everything below requires a token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", r.dashboardHandler.Get).Methods(http.MethodGet)

	// Staff management and audit (admin)
	protected.Handle("/users", admin(r.userHandler.CreateUser)).Methods(http.MethodPost)
	protected.Handle("/audit-logs", admin(r.auditLogHandler.GetAllAuditLogs)).Methods(http.MethodGet)
	protected.Handle("/audit-logs/{id:[0-9]+}", admin(r.auditLogHandler.GetAuditLog)).Methods(http.MethodGet)

	// Programs: read any, write doctor
	protected.HandleFunc("/programs", r.programHandler.List).Methods(http.MethodGet)
	protected.Handle("/programs", doctor(r.programHandler.Create)).Methods(http.MethodPost)
	protected.HandleFunc("/programs/{id}", r.programHandler.Get).Methods(http.MethodGet)
	protected.Handle("/programs/{id}", doctor(r.programHandler.Update)).Methods(http.MethodPut)
	protected.Handle("/programs/{id}", doctor(r.programHandler.Delete)).Methods(http.MethodDelete)

	// Clients: read any, write registrar
	protected.HandleFunc("/clients", r.clientHandler.List).Methods(http.MethodGet)
	protected.Handle("/clients", registrar(r.clientHandler.Create)).Methods(http.MethodPost)
	protected.HandleFunc("/clients/search", r.clientHandler.Search).Methods(http.MethodPost)
	protected.HandleFunc("/clients/{id}", r.clientHandler.Get).Methods(http.MethodGet)
	protected.Handle("/clients/{id}", registrar(r.clientHandler.Update)).Methods(http.MethodPut)
	protected.Handle("/clients/{id}", registrar(r.clientHandler.Delete)).Methods(http.MethodDelete)
	protected.HandleFunc("/clients/{id}/profile", r.clientHandler.Profile).Methods(http.MethodGet)
	protected.Handle("/clients/{id}/enroll", middleware.RequireEnroller(http.HandlerFunc(r.clientHandler.Enroll))).Methods(http.MethodPost)

	// Enrollments (doctor)
	enrollments := protected.PathPrefix("/enrollments").Subrouter()
	enrollments.Use(middleware.RequireDoctor)
	enrollments.HandleFunc("", r.enrollmentHandler.List).Methods(http.MethodGet)
	enrollments.HandleFunc("", r.enrollmentHandler.Create).Methods(http.MethodPost)
	enrollments.HandleFunc("/{id}", r.enrollmentHandler.Get).Methods(http.MethodGet)
	enrollments.HandleFunc("/{id}", r.enrollmentHandler.Update).Methods(http.MethodPut)
	enrollments.HandleFunc("/{id}", r.enrollmentHandler.Delete).Methods(http.MethodDelete)
	enrollments.HandleFunc("/{id}/toggle_active", r.enrollmentHandler.ToggleActive).Methods(http.MethodPost)

	return r.corsMiddleware.Handle(r.router)
}

func admin(h http.HandlerFunc) http.Handler     { return middleware.RequireAdmin(h) }
func doctor(h http.HandlerFunc) http.Handler    { return middleware.RequireDoctor(h) }
func registrar(h http.HandlerFunc) http.Handler { return middleware.RequireRegistrar(h) }

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
