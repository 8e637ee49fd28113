package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/lostfound/internal/model"
)

// Options wires the optional parts of the API.
type Options struct {
	// Dispatcher queues match runs for new and reactivated reports.
	Dispatcher MatchDispatcher
	// Runner serves POST /api/reports/{id}/rematch.
	Runner MatchRunner
	// RequestsPerMinute per client IP. Zero disables rate limiting.
	RequestsPerMinute int
	Burst             int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db, Dispatcher: opts.Dispatcher, Runner: opts.Runner}
	foundHandler := &FoundHandler{DB: db}
	notificationsHandler := &NotificationsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSecurity := RequireRole(model.RoleSecurity)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /healthz", healthz(db))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Own account.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Lost reports: owners and staff.
	mux.Handle("POST /api/reports", authMW(http.HandlerFunc(reportsHandler.Create)))
	mux.Handle("GET /api/reports", authMW(http.HandlerFunc(reportsHandler.List)))
	mux.Handle("GET /api/reports/{id}", authMW(http.HandlerFunc(reportsHandler.Get)))
	mux.Handle("PUT /api/reports/{id}/status", authMW(http.HandlerFunc(reportsHandler.UpdateStatus)))
	mux.Handle("PUT /api/reports/{id}/image", authMW(http.HandlerFunc(reportsHandler.UploadImage)))
	mux.Handle("GET /api/reports/{id}/image", authMW(http.HandlerFunc(reportsHandler.GetImage)))
	mux.Handle("GET /api/reports/{id}/matches", authMW(http.HandlerFunc(reportsHandler.Matches)))
	mux.Handle("POST /api/reports/{id}/rematch", authMW(requireSecurity(http.HandlerFunc(reportsHandler.Rematch))))

	// Found items: read (all roles), write (security+).
	mux.Handle("POST /api/found", authMW(requireSecurity(http.HandlerFunc(foundHandler.Create))))
	mux.Handle("GET /api/found", authMW(http.HandlerFunc(foundHandler.List)))
	mux.Handle("GET /api/found/{id}", authMW(http.HandlerFunc(foundHandler.Get)))
	mux.Handle("PUT /api/found/{id}/status", authMW(requireSecurity(http.HandlerFunc(foundHandler.UpdateStatus))))
	mux.Handle("PUT /api/found/{id}/image", authMW(requireSecurity(http.HandlerFunc(foundHandler.UploadImage))))
	mux.Handle("GET /api/found/{id}/image", authMW(http.HandlerFunc(foundHandler.GetImage)))
	mux.Handle("GET /api/found/{id}/matches", authMW(requireSecurity(http.HandlerFunc(foundHandler.Matches))))

	// Notifications: own only.
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("PUT /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	var handler http.Handler = mux
	if opts.RequestsPerMinute > 0 {
		handler = NewIPRateLimiter(opts.RequestsPerMinute, opts.Burst).Middleware(handler)
	}
	return RequestIDMiddleware(LoggingMiddleware(handler))
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
