// File: cmd/server/router.go
package main

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/iyunix/go-darkbin/internal/middleware"
)

// corsMiddleware echoes back configured origins so that browser clients on
// another host can send the auth cookie.
func corsMiddleware(allowed []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && lo.ContainsBy(allowed, func(o string) bool { return o == "*" || strings.EqualFold(o, origin) }) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(app *Application) *mux.Router {
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(app.UserService, app.Logger)

	r.Use(mux.MiddlewareFunc(middleware.NewRecoverPanic(app.Logger)))
	r.Use(mux.MiddlewareFunc(middleware.NewLoggingMiddleware(app.Logger)))
	r.Use(corsMiddleware(app.Config.AllowedOrigins))

	// --- Public Routes ---
	r.HandleFunc("/health", app.HealthHandler.Health).Methods("GET")
	r.HandleFunc("/register", app.AuthHandler.Register).Methods("POST")
	r.HandleFunc("/login", app.AuthHandler.Login).Methods("POST")
	r.HandleFunc("/logout", app.AuthHandler.Logout).Methods("GET")
	r.HandleFunc("/api/logs", app.LogHandler.LogFrontendEvent).Methods("POST")

	// Anonymous sockets are accepted and stay inert.
	r.HandleFunc("/ws", app.WebSocketHandler.HandleConnection).Methods("GET")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(authMiddleware))
	api.HandleFunc("/chat/messages", app.ChatHandler.GetMessages).Methods("GET")
	api.HandleFunc("/chat/presence", app.ChatHandler.GetPresence).Methods("GET")
	api.HandleFunc("/profile", app.AuthHandler.Me).Methods("GET")
	api.HandleFunc("/profile/color", app.AuthHandler.UpdateColor).Methods("PUT")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	})

	return r
}
