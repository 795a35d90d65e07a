package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cafemanage/api/internal/config"
	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/handler"
	mw "github.com/cafemanage/api/internal/middleware"
	"github.com/cafemanage/api/internal/service"
	"github.com/cafemanage/api/internal/store"
	"github.com/cafemanage/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, st *store.Store, orders *service.OrderService, carts *service.CartService, tables *service.TableService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(st, carts, cfg.Auth.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.Auth.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.Auth.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		menuHandler := handler.NewMenuHandler(st)
		menuHandler.RegisterRoutes(r)

		cartHandler := handler.NewCartHandler(carts)
		cartHandler.RegisterRoutes(r)

		orderHandler := handler.NewOrderHandler(orders, st, carts, hub)
		orderHandler.RegisterRoutes(r)

		tableHandler := handler.NewTableHandler(tables, hub)
		tableHandler.RegisterRoutes(r)

		dashboardHandler := handler.NewDashboardHandler(st)
		dashboardHandler.RegisterRoutes(r)

		settingsHandler := handler.NewSettingsHandler(st)
		settingsHandler.RegisterRoutes(r)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			menuHandler.RegisterAdminRoutes(r)
			settingsHandler.RegisterAdminRoutes(r)

			reportsHandler := handler.NewReportsHandler(st)
			reportsHandler.RegisterRoutes(r)
		})
	})

	return r
}
