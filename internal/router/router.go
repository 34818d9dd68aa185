package router

import (
	"log"
	"net/http"

	"github.com/banyan-furniture/api/internal/config"
	"github.com/banyan-furniture/api/internal/database"
	"github.com/banyan-furniture/api/internal/enum"
	"github.com/banyan-furniture/api/internal/handler"
	mw "github.com/banyan-furniture/api/internal/middleware"
	"github.com/banyan-furniture/api/internal/service"
	"github.com/banyan-furniture/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Storefront reads are public; order and admin routes sit behind
// authentication with role-based gates.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // storefront dev server
			"http://localhost:5174", // back-office dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	r.Route("/auth", authHandler.RegisterRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	furnitureHandler := handler.NewFurnitureHandler(queries)

	// Storefront catalog reads (public)
	r.Route("/api/furniture", furnitureHandler.RegisterPublicRoutes)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Orders
		newOrderStore := func(db database.DBTX) service.OrderStore {
			return database.New(db)
		}
		orderService := service.NewOrderService(pool, newOrderStore)
		orderHandler := handler.NewOrderHandler(orderService, queries, orderService.Transitions, hub)
		r.Route("/api/orders", orderHandler.RegisterRoutes)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			r.Route("/api/admin/furniture", furnitureHandler.RegisterAdminRoutes)

			supplierHandler := handler.NewSupplierHandler(queries)
			r.Route("/api/suppliers", supplierHandler.RegisterRoutes)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/api/users", userHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
