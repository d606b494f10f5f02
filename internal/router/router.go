package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/novo-pos/api/internal/config"
	"github.com/novo-pos/api/internal/enum"
	"github.com/novo-pos/api/internal/handler"
	mw "github.com/novo-pos/api/internal/middleware"
	"github.com/novo-pos/api/internal/service"
	"github.com/novo-pos/api/internal/store"
	"github.com/novo-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Customer-facing reads stay public; everything that mutates order
// state sits behind JWT auth, with admin-only routes on top.
func New(cfg *config.Config, st *store.Store, hub *ws.Hub, dispatcher service.Dispatcher) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	orderService := service.NewOrderService(st, hub, dispatcher)
	revenueService := service.NewRevenueService(st)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Menu: reads are public for the customer ordering screen,
	// mutations are admin-only.
	foodHandler := handler.NewFoodHandler(st)
	r.Route("/foods", func(r chi.Router) {
		foodHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			foodHandler.RegisterAdminRoutes(r)
		})
	})

	sectionHandler := handler.NewSectionHandler(st)
	r.Route("/sections", func(r chi.Router) {
		sectionHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			sectionHandler.RegisterAdminRoutes(r)
		})
	})

	// Orders: intake is public for the customer ordering screen,
	// reads and transitions are staff-only.
	orderHandler := handler.NewOrderHandler(orderService, st)
	revenueHandler := handler.NewRevenueHandler(revenueService)
	r.Route("/orders", func(r chi.Router) {
		orderHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			revenueHandler.RegisterRoutes(r)
			orderHandler.RegisterStaffRoutes(r)
		})
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		expenseHandler := handler.NewExpenseHandler(st)
		r.Route("/expenses", expenseHandler.RegisterRoutes)

		printHandler := handler.NewPrintHandler(st, dispatcher)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			printHandler.RegisterRoutes(r)
		})
	})

	return r
}
