package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendwise-server/src/auth"
	"spendwise-server/src/db"
	"spendwise-server/src/handlers"
	"spendwise-server/src/middleware"
	"spendwise-server/src/util"
)

const rateWindow = 15 * time.Minute

// Limiters holds the per-IP rate limiters so callers can stop their
// cleanup goroutines on shutdown.
type Limiters struct {
	General *middleware.RateLimiter
	Login   *middleware.RateLimiter
}

func (l Limiters) Stop() {
	l.General.Stop()
	l.Login.Stop()
}

func NewLimiters() Limiters {
	return Limiters{
		General: middleware.NewRateLimiter(100, rateWindow, "Too many requests, please try again later."),
		Login:   middleware.NewRateLimiter(20, rateWindow, "Too many login attempts, please try again later."),
	}
}

func NewRouter(store db.Store, cache *db.Cache, tokens *auth.TokenManager, limiters Limiters, clientURL string, devMode bool) *chi.Mux {
	authHandler := handlers.NewAuthHandler(store, tokens, devMode)
	expenseHandler := handlers.NewExpenseHandler(store, cache, devMode)
	budgetHandler := handlers.NewBudgetHandler(store, devMode)
	exportHandler := handlers.NewExportHandler(store, devMode)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(limiters.General.Handler)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			util.Error(w, http.StatusNotFound, "Route not found")
		})

		r.Post("/auth/signup", authHandler.Signup)
		r.With(limiters.Login.Handler).Post("/auth/login", authHandler.Login)

		// Protected routes
		r.With(middleware.RequireAuth(tokens, store)).Group(func(r chi.Router) {
			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/update", authHandler.Update)

			r.Get("/expenses", expenseHandler.List)
			r.Post("/expenses", expenseHandler.Create)
			r.Get("/expenses/stats", expenseHandler.Stats)
			r.Get("/expenses/summary", expenseHandler.Summary)
			r.Get("/expenses/export", exportHandler.ExportCSV)
			r.Get("/expenses/{id}", expenseHandler.Get)
			r.Put("/expenses/{id}", expenseHandler.Update)
			r.Delete("/expenses/{id}", expenseHandler.Delete)

			r.Get("/budgets", budgetHandler.GetBudgets)
		})
	})

	return r
}
