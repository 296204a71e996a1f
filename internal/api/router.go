package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/retailiq/insights/internal/ingestion"
	"github.com/retailiq/insights/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	txnRepo *repository.TransactionRepo,
	ingestionSvc *ingestion.Service,
) http.Handler {
	h := &Handlers{
		txnRepo:      txnRepo,
		ingestionSvc: ingestionSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Ledger.
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions/import", h.ImportTransactions)

		// RFM analysis.
		r.Get("/rfm/profiles", h.GetProfiles)
		r.Get("/rfm/segments", h.GetSegments)
		r.Get("/rfm/top-customers", h.GetTopCustomers)

		// Business metrics.
		r.Get("/metrics", h.GetMetrics)
		r.Get("/stats/categories", h.GetCategoryStats)
		r.Get("/stats/monthly", h.GetMonthlyStats)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
