package api

import (
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/retailiq/insights/internal/domain"
	"github.com/retailiq/insights/internal/ingestion"
	"github.com/retailiq/insights/internal/metrics"
	"github.com/retailiq/insights/internal/repository"
	"github.com/retailiq/insights/internal/rfm"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	txnRepo      *repository.TransactionRepo
	ingestionSvc *ingestion.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ledgerProfiles loads the full ledger and scores it. Most analysis
// endpoints start here.
func (h *Handlers) ledgerProfiles() ([]domain.Transaction, []domain.CustomerProfile, error) {
	ledger, err := h.txnRepo.GetAll()
	if err != nil {
		return nil, nil, err
	}
	profiles := rfm.ComputeProfiles(ledger, rfm.Options{})
	return ledger, profiles, nil
}

// --- ImportTransactions ---

func (h *Handlers) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	// Accept multipart form.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.ingestionSvc.ImportCSV(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// --- ListTransactions ---

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TransactionFilter{
		CustomerID: q.Get("customer_id"),
		Category:   q.Get("category"),
		From:       parseTime(q.Get("from")),
		To:         parseTime(q.Get("to")),
		Page:       parseIntDefault(q.Get("page"), 1),
		Limit:      parseIntDefault(q.Get("limit"), 50),
	}

	txns, total, err := h.txnRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	})
}

// --- GetProfiles ---

func (h *Handlers) GetProfiles(w http.ResponseWriter, r *http.Request) {
	_, profiles, err := h.ledgerProfiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	segment := r.URL.Query().Get("segment")
	if segment != "" {
		filtered := profiles[:0]
		for _, p := range profiles {
			if string(p.Segment) == segment {
				filtered = append(filtered, p)
			}
		}
		profiles = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"total":    len(profiles),
	})
}

// --- GetSegments ---

func (h *Handlers) GetSegments(w http.ResponseWriter, r *http.Request) {
	_, profiles, err := h.ledgerProfiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"segments": rfm.SummarizeSegments(profiles),
	})
}

// --- GetTopCustomers ---

func (h *Handlers) GetTopCustomers(w http.ResponseWriter, r *http.Request) {
	_, profiles, err := h.ledgerProfiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	percentile := rfm.DefaultTopPercentile
	if s := r.URL.Query().Get("percentile"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 || v > 100 {
			writeError(w, http.StatusBadRequest, "percentile must be in (0,100]")
			return
		}
		percentile = v
	}

	writeJSON(w, http.StatusOK, rfm.TopCustomers(profiles, percentile))
}

// --- GetMetrics ---

func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.txnRepo.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"repeat_purchase":       metrics.RepeatPurchaseRate(ledger),
		"order_value":           metrics.AverageOrderValue(ledger),
		"churn":                 metrics.ChurnRate(ledger, time.Now(), metrics.DefaultChurnDays),
		"retention":             metrics.RetentionRate(ledger, metrics.DefaultRetentionDays),
		"monthly_trend":         metrics.MonthlyRevenueTrend(ledger),
		"revenue_concentration": metrics.RevenueConcentration(ledger),
	})
}

// --- GetCategoryStats ---

func (h *Handlers) GetCategoryStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.txnRepo.GetRevenueByCategory()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": rows})
}

// --- GetMonthlyStats ---

func (h *Handlers) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.txnRepo.GetMonthlyRevenue()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"months": rows})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.txnRepo.GetOverallStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ledger, profiles, err := h.ledgerProfiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := rfm.SummarizeSegments(profiles)
	top := rfm.TopCustomers(profiles, rfm.DefaultTopPercentile)

	dashboard := map[string]any{
		"overview": map[string]any{
			"total_transactions": stats.TotalTransactions,
			"total_customers":    stats.TotalCustomers,
			"total_revenue":      round2(stats.TotalRevenue),
			"avg_order_value":    round2(stats.AvgTransactionValue),
			"first_date":         stats.FirstDate,
			"last_date":          stats.LastDate,
		},
		"segments": summary,
		"top_customers": map[string]any{
			"percentile":       top.Percentile,
			"count":            len(top.Customers),
			"revenue":          round2(top.Revenue),
			"contribution_pct": top.ContributionPct,
		},
		"repeat_purchase": metrics.RepeatPurchaseRate(ledger),
		"churn":           metrics.ChurnRate(ledger, time.Now(), metrics.DefaultChurnDays),
	}

	writeJSON(w, http.StatusOK, dashboard)
}
