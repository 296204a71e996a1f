// Package metrics computes customer-behavior statistics over the raw
// ledger: repeat purchase rate, order values, churn, retention and revenue
// trends. Everything here is a pure function of the ledger snapshot.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

const (
	// DefaultChurnDays marks a customer as churned after 180 quiet days.
	DefaultChurnDays = 180

	// DefaultRetentionDays counts a customer as retained when the second
	// purchase lands within 30 days of the first.
	DefaultRetentionDays = 30
)

type RepeatStats struct {
	TotalCustomers   int     `json:"total_customers"`
	RepeatCustomers  int     `json:"repeat_customers"`
	OneTimeCustomers int     `json:"one_time_customers"`
	RepeatRate       float64 `json:"repeat_rate"`
}

// RepeatPurchaseRate reports the share of customers with more than one
// transaction.
func RepeatPurchaseRate(ledger []domain.Transaction) RepeatStats {
	counts := make(map[string]int)
	for i := range ledger {
		counts[ledger[i].CustomerID]++
	}

	stats := RepeatStats{TotalCustomers: len(counts)}
	for _, n := range counts {
		if n > 1 {
			stats.RepeatCustomers++
		}
	}
	stats.OneTimeCustomers = stats.TotalCustomers - stats.RepeatCustomers
	if stats.TotalCustomers > 0 {
		stats.RepeatRate = round2(float64(stats.RepeatCustomers) / float64(stats.TotalCustomers) * 100)
	}
	return stats
}

type OrderValueStats struct {
	OverallAOV float64                     `json:"overall_aov"`
	ByCategory map[domain.Category]float64 `json:"category_aov"`
}

// AverageOrderValue computes the mean transaction amount overall and per
// category.
func AverageOrderValue(ledger []domain.Transaction) OrderValueStats {
	stats := OrderValueStats{ByCategory: make(map[domain.Category]float64)}
	if len(ledger) == 0 {
		return stats
	}

	var total float64
	catTotal := make(map[domain.Category]float64)
	catCount := make(map[domain.Category]int)
	for i := range ledger {
		txn := &ledger[i]
		total += txn.Amount
		catTotal[txn.Category] += txn.Amount
		catCount[txn.Category]++
	}

	stats.OverallAOV = round2(total / float64(len(ledger)))
	for cat, sum := range catTotal {
		stats.ByCategory[cat] = round2(sum / float64(catCount[cat]))
	}
	return stats
}

type ChurnStats struct {
	ChurnedCustomers int     `json:"churned_customers"`
	ActiveCustomers  int     `json:"active_customers"`
	ChurnRate        float64 `json:"churn_rate"`
	ThresholdDays    int     `json:"threshold_days"`
}

// ChurnRate reports customers whose last purchase is older than the
// threshold relative to the analysis instant.
func ChurnRate(ledger []domain.Transaction, analysisTime time.Time, thresholdDays int) ChurnStats {
	if thresholdDays <= 0 {
		thresholdDays = DefaultChurnDays
	}
	stats := ChurnStats{ThresholdDays: thresholdDays}

	last := make(map[string]time.Time)
	for i := range ledger {
		txn := &ledger[i]
		if txn.Date.After(last[txn.CustomerID]) {
			last[txn.CustomerID] = txn.Date
		}
	}

	cutoff := analysisTime.AddDate(0, 0, -thresholdDays)
	for _, d := range last {
		if d.Before(cutoff) {
			stats.ChurnedCustomers++
		} else {
			stats.ActiveCustomers++
		}
	}
	if total := len(last); total > 0 {
		stats.ChurnRate = round2(float64(stats.ChurnedCustomers) / float64(total) * 100)
	}
	return stats
}

type RetentionStats struct {
	RetainedCustomers int     `json:"retained_customers"`
	TotalCustomers    int     `json:"total_customers"`
	RetentionRate     float64 `json:"retention_rate"`
	PeriodDays        int     `json:"period_days"`
}

// RetentionRate reports the share of customers who came back for a second
// purchase within the period. One-time customers count as not retained.
func RetentionRate(ledger []domain.Transaction, periodDays int) RetentionStats {
	if periodDays <= 0 {
		periodDays = DefaultRetentionDays
	}

	dates := make(map[string][]time.Time)
	for i := range ledger {
		txn := &ledger[i]
		dates[txn.CustomerID] = append(dates[txn.CustomerID], txn.Date)
	}

	stats := RetentionStats{TotalCustomers: len(dates), PeriodDays: periodDays}
	for _, ds := range dates {
		if len(ds) < 2 {
			continue
		}
		sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
		gap := ds[1].Sub(ds[0]).Hours() / 24
		if gap <= float64(periodDays) {
			stats.RetainedCustomers++
		}
	}
	if stats.TotalCustomers > 0 {
		stats.RetentionRate = round2(float64(stats.RetainedCustomers) / float64(stats.TotalCustomers) * 100)
	}
	return stats
}

type MonthlyRevenue struct {
	Month             string  `json:"month"`
	Revenue           float64 `json:"revenue"`
	Transactions      int     `json:"transactions"`
	Customers         int     `json:"customers"`
	AvgPerTransaction float64 `json:"avg_per_transaction"`
	GrowthPct         float64 `json:"growth_pct"`
}

// MonthlyRevenueTrend groups the ledger by calendar month (YYYY-MM) and
// adds month-over-month growth. The first month has zero growth.
func MonthlyRevenueTrend(ledger []domain.Transaction) []MonthlyRevenue {
	type agg struct {
		revenue   float64
		count     int
		customers map[string]struct{}
	}
	byMonth := make(map[string]*agg)
	for i := range ledger {
		txn := &ledger[i]
		key := txn.Date.Format("2006-01")
		a, ok := byMonth[key]
		if !ok {
			a = &agg{customers: make(map[string]struct{})}
			byMonth[key] = a
		}
		a.revenue += txn.Amount
		a.count++
		a.customers[txn.CustomerID] = struct{}{}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyRevenue, 0, len(months))
	for i, m := range months {
		a := byMonth[m]
		row := MonthlyRevenue{
			Month:             m,
			Revenue:           a.revenue,
			Transactions:      a.count,
			Customers:         len(a.customers),
			AvgPerTransaction: round2(a.revenue / float64(a.count)),
		}
		if i > 0 && out[i-1].Revenue > 0 {
			row.GrowthPct = round2((a.revenue - out[i-1].Revenue) / out[i-1].Revenue * 100)
		}
		out = append(out, row)
	}
	return out
}

// RevenueConcentration returns a simplified Gini coefficient of per-customer
// revenue: 0 means evenly spread, values near 1 mean a few customers carry
// almost all revenue.
func RevenueConcentration(ledger []domain.Transaction) float64 {
	totals := make(map[string]float64)
	for i := range ledger {
		totals[ledger[i].CustomerID] += ledger[i].Amount
	}
	if len(totals) == 0 {
		return 0
	}

	values := make([]float64, 0, len(totals))
	var sum float64
	for _, v := range totals {
		values = append(values, v)
		sum += v
	}
	if sum == 0 {
		return 0
	}
	sort.Float64s(values)

	n := float64(len(values))
	var weighted float64
	for i, v := range values {
		weighted += float64(i+1) * v
	}
	gini := 2*weighted/(n*sum) - (n+1)/n
	return math.Round(gini*1000) / 1000
}

type CategoryStats struct {
	Category        domain.Category `json:"category"`
	Transactions    int             `json:"transactions"`
	TotalRevenue    float64         `json:"total_revenue"`
	AvgAmount       float64         `json:"avg_amount"`
	MinAmount       float64         `json:"min_amount"`
	MaxAmount       float64         `json:"max_amount"`
	TotalQuantity   int             `json:"total_quantity"`
	UniqueCustomers int             `json:"unique_customers"`
	RevenuePct      float64         `json:"revenue_pct"`
}

// CategoryPerformance aggregates the ledger per product category, ordered
// by revenue descending with the category name as tie-break.
func CategoryPerformance(ledger []domain.Transaction) []CategoryStats {
	type agg struct {
		count     int
		revenue   float64
		min, max  float64
		quantity  int
		customers map[string]struct{}
	}
	byCat := make(map[domain.Category]*agg)
	var totalRevenue float64

	for i := range ledger {
		txn := &ledger[i]
		a, ok := byCat[txn.Category]
		if !ok {
			a = &agg{min: txn.Amount, max: txn.Amount, customers: make(map[string]struct{})}
			byCat[txn.Category] = a
		}
		a.count++
		a.revenue += txn.Amount
		a.quantity += txn.Quantity
		a.customers[txn.CustomerID] = struct{}{}
		if txn.Amount < a.min {
			a.min = txn.Amount
		}
		if txn.Amount > a.max {
			a.max = txn.Amount
		}
		totalRevenue += txn.Amount
	}

	out := make([]CategoryStats, 0, len(byCat))
	for cat, a := range byCat {
		s := CategoryStats{
			Category:        cat,
			Transactions:    a.count,
			TotalRevenue:    a.revenue,
			AvgAmount:       round2(a.revenue / float64(a.count)),
			MinAmount:       a.min,
			MaxAmount:       a.max,
			TotalQuantity:   a.quantity,
			UniqueCustomers: len(a.customers),
		}
		if totalRevenue > 0 {
			s.RevenuePct = round2(a.revenue / totalRevenue * 100)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
