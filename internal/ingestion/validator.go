package ingestion

import (
	"fmt"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

// QualityReport summarises data-quality checks over a parsed ledger. The
// analysis core assumes validated input, so all shape checks happen here.
type QualityReport struct {
	TotalRows    int      `json:"total_rows"`
	DuplicateIDs int      `json:"duplicate_ids"`
	BlankFields  int      `json:"blank_fields"`
	Negative     int      `json:"negative_amounts"`
	ZeroAmounts  int      `json:"zero_amounts"`
	FutureDates  int      `json:"future_dates"`
	BadQuantity  int      `json:"bad_quantities"`
	Issues       []string `json:"issues"`
}

// Clean reports whether the ledger passed every check.
func (r *QualityReport) Clean() bool {
	return len(r.Issues) == 0
}

// Validate runs all data-quality checks against a parsed ledger. It never
// rejects rows itself; callers decide whether issues block the import.
func Validate(txns []domain.Transaction, now time.Time) *QualityReport {
	report := &QualityReport{TotalRows: len(txns)}

	seen := make(map[string]struct{}, len(txns))
	for i := range txns {
		txn := &txns[i]

		if _, dup := seen[txn.ID]; dup {
			report.DuplicateIDs++
		}
		seen[txn.ID] = struct{}{}

		if txn.ID == "" || txn.CustomerID == "" || txn.Category == "" || txn.Date.IsZero() {
			report.BlankFields++
		}
		if txn.Amount < 0 {
			report.Negative++
		}
		if txn.Amount == 0 {
			report.ZeroAmounts++
		}
		if txn.Date.After(now) {
			report.FutureDates++
		}
		if txn.Quantity < 1 {
			report.BadQuantity++
		}
	}

	add := func(n int, format string) {
		if n > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf(format, n))
		}
	}
	add(report.DuplicateIDs, "%d duplicate transaction IDs")
	add(report.BlankFields, "%d rows with blank required fields")
	add(report.Negative, "%d negative amounts")
	add(report.ZeroAmounts, "%d zero amounts")
	add(report.FutureDates, "%d future dates")
	add(report.BadQuantity, "%d quantities below 1")

	return report
}
