// Command insights is the interactive analysis console. Every menu action
// is a full pipeline stage: it loads the ledger from the store, computes
// what it needs and writes its output, with no state carried between
// selections.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/retailiq/insights/internal/currency"
	"github.com/retailiq/insights/internal/datagen"
	"github.com/retailiq/insights/internal/domain"
	"github.com/retailiq/insights/internal/ingestion"
	"github.com/retailiq/insights/internal/metrics"
	"github.com/retailiq/insights/internal/report"
	"github.com/retailiq/insights/internal/repository"
	"github.com/retailiq/insights/internal/rfm"
)

const reportsDir = "reports"

type console struct {
	txnRepo      *repository.TransactionRepo
	ingestionSvc *ingestion.Service
	in           *bufio.Scanner
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "insights.db"
	}

	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	txnRepo := repository.NewTransactionRepo(db)
	c := &console{
		txnRepo:      txnRepo,
		ingestionSvc: ingestion.NewService(txnRepo),
		in:           bufio.NewScanner(os.Stdin),
	}
	c.run()
}

func (c *console) run() {
	for {
		fmt.Println()
		fmt.Println("RETAIL CUSTOMER INTELLIGENCE")
		fmt.Println("  1. Generate synthetic ledger")
		fmt.Println("  2. Import ledger CSV")
		fmt.Println("  3. RFM customer profiles")
		fmt.Println("  4. Segment summary")
		fmt.Println("  5. Business metrics")
		fmt.Println("  6. Render charts")
		fmt.Println("  7. Excel reports")
		fmt.Println("  8. HTML dashboard")
		fmt.Println("  9. Executive summary & recommendations")
		fmt.Println(" 10. Full pipeline (6 + 7 + 8 + 9)")
		fmt.Println("  0. Exit")
		fmt.Print("> ")

		switch c.prompt() {
		case "1":
			c.generate()
		case "2":
			c.importCSV()
		case "3":
			c.profiles()
		case "4":
			c.segments()
		case "5":
			c.metrics()
		case "6":
			c.charts()
		case "7":
			c.excel()
		case "8":
			c.dashboard()
		case "9":
			c.summary()
		case "10":
			c.charts()
			c.excel()
			c.dashboard()
			c.summary()
		case "0", "q", "exit":
			return
		default:
			fmt.Println("Unknown option")
		}
	}
}

func (c *console) prompt() string {
	if !c.in.Scan() {
		return "0"
	}
	return strings.TrimSpace(c.in.Text())
}

// ledger loads the full transaction set, failing loudly if empty.
func (c *console) ledger() []domain.Transaction {
	txns, err := c.txnRepo.GetAll()
	if err != nil {
		fmt.Printf("Error: load ledger: %v\n", err)
		return nil
	}
	if len(txns) == 0 {
		fmt.Println("Ledger is empty. Generate or import data first (options 1 or 2).")
		return nil
	}
	return txns
}

func (c *console) generate() {
	ledger := datagen.Generate(datagen.Config{ShowProgress: true})
	inserted, err := c.txnRepo.BulkInsert(ledger)
	if err != nil {
		fmt.Printf("Error: store ledger: %v\n", err)
		return
	}
	fmt.Printf("Generated %d transactions, stored %d new rows\n", len(ledger), inserted)
}

func (c *console) importCSV() {
	fmt.Print("CSV path: ")
	path := c.prompt()
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error: read %s: %v\n", path, err)
		return
	}

	result, err := c.ingestionSvc.ImportCSV(data)
	if err != nil {
		fmt.Printf("Error: import: %v\n", err)
		return
	}
	if result.AlreadyIngested {
		fmt.Println("File already ingested, nothing to do")
		return
	}
	fmt.Printf("Imported %d rows (%d duplicates skipped)\n",
		result.RecordsImported, result.DuplicatesSkipped)
	if result.Quality != nil && !result.Quality.Clean() {
		fmt.Printf("Data quality issues: %d (see log)\n", len(result.Quality.Issues))
	}
}

func (c *console) profiles() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}
	profiles := rfm.ComputeProfiles(ledger, rfm.Options{})

	fmt.Printf("\nScored %d customers\n\n", len(profiles))
	fmt.Printf("%-12s %8s %6s %14s %5s %-20s %14s\n",
		"Customer", "Recency", "Freq", "Monetary", "RFM", "Segment", "CLV")
	limit := 15
	if len(profiles) < limit {
		limit = len(profiles)
	}
	for _, p := range profiles[:limit] {
		fmt.Printf("%-12s %8d %6d %14s %5s %-20s %14s\n",
			p.CustomerID, p.Recency, p.Frequency,
			currency.FormatINR(p.Monetary), p.RFMScore, p.Segment,
			currency.FormatINR(p.CLV))
	}
	if len(profiles) > limit {
		fmt.Printf("... and %d more\n", len(profiles)-limit)
	}
}

func (c *console) segments() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}
	summary := rfm.SummarizeSegments(rfm.ComputeProfiles(ledger, rfm.Options{}))

	fmt.Printf("\n%-20s %10s %16s %9s %9s %8s\n",
		"Segment", "Customers", "Revenue", "Rev %", "Avg Freq", "Avg Rec")
	for _, s := range summary {
		fmt.Printf("%-20s %10d %16s %8.1f%% %9.1f %8.0f\n",
			s.Segment, s.CustomerCount, currency.FormatINR(s.TotalRevenue),
			s.RevenuePct, s.AvgFrequency, s.AvgRecency)
	}
}

func (c *console) metrics() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}

	repeat := metrics.RepeatPurchaseRate(ledger)
	aov := metrics.AverageOrderValue(ledger)
	churn := metrics.ChurnRate(ledger, time.Now(), metrics.DefaultChurnDays)
	retention := metrics.RetentionRate(ledger, metrics.DefaultRetentionDays)
	gini := metrics.RevenueConcentration(ledger)

	fmt.Println()
	fmt.Printf("Repeat purchase rate:  %.1f%% (%d of %d customers)\n",
		repeat.RepeatRate, repeat.RepeatCustomers, repeat.TotalCustomers)
	fmt.Printf("Average order value:   %s\n", currency.FormatINR(aov.OverallAOV))
	fmt.Printf("Churn rate (%dd):     %.1f%% (%d customers)\n",
		metrics.DefaultChurnDays, churn.ChurnRate, churn.ChurnedCustomers)
	fmt.Printf("Retention rate (%dd):  %.1f%%\n", metrics.DefaultRetentionDays, retention.RetentionRate)
	fmt.Printf("Revenue concentration: %.3f (Gini)\n", gini)

	fmt.Println("\nCategory performance:")
	for _, cs := range metrics.CategoryPerformance(ledger) {
		fmt.Printf("  %-16s %16s (%5.1f%%)\n",
			cs.Category, currency.FormatINR(cs.TotalRevenue), cs.RevenuePct)
	}
}

func (c *console) charts() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}
	profiles := rfm.ComputeProfiles(ledger, rfm.Options{})
	summary := rfm.SummarizeSegments(profiles)
	top := rfm.TopCustomers(profiles, rfm.DefaultTopPercentile)

	dir := filepath.Join(reportsDir, "charts")
	if err := report.RenderCharts(dir, profiles, summary, top); err != nil {
		fmt.Printf("Error: render charts: %v\n", err)
		return
	}
	fmt.Printf("Charts written to %s/\n", dir)
}

func (c *console) excel() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}
	profiles := rfm.ComputeProfiles(ledger, rfm.Options{})
	summary := rfm.SummarizeSegments(profiles)
	top := rfm.TopCustomers(profiles, rfm.DefaultTopPercentile)

	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		fmt.Printf("Error: create %s: %v\n", reportsDir, err)
		return
	}

	writes := []struct {
		name string
		fn   func(string) error
	}{
		{"customer_profiles.xlsx", func(p string) error { return report.WriteCustomerProfiles(p, profiles) }},
		{"segment_summary.xlsx", func(p string) error { return report.WriteSegmentSummary(p, summary) }},
		{"top_customers.xlsx", func(p string) error { return report.WriteTopCustomers(p, top) }},
	}
	for _, w := range writes {
		path := filepath.Join(reportsDir, w.name)
		if err := w.fn(path); err != nil {
			fmt.Printf("Error: write %s: %v\n", w.name, err)
			return
		}
		fmt.Printf("Wrote %s\n", path)
	}
}

func (c *console) dashboard() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}
	stats, err := c.txnRepo.GetOverallStats()
	if err != nil {
		fmt.Printf("Error: load stats: %v\n", err)
		return
	}
	profiles := rfm.ComputeProfiles(ledger, rfm.Options{})
	summary := rfm.SummarizeSegments(profiles)
	top := rfm.TopCustomers(profiles, rfm.DefaultTopPercentile)

	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		fmt.Printf("Error: create %s: %v\n", reportsDir, err)
		return
	}
	path := filepath.Join(reportsDir, "dashboard.html")
	if err := report.WriteDashboard(path, stats, summary, top); err != nil {
		fmt.Printf("Error: write dashboard: %v\n", err)
		return
	}
	fmt.Printf("Wrote %s\n", path)
}

func (c *console) summary() {
	ledger := c.ledger()
	if ledger == nil {
		return
	}
	stats, err := c.txnRepo.GetOverallStats()
	if err != nil {
		fmt.Printf("Error: load stats: %v\n", err)
		return
	}
	profiles := rfm.ComputeProfiles(ledger, rfm.Options{})
	summary := rfm.SummarizeSegments(profiles)
	top := rfm.TopCustomers(profiles, rfm.DefaultTopPercentile)

	fmt.Println(report.ExecutiveSummary(stats, summary, top))
	fmt.Println(report.Recommendations(summary))
}
