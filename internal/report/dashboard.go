package report

import (
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/retailiq/insights/internal/currency"
	"github.com/retailiq/insights/internal/domain"
	"github.com/retailiq/insights/internal/repository"
)

const dashboardTopLimit = 10

const dashboardTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Retail Customer Intelligence Dashboard</title>
<style>
  body { font-family: 'Segoe UI', Arial, sans-serif; margin: 0; background: #f4f6fb; color: #2d3748; }
  .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #fff; padding: 30px 40px; }
  .header h1 { margin: 0; font-size: 28px; }
  .header p { margin: 6px 0 0; opacity: 0.85; }
  .cards { display: flex; gap: 20px; padding: 30px 40px; flex-wrap: wrap; }
  .card { flex: 1; min-width: 200px; border-radius: 10px; padding: 24px; color: #fff; }
  .card h3 { margin: 0; font-size: 14px; font-weight: 500; opacity: 0.9; text-transform: uppercase; }
  .card .value { font-size: 30px; font-weight: 700; margin-top: 8px; }
  .card.revenue { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }
  .card.customers { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); }
  .card.aov { background: linear-gradient(135deg, #4facfe 0%, #00f2fe 100%); }
  .card.txns { background: linear-gradient(135deg, #43e97b 0%, #38f9d7 100%); }
  .section { margin: 0 40px 30px; background: #fff; border-radius: 10px; padding: 24px; box-shadow: 0 1px 4px rgba(0,0,0,0.08); }
  .section h2 { margin-top: 0; font-size: 18px; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; padding: 10px; background: #edf2f7; font-size: 13px; text-transform: uppercase; }
  td { padding: 10px; border-bottom: 1px solid #edf2f7; }
  .footer { padding: 20px 40px; color: #718096; font-size: 13px; }
</style>
</head>
<body>
<div class="header">
  <h1>Retail Customer Intelligence</h1>
  <p>RFM segmentation dashboard</p>
</div>

<div class="cards">
  <div class="card revenue"><h3>Total Revenue</h3><div class="value">{{.TotalRevenue}}</div></div>
  <div class="card customers"><h3>Customers</h3><div class="value">{{.TotalCustomers}}</div></div>
  <div class="card aov"><h3>Avg Order Value</h3><div class="value">{{.AvgOrderValue}}</div></div>
  <div class="card txns"><h3>Transactions</h3><div class="value">{{.TotalTransactions}}</div></div>
</div>

<div class="section">
  <h2>Customer Segments</h2>
  <table>
    <tr><th>Segment</th><th>Customers</th><th>Revenue</th><th>Revenue %</th><th>Avg Frequency</th><th>Avg Recency</th></tr>
    {{range .Segments}}
    <tr>
      <td>{{.Name}}</td><td>{{.Customers}}</td><td>{{.Revenue}}</td>
      <td>{{.RevenuePct}}</td><td>{{.AvgFrequency}}</td><td>{{.AvgRecency}}</td>
    </tr>
    {{end}}
  </table>
</div>

<div class="section">
  <h2>Top Customers ({{.TopTitle}})</h2>
  <table>
    <tr><th>#</th><th>Customer</th><th>Total Spent</th><th>Purchases</th><th>Segment</th></tr>
    {{range .TopCustomers}}
    <tr>
      <td>{{.Rank}}</td><td>{{.CustomerID}}</td><td>{{.Spent}}</td>
      <td>{{.Purchases}}</td><td>{{.Segment}}</td>
    </tr>
    {{end}}
  </table>
</div>

<div class="footer">Generated {{.GeneratedAt}}</div>
</body>
</html>
`

type dashboardSegmentRow struct {
	Name         string
	Customers    int
	Revenue      string
	RevenuePct   string
	AvgFrequency string
	AvgRecency   string
}

type dashboardCustomerRow struct {
	Rank       int
	CustomerID string
	Spent      string
	Purchases  int
	Segment    string
}

type dashboardData struct {
	TotalRevenue      string
	TotalCustomers    int
	AvgOrderValue     string
	TotalTransactions int
	Segments          []dashboardSegmentRow
	TopTitle          string
	TopCustomers      []dashboardCustomerRow
	GeneratedAt       string
}

var dashboardPage = template.Must(template.New("dashboard").Parse(dashboardTmpl))

// WriteDashboard renders the static KPI dashboard to path.
func WriteDashboard(path string, stats *repository.OverallStats, summary []domain.SegmentSummary, top domain.TopCustomerSet) error {
	data := dashboardData{
		TotalRevenue:      currency.FormatINR(stats.TotalRevenue),
		TotalCustomers:    stats.TotalCustomers,
		AvgOrderValue:     currency.FormatINR(stats.AvgTransactionValue),
		TotalTransactions: stats.TotalTransactions,
		TopTitle: fmt.Sprintf("top %.0f%%, %.1f%% of revenue",
			top.Percentile, top.ContributionPct),
		GeneratedAt: time.Now().Format("January 2, 2006 15:04"),
	}

	for _, s := range summary {
		data.Segments = append(data.Segments, dashboardSegmentRow{
			Name:         string(s.Segment),
			Customers:    s.CustomerCount,
			Revenue:      currency.FormatINR(s.TotalRevenue),
			RevenuePct:   fmt.Sprintf("%.1f%%", s.RevenuePct),
			AvgFrequency: fmt.Sprintf("%.1f", s.AvgFrequency),
			AvgRecency:   fmt.Sprintf("%.0f days", s.AvgRecency),
		})
	}

	customers := top.Customers
	if len(customers) > dashboardTopLimit {
		customers = customers[:dashboardTopLimit]
	}
	for i, p := range customers {
		data.TopCustomers = append(data.TopCustomers, dashboardCustomerRow{
			Rank:       i + 1,
			CustomerID: p.CustomerID,
			Spent:      currency.FormatINR(p.Monetary),
			Purchases:  p.Frequency,
			Segment:    string(p.Segment),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}
	if err := dashboardPage.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render dashboard: %w", err)
	}
	return f.Close()
}
