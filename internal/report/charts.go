package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/retailiq/insights/internal/domain"
)

const histogramBins = 20

// RenderCharts writes the four analysis charts as standalone HTML pages
// under dir.
func RenderCharts(dir string, profiles []domain.CustomerProfile, summary []domain.SegmentSummary, top domain.TopCustomerSet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	renders := []struct {
		file  string
		chart interface{ Render(w io.Writer) error }
	}{
		{"segment_distribution.html", segmentDistributionPie(summary)},
		{"revenue_by_segment.html", revenueBySegmentBar(summary)},
		{"rfm_distribution.html", rfmDistributionBar(profiles)},
		{"top_customers.html", topCustomersBar(top, 10)},
	}

	for _, r := range renders {
		path := filepath.Join(dir, r.file)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", r.file, err)
		}
		if err := r.chart.Render(f); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", r.file, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", r.file, err)
		}
	}
	return nil
}

func segmentDistributionPie(summary []domain.SegmentSummary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Customer Distribution by Segment"}),
	)

	data := make([]opts.PieData, 0, len(summary))
	for _, s := range summary {
		data = append(data, opts.PieData{Name: string(s.Segment), Value: s.CustomerCount})
	}
	pie.AddSeries("customers", data)
	return pie
}

func revenueBySegmentBar(summary []domain.SegmentSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue by Customer Segment"}),
	)

	names := make([]string, 0, len(summary))
	data := make([]opts.BarData, 0, len(summary))
	for _, s := range summary {
		names = append(names, string(s.Segment))
		data = append(data, opts.BarData{Value: s.TotalRevenue})
	}
	bar.SetXAxis(names).AddSeries("revenue", data)
	return bar
}

// rfmDistributionBar charts histograms of the three raw metrics side by
// side as separate series over their own bucket labels.
func rfmDistributionBar(profiles []domain.CustomerProfile) *charts.Bar {
	recency := make([]float64, len(profiles))
	frequency := make([]float64, len(profiles))
	monetary := make([]float64, len(profiles))
	for i, p := range profiles {
		recency[i] = float64(p.Recency)
		frequency[i] = float64(p.Frequency)
		monetary[i] = p.Monetary
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "RFM Metric Distributions", Subtitle: fmt.Sprintf("%d-bucket histograms", histogramBins)}),
	)

	labels := make([]string, histogramBins)
	for i := range labels {
		labels[i] = fmt.Sprintf("b%d", i+1)
	}
	bar.SetXAxis(labels).
		AddSeries("recency (days)", histogram(recency)).
		AddSeries("frequency", histogram(frequency)).
		AddSeries("monetary", histogram(monetary))
	return bar
}

func topCustomersBar(top domain.TopCustomerSet, n int) *charts.Bar {
	customers := top.Customers
	if len(customers) > n {
		customers = customers[:n]
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Top %d Customers by Revenue", len(customers))}),
	)

	names := make([]string, 0, len(customers))
	data := make([]opts.BarData, 0, len(customers))
	for i, p := range customers {
		names = append(names, fmt.Sprintf("#%d", i+1))
		data = append(data, opts.BarData{Value: p.Monetary})
	}
	bar.SetXAxis(names).AddSeries("total spent", data)
	return bar
}

// histogram buckets values into histogramBins equal-width counts.
func histogram(values []float64) []opts.BarData {
	counts := make([]int, histogramBins)
	if len(values) > 0 {
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		width := (hi - lo) / float64(histogramBins)
		for _, v := range values {
			idx := 0
			if width > 0 {
				idx = int((v - lo) / width)
				if idx >= histogramBins {
					idx = histogramBins - 1
				}
			}
			counts[idx]++
		}
	}

	data := make([]opts.BarData, histogramBins)
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	return data
}
