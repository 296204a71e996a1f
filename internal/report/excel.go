package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/retailiq/insights/internal/domain"
)

const (
	headerFill     = "4472C4"
	currencyFormat = `"₹"#,##0.00`
	topReportLimit = 50
)

// WriteCustomerProfiles writes the full per-customer RFM workbook, highest
// spenders first.
func WriteCustomerProfiles(path string, profiles []domain.CustomerProfile) error {
	sorted := make([]domain.CustomerProfile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Monetary > sorted[j].Monetary })

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Customer RFM Data"
	f.SetSheetName("Sheet1", sheet)

	if err := writeTitle(f, sheet, "Customer RFM Analysis Report", "J"); err != nil {
		return err
	}

	headers := []string{"Customer ID", "Recency", "Frequency", "Monetary",
		"R Score", "F Score", "M Score", "RFM Score", "Segment", "CLV"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for i, p := range sorted {
		row := i + 4
		values := []any{p.CustomerID, p.Recency, p.Frequency, p.Monetary,
			p.RScore, p.FScore, p.MScore, p.RFMScore, string(p.Segment), p.CLV}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
	}
	if err := applyCurrencyFormat(f, sheet, 4, len(sorted)+3, "D", "J"); err != nil {
		return err
	}

	widths := map[string]float64{"A": 15, "B": 10, "C": 10, "D": 15, "I": 20, "J": 15}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// WriteSegmentSummary writes the one-row-per-segment workbook.
func WriteSegmentSummary(path string, summary []domain.SegmentSummary) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Segment Summary"
	f.SetSheetName("Sheet1", sheet)

	if err := writeTitle(f, sheet, "Customer Segment Analysis", "G"); err != nil {
		return err
	}

	headers := []string{"Segment", "Customers", "Total Revenue", "Revenue %",
		"Avg Frequency", "Avg Recency", "Total CLV"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for i, s := range summary {
		row := i + 4
		values := []any{string(s.Segment), s.CustomerCount, s.TotalRevenue,
			s.RevenuePct, s.AvgFrequency, s.AvgRecency, s.TotalCLV}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
	}
	if err := applyCurrencyFormat(f, sheet, 4, len(summary)+3, "C", "G"); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "G", 18); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// WriteTopCustomers writes the top-customer workbook, capped at 50 rows.
func WriteTopCustomers(path string, top domain.TopCustomerSet) error {
	customers := top.Customers
	if len(customers) > topReportLimit {
		customers = customers[:topReportLimit]
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Top Customers"
	f.SetSheetName("Sheet1", sheet)

	title := fmt.Sprintf("Top %.0f%% Customers by Revenue (%.1f%% contribution)",
		top.Percentile, top.ContributionPct)
	if err := writeTitle(f, sheet, title, "F"); err != nil {
		return err
	}

	headers := []string{"Customer ID", "Monetary", "Frequency", "Recency", "Segment", "CLV"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for i, p := range customers {
		row := i + 4
		values := []any{p.CustomerID, p.Monetary, p.Frequency, p.Recency, string(p.Segment), p.CLV}
		if err := writeRow(f, sheet, row, values); err != nil {
			return err
		}
	}
	if err := applyCurrencyFormat(f, sheet, 4, len(customers)+3, "B", "F"); err != nil {
		return err
	}

	widths := map[string]float64{"A": 15, "B": 15, "E": 20, "F": 15}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// --- helpers ---

func writeTitle(f *excelize.File, sheet, title, lastCol string) error {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", "A1", style)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 3)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A3", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// applyCurrencyFormat formats the monetary columns of a data block.
func applyCurrencyFormat(f *excelize.File, sheet string, firstRow, lastRow int, cols ...string) error {
	if lastRow < firstRow {
		return nil
	}
	numFmt := currencyFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	for _, col := range cols {
		from := fmt.Sprintf("%s%d", col, firstRow)
		to := fmt.Sprintf("%s%d", col, lastRow)
		if err := f.SetCellStyle(sheet, from, to, style); err != nil {
			return err
		}
	}
	return nil
}
