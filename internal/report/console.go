// Package report renders analysis results as console text, Excel
// workbooks, chart pages and an HTML dashboard.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/retailiq/insights/internal/currency"
	"github.com/retailiq/insights/internal/domain"
	"github.com/retailiq/insights/internal/repository"
)

const rule = "======================================================================"

// ExecutiveSummary renders the plain-text summary report.
func ExecutiveSummary(stats *repository.OverallStats, summary []domain.SegmentSummary, top domain.TopCustomerSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nRETAIL CUSTOMER INTELLIGENCE - EXECUTIVE SUMMARY\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Report Date: %s\n\n", time.Now().Format("January 2, 2006"))

	fmt.Fprintf(&b, "OVERVIEW\n\n")
	fmt.Fprintf(&b, "Total Transactions:   %d\n", stats.TotalTransactions)
	fmt.Fprintf(&b, "Unique Customers:     %d\n", stats.TotalCustomers)
	fmt.Fprintf(&b, "Total Revenue:        %s\n", currency.FormatINR(stats.TotalRevenue))
	fmt.Fprintf(&b, "Average Order Value:  %s\n", currency.FormatINR(stats.AvgTransactionValue))
	if stats.FirstDate != "" {
		fmt.Fprintf(&b, "Date Range:           %s to %s\n", stats.FirstDate, stats.LastDate)
	}

	fmt.Fprintf(&b, "\nCUSTOMER SEGMENTATION\n")
	for _, seg := range summary {
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(string(seg.Segment)))
		fmt.Fprintf(&b, "  Customers:     %d (%.1f%% of revenue)\n", seg.CustomerCount, seg.RevenuePct)
		fmt.Fprintf(&b, "  Revenue:       %s\n", currency.FormatINR(seg.TotalRevenue))
		fmt.Fprintf(&b, "  Avg Frequency: %.1f purchases\n", seg.AvgFrequency)
		fmt.Fprintf(&b, "  Avg Recency:   %.0f days\n", seg.AvgRecency)
	}

	fmt.Fprintf(&b, "\nKEY INSIGHTS\n\n")
	fmt.Fprintf(&b, "1. Top %.0f%% of customers contribute %.1f%% of total revenue\n",
		top.Percentile, top.ContributionPct)
	if len(summary) > 0 {
		fmt.Fprintf(&b, "2. %s segment generates the highest revenue (%s)\n",
			summary[0].Segment, currency.FormatINR(summary[0].TotalRevenue))
	}
	fmt.Fprintf(&b, "3. Focus retention efforts on the At Risk segment to prevent churn\n")
	fmt.Fprintf(&b, "%s\n", rule)

	return b.String()
}

// Recommendations renders the business-recommendations report. Actions are
// keyed off the segments actually present in the summary.
func Recommendations(summary []domain.SegmentSummary) string {
	bySegment := make(map[domain.Segment]domain.SegmentSummary, len(summary))
	for _, s := range summary {
		bySegment[s.Segment] = s
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nBUSINESS RECOMMENDATIONS\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nGenerated: %s\n", time.Now().Format("January 2, 2006 at 3:04 PM"))

	priority := 1
	action := func(title string, lines ...string) {
		fmt.Fprintf(&b, "\nPRIORITY %d: %s\n", priority, title)
		for _, l := range lines {
			fmt.Fprintf(&b, "  - %s\n", l)
		}
		priority++
	}

	if s, ok := bySegment[domain.SegmentChampions]; ok {
		action("RETAIN CHAMPIONS",
			fmt.Sprintf("Target: %d customers carrying %.1f%% of revenue", s.CustomerCount, s.RevenuePct),
			"Offer: exclusive discounts, early access, VIP benefits",
			"Launch a tiered rewards program")
	}
	if s, ok := bySegment[domain.SegmentAtRisk]; ok {
		action("RE-ENGAGE AT-RISK CUSTOMERS",
			fmt.Sprintf("Target: %d customers with %s at stake", s.CustomerCount, currency.FormatINR(s.TotalRevenue)),
			"Personalized email with a strong offer, before they become Lost")
	}
	if s, ok := bySegment[domain.SegmentPotentialLoyalists]; ok {
		action("NURTURE POTENTIAL LOYALISTS",
			fmt.Sprintf("Target: %d recent customers", s.CustomerCount),
			"Welcome series and product recommendations",
			"Goal: convert to Champions within 6 months")
	}
	if s, ok := bySegment[domain.SegmentLost]; ok {
		action("WIN BACK LOST CUSTOMERS",
			fmt.Sprintf("Target: %d customers (%.1f%% of revenue)", s.CustomerCount, s.RevenuePct),
			"Strong incentive required; low priority if revenue share is small")
	}
	if priority == 1 {
		fmt.Fprintf(&b, "\nNo actionable segments in this profile set.\n")
	}

	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}
