package rfm

import (
	"math"
	"sort"

	"github.com/retailiq/insights/internal/domain"
)

// SummarizeSegments aggregates a profile set into one row per segment
// present in the input. Rows are ordered by total revenue descending, with
// the segment name as tie-break so equal ledgers summarize identically.
// Revenue percentages sum to 100 subject to per-row rounding.
func SummarizeSegments(profiles []domain.CustomerProfile) []domain.SegmentSummary {
	if len(profiles) == 0 {
		return nil
	}

	type agg struct {
		count     int
		revenue   float64
		frequency int
		recency   int
		clv       float64
	}
	bySegment := make(map[domain.Segment]*agg)
	var totalRevenue float64

	for i := range profiles {
		p := &profiles[i]
		a, ok := bySegment[p.Segment]
		if !ok {
			a = &agg{}
			bySegment[p.Segment] = a
		}
		a.count++
		a.revenue += p.Monetary
		a.frequency += p.Frequency
		a.recency += p.Recency
		a.clv += p.CLV
		totalRevenue += p.Monetary
	}

	summaries := make([]domain.SegmentSummary, 0, len(bySegment))
	for segment, a := range bySegment {
		s := domain.SegmentSummary{
			Segment:       segment,
			CustomerCount: a.count,
			TotalRevenue:  a.revenue,
			AvgFrequency:  float64(a.frequency) / float64(a.count),
			AvgRecency:    float64(a.recency) / float64(a.count),
			TotalCLV:      a.clv,
		}
		if totalRevenue > 0 {
			s.RevenuePct = round2(a.revenue / totalRevenue * 100)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalRevenue != summaries[j].TotalRevenue {
			return summaries[i].TotalRevenue > summaries[j].TotalRevenue
		}
		return summaries[i].Segment < summaries[j].Segment
	})
	return summaries
}

// TopCustomers selects the top percentile of customers by monetary value.
// The sort is stable, so cutoff ties keep the input profile order. A
// percentile low enough to select nobody yields an empty set with zero
// contribution, as does an empty profile set.
func TopCustomers(profiles []domain.CustomerProfile, percentile float64) domain.TopCustomerSet {
	if percentile <= 0 || percentile > 100 {
		percentile = DefaultTopPercentile
	}
	set := domain.TopCustomerSet{Percentile: percentile}
	if len(profiles) == 0 {
		return set
	}

	ranked := make([]domain.CustomerProfile, len(profiles))
	copy(ranked, profiles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Monetary > ranked[j].Monetary
	})

	n := int(float64(len(ranked)) * percentile / 100)
	set.Customers = ranked[:n]

	var totalRevenue float64
	for i := range profiles {
		totalRevenue += profiles[i].Monetary
	}
	for i := range set.Customers {
		set.Revenue += set.Customers[i].Monetary
	}
	if totalRevenue > 0 {
		set.ContributionPct = set.Revenue / totalRevenue * 100
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
