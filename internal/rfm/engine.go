// Package rfm scores customers on Recency, Frequency and Monetary value and
// assigns each one a behavioral segment.
package rfm

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

const (
	// DefaultScoreBins is the number of equal-width bins per metric.
	DefaultScoreBins = 5

	// DefaultCLVMultiplier estimates future purchases as a fraction of the
	// observed purchase count. Conservative on purpose.
	DefaultCLVMultiplier = 0.5

	// DefaultTopPercentile selects the top 20% of customers by revenue.
	DefaultTopPercentile = 20.0
)

// Score thresholds used by the segmentation rules.
const (
	scoreHigh = 4
	scoreMid  = 3
	scoreLow  = 2
)

// Options control an analysis run. The zero value selects the analysis
// time "now" and the default bin count and CLV multiplier, so results are
// reproducible only when AnalysisTime is set explicitly.
type Options struct {
	AnalysisTime  time.Time
	ScoreBins     int
	CLVMultiplier float64
}

func (o Options) withDefaults() Options {
	if o.AnalysisTime.IsZero() {
		o.AnalysisTime = time.Now()
	}
	if o.ScoreBins <= 0 {
		o.ScoreBins = DefaultScoreBins
	}
	if o.CLVMultiplier == 0 {
		o.CLVMultiplier = DefaultCLVMultiplier
	}
	return o
}

// ComputeProfiles derives one CustomerProfile per distinct customer in the
// ledger: recency in whole days relative to the analysis instant, purchase
// count, amount sum, per-metric scores, segment and estimated CLV. The
// ledger may arrive in any order; output is sorted by customer ID so that
// identical input yields identical output. An empty ledger yields an empty
// profile set.
func ComputeProfiles(ledger []domain.Transaction, opts Options) []domain.CustomerProfile {
	opts = opts.withDefaults()
	if len(ledger) == 0 {
		return nil
	}

	type metrics struct {
		lastPurchase time.Time
		count        int
		total        float64
	}
	byCustomer := make(map[string]*metrics)
	for i := range ledger {
		txn := &ledger[i]
		m, ok := byCustomer[txn.CustomerID]
		if !ok {
			m = &metrics{}
			byCustomer[txn.CustomerID] = m
		}
		if txn.Date.After(m.lastPurchase) {
			m.lastPurchase = txn.Date
		}
		m.count++
		m.total += txn.Amount
	}

	ids := make([]string, 0, len(byCustomer))
	for id := range byCustomer {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	profiles := make([]domain.CustomerProfile, len(ids))
	recency := make([]float64, len(ids))
	frequency := make([]float64, len(ids))
	monetary := make([]float64, len(ids))
	for i, id := range ids {
		m := byCustomer[id]
		profiles[i] = domain.CustomerProfile{
			CustomerID: id,
			Recency:    daysBetween(m.lastPurchase, opts.AnalysisTime),
			Frequency:  m.count,
			Monetary:   m.total,
		}
		recency[i] = float64(profiles[i].Recency)
		frequency[i] = float64(m.count)
		monetary[i] = m.total
	}

	// Lower recency means a more recent purchase, so its scores descend.
	rScores := assignScores(recency, opts.ScoreBins, false)
	fScores := assignScores(frequency, opts.ScoreBins, true)
	mScores := assignScores(monetary, opts.ScoreBins, true)

	for i := range profiles {
		p := &profiles[i]
		p.RScore = rScores[i]
		p.FScore = fScores[i]
		p.MScore = mScores[i]
		p.RFMScore = fmt.Sprintf("%d%d%d", p.RScore, p.FScore, p.MScore)
		p.Segment = Classify(p.RScore, p.FScore, p.MScore)

		// Frequency is at least 1 by construction.
		avgPurchase := p.Monetary / float64(p.Frequency)
		estimatedFuture := float64(p.Frequency) * opts.CLVMultiplier
		p.CLV = avgPurchase * estimatedFuture
	}

	return profiles
}

// assignScores partitions values into equal-width bins over [min, max] and
// maps each value's bin to a 1..bins score. Equal-width (rather than
// equal-population) binning is a known limitation: wide outliers skew the
// boundaries and can leave the extreme bins nearly empty. A value exactly
// on an interior bin edge belongs to the lower bin; the minimum belongs to
// the first bin. When every value is identical the range is zero-width and
// all values receive the midpoint score.
func assignScores(values []float64, bins int, higherIsBetter bool) []int {
	scores := make([]int, len(values))
	if len(values) == 0 {
		return scores
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		mid := (bins + 1) / 2
		for i := range scores {
			scores[i] = mid
		}
		return scores
	}

	width := (hi - lo) / float64(bins)
	for i, v := range values {
		bin := int(math.Ceil((v - lo) / width))
		if bin < 1 {
			bin = 1
		}
		if bin > bins {
			bin = bins
		}
		if higherIsBetter {
			scores[i] = bin
		} else {
			scores[i] = bins + 1 - bin
		}
	}
	return scores
}

// daysBetween returns the whole calendar days from one date to another,
// floored. Time-of-day is ignored on both sides.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

type segmentRule struct {
	segment domain.Segment
	matches func(r, f, m int) bool
}

// segmentRules is evaluated top to bottom; the first match wins, so rules
// are mutually exclusive by order. Others is the legitimate catch-all.
var segmentRules = []segmentRule{
	{domain.SegmentChampions, func(r, f, m int) bool {
		return r >= scoreHigh && f >= scoreHigh && m >= scoreHigh
	}},
	{domain.SegmentLoyalCustomers, func(r, f, m int) bool {
		return r >= scoreMid && f >= scoreMid
	}},
	{domain.SegmentPotentialLoyalists, func(r, f, m int) bool {
		return r >= scoreHigh && f <= scoreLow
	}},
	{domain.SegmentAtRisk, func(r, f, m int) bool {
		return r <= scoreLow && f >= scoreMid
	}},
	{domain.SegmentLost, func(r, f, m int) bool {
		return r <= scoreLow && f <= scoreLow
	}},
}

// Classify maps a score triple to a segment via the ordered rule table.
func Classify(r, f, m int) domain.Segment {
	for _, rule := range segmentRules {
		if rule.matches(r, f, m) {
			return rule.segment
		}
	}
	return domain.SegmentOthers
}
