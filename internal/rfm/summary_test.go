package rfm

import (
	"math"
	"testing"

	"github.com/retailiq/insights/internal/domain"
)

func profile(id string, segment domain.Segment, monetary float64, frequency, recency int) domain.CustomerProfile {
	return domain.CustomerProfile{
		CustomerID: id,
		Segment:    segment,
		Monetary:   monetary,
		Frequency:  frequency,
		Recency:    recency,
		CLV:        monetary / 2,
	}
}

func TestSummarizeSegments_Empty(t *testing.T) {
	if got := SummarizeSegments(nil); len(got) != 0 {
		t.Fatalf("got %d rows, want 0", len(got))
	}
}

func TestSummarizeSegments_EverySegmentOnce(t *testing.T) {
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentChampions, 1000, 10, 5),
		profile("B", domain.SegmentChampions, 3000, 8, 2),
		profile("C", domain.SegmentLost, 100, 1, 300),
		profile("D", domain.SegmentOthers, 400, 2, 60),
	}

	summary := SummarizeSegments(profiles)
	if len(summary) != 3 {
		t.Fatalf("got %d rows, want 3", len(summary))
	}

	seen := map[domain.Segment]domain.SegmentSummary{}
	for _, s := range summary {
		if _, dup := seen[s.Segment]; dup {
			t.Fatalf("segment %s appears twice", s.Segment)
		}
		seen[s.Segment] = s
	}

	champs := seen[domain.SegmentChampions]
	if champs.CustomerCount != 2 {
		t.Errorf("Champions count: got %d, want 2", champs.CustomerCount)
	}
	if champs.TotalRevenue != 4000 {
		t.Errorf("Champions revenue: got %v, want 4000", champs.TotalRevenue)
	}
	if champs.AvgFrequency != 9 {
		t.Errorf("Champions avg frequency: got %v, want 9", champs.AvgFrequency)
	}
	if champs.AvgRecency != 3.5 {
		t.Errorf("Champions avg recency: got %v, want 3.5", champs.AvgRecency)
	}
	if champs.TotalCLV != 2000 {
		t.Errorf("Champions total CLV: got %v, want 2000", champs.TotalCLV)
	}
}

func TestSummarizeSegments_RevenuePctSumsTo100(t *testing.T) {
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentChampions, 333.33, 3, 5),
		profile("B", domain.SegmentLost, 123.45, 1, 400),
		profile("C", domain.SegmentAtRisk, 777.77, 4, 200),
		profile("D", domain.SegmentOthers, 1.02, 2, 60),
	}

	var sum float64
	for _, s := range SummarizeSegments(profiles) {
		sum += s.RevenuePct
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("revenue pct sum: got %v, want 100 within 0.1", sum)
	}
}

func TestSummarizeSegments_OrderedByRevenue(t *testing.T) {
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentLost, 50, 1, 300),
		profile("B", domain.SegmentChampions, 9000, 9, 3),
		profile("C", domain.SegmentAtRisk, 700, 4, 200),
	}
	summary := SummarizeSegments(profiles)
	for i := 1; i < len(summary); i++ {
		if summary[i].TotalRevenue > summary[i-1].TotalRevenue {
			t.Fatalf("row %d out of order: %v after %v", i, summary[i].TotalRevenue, summary[i-1].TotalRevenue)
		}
	}
	if summary[0].Segment != domain.SegmentChampions {
		t.Fatalf("top row: got %s, want Champions", summary[0].Segment)
	}
}

func TestTopCustomers_FullPercentile(t *testing.T) {
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentChampions, 100, 1, 1),
		profile("B", domain.SegmentLost, 300, 1, 1),
		profile("C", domain.SegmentOthers, 200, 1, 1),
	}

	set := TopCustomers(profiles, 100)
	if len(set.Customers) != 3 {
		t.Fatalf("got %d customers, want 3", len(set.Customers))
	}
	if set.ContributionPct != 100 {
		t.Fatalf("contribution: got %v, want 100", set.ContributionPct)
	}
	// Descending by monetary.
	if set.Customers[0].CustomerID != "B" || set.Customers[2].CustomerID != "A" {
		t.Fatalf("unexpected order: %s, %s, %s",
			set.Customers[0].CustomerID, set.Customers[1].CustomerID, set.Customers[2].CustomerID)
	}
}

func TestTopCustomers_FloorSelection(t *testing.T) {
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentChampions, 500, 1, 1),
		profile("B", domain.SegmentOthers, 400, 1, 1),
		profile("C", domain.SegmentOthers, 300, 1, 1),
		profile("D", domain.SegmentOthers, 200, 1, 1),
		profile("E", domain.SegmentLost, 100, 1, 1),
	}

	// floor(5 * 30/100) = 1
	set := TopCustomers(profiles, 30)
	if len(set.Customers) != 1 {
		t.Fatalf("got %d customers, want 1", len(set.Customers))
	}
	if set.Customers[0].CustomerID != "A" {
		t.Fatalf("got %s, want A", set.Customers[0].CustomerID)
	}
	want := 500.0 / 1500.0 * 100
	if math.Abs(set.ContributionPct-want) > 1e-9 {
		t.Fatalf("contribution: got %v, want %v", set.ContributionPct, want)
	}
}

func TestTopCustomers_BelowOneCustomer(t *testing.T) {
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentOthers, 500, 1, 1),
		profile("B", domain.SegmentOthers, 400, 1, 1),
	}

	// floor(2 * 10/100) = 0: empty selection, not an error.
	set := TopCustomers(profiles, 10)
	if len(set.Customers) != 0 {
		t.Fatalf("got %d customers, want 0", len(set.Customers))
	}
	if set.ContributionPct != 0 {
		t.Fatalf("contribution: got %v, want 0", set.ContributionPct)
	}
}

func TestTopCustomers_EmptyProfiles(t *testing.T) {
	set := TopCustomers(nil, 20)
	if len(set.Customers) != 0 || set.ContributionPct != 0 || set.Revenue != 0 {
		t.Fatalf("empty input: got %+v, want zero set", set)
	}
}

func TestTopCustomers_StableTies(t *testing.T) {
	// B and C tie on monetary; the stable sort keeps their input order.
	profiles := []domain.CustomerProfile{
		profile("A", domain.SegmentOthers, 900, 1, 1),
		profile("B", domain.SegmentOthers, 400, 1, 1),
		profile("C", domain.SegmentOthers, 400, 1, 1),
		profile("D", domain.SegmentOthers, 100, 1, 1),
	}
	set := TopCustomers(profiles, 50)
	if len(set.Customers) != 2 {
		t.Fatalf("got %d customers, want 2", len(set.Customers))
	}
	if set.Customers[1].CustomerID != "B" {
		t.Fatalf("tie broken out of order: got %s, want B", set.Customers[1].CustomerID)
	}
}
