package domain

type Segment string

const (
	SegmentChampions          Segment = "Champions"
	SegmentLoyalCustomers     Segment = "Loyal Customers"
	SegmentPotentialLoyalists Segment = "Potential Loyalists"
	SegmentAtRisk             Segment = "At Risk"
	SegmentLost               Segment = "Lost"
	SegmentOthers             Segment = "Others"
)

// CustomerProfile is one customer's RFM view of the ledger. Profiles are
// recomputed wholesale on every analysis run and never mutated afterwards.
type CustomerProfile struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	RScore     int     `json:"r_score"`
	FScore     int     `json:"f_score"`
	MScore     int     `json:"m_score"`
	RFMScore   string  `json:"rfm_score"`
	Segment    Segment `json:"segment"`
	CLV        float64 `json:"clv"`
}

// SegmentSummary is one aggregate row per segment present in a profile set.
type SegmentSummary struct {
	Segment       Segment `json:"segment"`
	CustomerCount int     `json:"customer_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgFrequency  float64 `json:"avg_frequency"`
	AvgRecency    float64 `json:"avg_recency"`
	TotalCLV      float64 `json:"total_clv"`
	RevenuePct    float64 `json:"revenue_pct"`
}

// TopCustomerSet holds the top-p% customers by monetary value and their
// share of total revenue.
type TopCustomerSet struct {
	Percentile      float64           `json:"percentile"`
	Customers       []CustomerProfile `json:"customers"`
	Revenue         float64           `json:"revenue"`
	ContributionPct float64           `json:"contribution_pct"`
}
