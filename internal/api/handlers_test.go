package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retailiq/insights/internal/domain"
	"github.com/retailiq/insights/internal/ingestion"
	"github.com/retailiq/insights/internal/repository"
)

func newTestServer(t *testing.T) (*httptest.Server, *repository.TransactionRepo) {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	txnRepo := repository.NewTransactionRepo(db)
	svc := ingestion.NewService(txnRepo)

	srv := httptest.NewServer(NewRouter(txnRepo, svc))
	t.Cleanup(srv.Close)
	return srv, txnRepo
}

func seedLedger(t *testing.T, repo *repository.TransactionRepo) {
	t.Helper()
	now := time.Now().UTC()
	txns := []domain.Transaction{
		{ID: "TXN_000001", CustomerID: "CUST_00001", Date: now.AddDate(0, 0, -2),
			Category: domain.CategoryElectronics, Amount: 25000, Quantity: 1},
		{ID: "TXN_000002", CustomerID: "CUST_00001", Date: now.AddDate(0, 0, -40),
			Category: domain.CategoryBooks, Amount: 800, Quantity: 2},
		{ID: "TXN_000003", CustomerID: "CUST_00002", Date: now.AddDate(0, 0, -300),
			Category: domain.CategoryClothing, Amount: 1200, Quantity: 1},
	}
	if _, err := repo.BulkInsert(txns); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp
}

func TestListTransactions(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
		Total        int                  `json:"total"`
		Page         int                  `json:"page"`
	}
	resp := getJSON(t, srv.URL+"/api/v1/transactions", &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body.Total != 3 || len(body.Transactions) != 3 {
		t.Fatalf("total = %d, rows = %d, want 3 each", body.Total, len(body.Transactions))
	}
	if body.Page != 1 {
		t.Errorf("default page = %d, want 1", body.Page)
	}
}

func TestListTransactions_FilterByCustomer(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
		Total        int                  `json:"total"`
	}
	getJSON(t, srv.URL+"/api/v1/transactions?customer_id=CUST_00002", &body)

	if body.Total != 1 {
		t.Fatalf("total = %d, want 1", body.Total)
	}
	if body.Transactions[0].ID != "TXN_000003" {
		t.Errorf("got %s, want TXN_000003", body.Transactions[0].ID)
	}
}

func TestGetProfiles(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body struct {
		Profiles []domain.CustomerProfile `json:"profiles"`
		Total    int                      `json:"total"`
	}
	getJSON(t, srv.URL+"/api/v1/rfm/profiles", &body)

	if body.Total != 2 {
		t.Fatalf("total = %d, want 2 customers", body.Total)
	}
	if body.Profiles[0].CustomerID != "CUST_00001" {
		t.Errorf("profiles not sorted by customer ID: %s first", body.Profiles[0].CustomerID)
	}
	first := body.Profiles[0]
	if first.Frequency != 2 || first.Monetary != 25800 {
		t.Errorf("CUST_00001 frequency/monetary = %d/%v, want 2/25800", first.Frequency, first.Monetary)
	}
}

func TestGetSegments(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body struct {
		Segments []domain.SegmentSummary `json:"segments"`
	}
	getJSON(t, srv.URL+"/api/v1/rfm/segments", &body)

	if len(body.Segments) == 0 {
		t.Fatal("no segments returned")
	}
	var pct float64
	for _, s := range body.Segments {
		pct += s.RevenuePct
	}
	if pct < 99.9 || pct > 100.1 {
		t.Errorf("revenue percentages sum to %v, want ~100", pct)
	}
}

func TestGetTopCustomers(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body domain.TopCustomerSet
	getJSON(t, srv.URL+"/api/v1/rfm/top-customers?percentile=50", &body)

	if body.Percentile != 50 {
		t.Fatalf("percentile = %v, want 50", body.Percentile)
	}
	if len(body.Customers) != 1 {
		t.Fatalf("got %d customers, want 1 (50%% of 2)", len(body.Customers))
	}
	if body.Customers[0].CustomerID != "CUST_00001" {
		t.Errorf("top customer = %s, want CUST_00001", body.Customers[0].CustomerID)
	}
}

func TestGetTopCustomers_BadPercentile(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	resp, err := http.Get(srv.URL + "/api/v1/rfm/top-customers?percentile=150")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetMetrics(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body map[string]json.RawMessage
	getJSON(t, srv.URL+"/api/v1/metrics", &body)

	for _, key := range []string{"repeat_purchase", "order_value", "churn",
		"retention", "monthly_trend", "revenue_concentration"} {
		if _, ok := body[key]; !ok {
			t.Errorf("metrics response missing %q", key)
		}
	}
}

func TestGetDashboard(t *testing.T) {
	srv, repo := newTestServer(t)
	seedLedger(t, repo)

	var body struct {
		Overview struct {
			TotalTransactions int     `json:"total_transactions"`
			TotalCustomers    int     `json:"total_customers"`
			TotalRevenue      float64 `json:"total_revenue"`
		} `json:"overview"`
		Segments []domain.SegmentSummary `json:"segments"`
	}
	getJSON(t, srv.URL+"/api/v1/dashboard", &body)

	if body.Overview.TotalTransactions != 3 || body.Overview.TotalCustomers != 2 {
		t.Fatalf("overview = %+v, want 3 txns / 2 customers", body.Overview)
	}
	if body.Overview.TotalRevenue != 27000 {
		t.Errorf("revenue = %v, want 27000", body.Overview.TotalRevenue)
	}
	if len(body.Segments) == 0 {
		t.Error("dashboard has no segments")
	}
}

func TestImportTransactions(t *testing.T) {
	srv, repo := newTestServer(t)

	csvBody := "transaction_id,customer_id,date,category,amount,quantity\n" +
		"TXN_000001,CUST_00001,2026-08-01,Books,500.00,1\n" +
		"TXN_000002,CUST_00002,2026-08-02,Clothing,1500.00,2\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(csvBody)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/transactions/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result ingestion.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.RecordsImported != 2 {
		t.Errorf("imported = %d, want 2", result.RecordsImported)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("repo count = %d, want 2", count)
	}
}

func TestImportTransactions_MissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/transactions/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
