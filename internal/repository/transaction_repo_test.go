package repository

import (
	"testing"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

func newTestRepo(t *testing.T) *TransactionRepo {
	t.Helper()
	db, err := InitDB(":memory:")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTransactionRepo(db)
}

func seedTxns() []domain.Transaction {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Transaction{
		{ID: "TXN_000001", CustomerID: "CUST_00001", Date: base, Category: domain.CategoryBooks, Amount: 350, Quantity: 1},
		{ID: "TXN_000002", CustomerID: "CUST_00002", Date: base.AddDate(0, 0, 10), Category: domain.CategoryElectronics, Amount: 22000, Quantity: 1},
		{ID: "TXN_000003", CustomerID: "CUST_00001", Date: base.AddDate(0, 1, 0), Category: domain.CategoryBooks, Amount: 650, Quantity: 2},
	}
}

func TestBulkInsertAndGetAll(t *testing.T) {
	repo := newTestRepo(t)

	inserted, err := repo.BulkInsert(seedTxns())
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("inserted: got %d, want 3", inserted)
	}

	// Duplicate IDs are ignored, not duplicated.
	inserted, err = repo.BulkInsert(seedTxns())
	if err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("re-insert: got %d rows, want 0", inserted)
	}

	all, err := repo.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d transactions, want 3", len(all))
	}
	if all[0].ID != "TXN_000001" || all[0].Category != domain.CategoryBooks {
		t.Fatalf("unexpected first row: %+v", all[0])
	}
	if !all[0].Date.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date round trip: got %v", all[0].Date)
	}
}

func TestList_Filters(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.BulkInsert(seedTxns()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	txns, total, err := repo.List(TransactionFilter{CustomerID: "CUST_00001"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(txns) != 2 {
		t.Fatalf("customer filter: got total=%d len=%d, want 2/2", total, len(txns))
	}

	from := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	txns, total, err = repo.List(TransactionFilter{From: &from})
	if err != nil {
		t.Fatalf("list from: %v", err)
	}
	if total != 2 {
		t.Fatalf("date filter: got %d, want 2", total)
	}

	// Newest first.
	if txns[0].ID != "TXN_000003" {
		t.Fatalf("order: got %s first, want TXN_000003", txns[0].ID)
	}
}

func TestGetOverallStats(t *testing.T) {
	repo := newTestRepo(t)

	// Empty store yields zero stats, not an error.
	stats, err := repo.GetOverallStats()
	if err != nil {
		t.Fatalf("stats on empty: %v", err)
	}
	if stats.TotalTransactions != 0 || stats.TotalRevenue != 0 {
		t.Fatalf("empty stats: %+v", stats)
	}

	if _, err := repo.BulkInsert(seedTxns()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	stats, err = repo.GetOverallStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTransactions != 3 || stats.TotalCustomers != 2 {
		t.Fatalf("counts: got %d txns / %d customers, want 3/2", stats.TotalTransactions, stats.TotalCustomers)
	}
	if stats.TotalRevenue != 23000 {
		t.Fatalf("revenue: got %v, want 23000", stats.TotalRevenue)
	}
	if stats.FirstDate != "2026-05-01" || stats.LastDate != "2026-06-01" {
		t.Fatalf("date range: got %s..%s", stats.FirstDate, stats.LastDate)
	}
}

func TestGetRevenueByCategory(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.BulkInsert(seedTxns()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := repo.GetRevenueByCategory()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d categories, want 2", len(rows))
	}
	if rows[0].Category != string(domain.CategoryElectronics) {
		t.Fatalf("top category: got %s, want Electronics", rows[0].Category)
	}
	if rows[1].Revenue != 1000 || rows[1].Transactions != 2 {
		t.Fatalf("books row: %+v", rows[1])
	}
}

func TestGetMonthlyRevenue(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.BulkInsert(seedTxns()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := repo.GetMonthlyRevenue()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d months, want 2", len(rows))
	}
	if rows[0].Month != "2026-05" || rows[0].Revenue != 22350 {
		t.Fatalf("first month: %+v", rows[0])
	}
}

func TestFileIngestedRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	ok, err := repo.FileIngested("abc123")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("unknown hash reported as ingested")
	}

	if err := repo.RecordIngestedFile("abc123", 42); err != nil {
		t.Fatalf("record: %v", err)
	}
	ok, err = repo.FileIngested("abc123")
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if !ok {
		t.Fatal("recorded hash not reported as ingested")
	}
}
