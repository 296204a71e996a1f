package ingestion

import (
	"testing"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

var checkTime = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

func validTxn(id string) domain.Transaction {
	return domain.Transaction{
		ID:         id,
		CustomerID: "CUST_00001",
		Date:       checkTime.AddDate(0, 0, -30),
		Category:   domain.CategoryBooks,
		Amount:     100,
		Quantity:   1,
	}
}

func TestValidate_CleanLedger(t *testing.T) {
	report := Validate([]domain.Transaction{validTxn("T1"), validTxn("T2")}, checkTime)
	if !report.Clean() {
		t.Fatalf("clean ledger reported issues: %v", report.Issues)
	}
	if report.TotalRows != 2 {
		t.Fatalf("total rows: got %d, want 2", report.TotalRows)
	}
}

func TestValidate_FlagsIssues(t *testing.T) {
	dup := validTxn("T1")
	negative := validTxn("T2")
	negative.Amount = -5
	zero := validTxn("T3")
	zero.Amount = 0
	future := validTxn("T4")
	future.Date = checkTime.AddDate(0, 0, 7)
	blank := validTxn("T5")
	blank.CustomerID = ""
	badQty := validTxn("T6")
	badQty.Quantity = 0

	ledger := []domain.Transaction{
		validTxn("T1"), dup, negative, zero, future, blank, badQty,
	}
	report := Validate(ledger, checkTime)

	if report.Clean() {
		t.Fatal("dirty ledger reported clean")
	}
	if report.DuplicateIDs != 1 {
		t.Errorf("duplicates: got %d, want 1", report.DuplicateIDs)
	}
	if report.Negative != 1 || report.ZeroAmounts != 1 {
		t.Errorf("amounts: got %d negative / %d zero, want 1/1", report.Negative, report.ZeroAmounts)
	}
	if report.FutureDates != 1 {
		t.Errorf("future dates: got %d, want 1", report.FutureDates)
	}
	if report.BlankFields != 1 {
		t.Errorf("blank fields: got %d, want 1", report.BlankFields)
	}
	if report.BadQuantity != 1 {
		t.Errorf("bad quantity: got %d, want 1", report.BadQuantity)
	}
	if len(report.Issues) != 6 {
		t.Errorf("issues: got %d, want 6: %v", len(report.Issues), report.Issues)
	}
}

func TestValidate_EmptyLedger(t *testing.T) {
	report := Validate(nil, checkTime)
	if !report.Clean() || report.TotalRows != 0 {
		t.Fatalf("empty ledger: %+v", report)
	}
}
