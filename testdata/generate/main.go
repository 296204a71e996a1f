// Command generate writes the seed ledger used by the demo server.
// Run from the repository root:
//
//	go run ./testdata/generate
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/retailiq/insights/internal/datagen"
)

func main() {
	dir := findTestdataDir()
	path := filepath.Join(dir, "transactions.csv")

	ledger := datagen.Generate(datagen.Config{
		NumTransactions: 8000,
		Seed:            42,
		Now:             time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
	})

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"transaction_id", "customer_id", "date",
		"category", "amount", "quantity"}); err != nil {
		log.Fatalf("write header: %v", err)
	}
	for _, txn := range ledger {
		record := []string{
			txn.ID,
			txn.CustomerID,
			txn.Date.Format("2006-01-02"),
			string(txn.Category),
			strconv.FormatFloat(txn.Amount, 'f', 2, 64),
			strconv.Itoa(txn.Quantity),
		}
		if err := w.Write(record); err != nil {
			log.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}

	fmt.Printf("Wrote %d transactions to %s\n", len(ledger), path)
}

func findTestdataDir() string {
	for _, dir := range []string{"testdata", filepath.Join("..", "..", "testdata"), "."} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "."
}
