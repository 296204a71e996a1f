package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

// ParseTransactionsCSV parses the retail ledger CSV format.
//
// Expected header:
//
//	transaction_id,customer_id,date,category,amount,quantity
func ParseTransactionsCSV(data []byte) ([]domain.Transaction, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("expected 6 columns, got %d", len(header))
	}

	var txns []domain.Transaction
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) < 6 {
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d amount: %w", lineNum, err)
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			return nil, fmt.Errorf("line %d quantity: %w", lineNum, err)
		}

		dateStr := strings.TrimSpace(row[2])
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			date, err = time.Parse(time.RFC3339, dateStr)
			if err != nil {
				return nil, fmt.Errorf("line %d date: %w", lineNum, err)
			}
		}

		txns = append(txns, domain.Transaction{
			ID:         strings.TrimSpace(row[0]),
			CustomerID: strings.TrimSpace(row[1]),
			Date:       date,
			Category:   domain.Category(strings.TrimSpace(row[3])),
			Amount:     amount,
			Quantity:   quantity,
		})
	}

	return txns, nil
}
