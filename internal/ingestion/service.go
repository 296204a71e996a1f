package ingestion

import (
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/retailiq/insights/internal/repository"
)

// ImportResult is returned from a successful ledger import.
type ImportResult struct {
	RecordsImported   int            `json:"records_imported"`
	DuplicatesSkipped int            `json:"duplicates_skipped"`
	AlreadyIngested   bool           `json:"already_ingested"`
	Quality           *QualityReport `json:"quality"`
}

// Service imports transaction ledger files into the store.
type Service struct {
	txnRepo *repository.TransactionRepo
}

// NewService creates a new ingestion service.
func NewService(txnRepo *repository.TransactionRepo) *Service {
	return &Service{txnRepo: txnRepo}
}

// ImportCSV parses a ledger CSV, validates it and stores the rows.
// Re-importing the same file is a no-op via a content-hash check. Quality
// issues are logged and surfaced in the result but do not block the
// import; the rows that carry them are the provider's responsibility.
func (s *Service) ImportCSV(data []byte) (*ImportResult, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	exists, err := s.txnRepo.FileIngested(hash)
	if err != nil {
		return nil, fmt.Errorf("check hash: %w", err)
	}
	if exists {
		return &ImportResult{AlreadyIngested: true}, nil
	}

	txns, err := ParseTransactionsCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	quality := Validate(txns, time.Now())
	for _, issue := range quality.Issues {
		log.Printf("[ingestion] WARNING: data quality: %s", issue)
	}

	inserted, err := s.txnRepo.BulkInsert(txns)
	if err != nil {
		return nil, fmt.Errorf("insert transactions: %w", err)
	}

	if err := s.txnRepo.RecordIngestedFile(hash, len(txns)); err != nil {
		return nil, fmt.Errorf("record file: %w", err)
	}

	log.Printf("[ingestion] Imported %d transactions (%d new, %d duplicates)",
		len(txns), inserted, len(txns)-inserted)

	return &ImportResult{
		RecordsImported:   inserted,
		DuplicatesSkipped: len(txns) - inserted,
		Quality:           quality,
	}, nil
}
