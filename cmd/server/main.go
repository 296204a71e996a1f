package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/retailiq/insights/internal/api"
	"github.com/retailiq/insights/internal/ingestion"
	"github.com/retailiq/insights/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "insights.db"
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	txnRepo := repository.NewTransactionRepo(db)
	ingestionSvc := ingestion.NewService(txnRepo)

	// Seed the ledger if the DB is empty.
	count, err := txnRepo.Count()
	if err != nil {
		log.Fatalf("Failed to count transactions: %v", err)
	}
	if count == 0 {
		log.Println("Database is empty, seeding transactions from testdata...")
		if err := seedTransactions(ingestionSvc); err != nil {
			log.Printf("WARNING: Failed to seed transactions: %v", err)
		}
	} else {
		log.Printf("Database already has %d transactions, skipping seed", count)
	}

	router := api.NewRouter(txnRepo, ingestionSvc)

	log.Printf("Retail Customer Intelligence API")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  GET    /api/v1/transactions")
	log.Printf("  POST   /api/v1/transactions/import")
	log.Printf("  GET    /api/v1/rfm/profiles")
	log.Printf("  GET    /api/v1/rfm/segments")
	log.Printf("  GET    /api/v1/rfm/top-customers")
	log.Printf("  GET    /api/v1/metrics")
	log.Printf("  GET    /api/v1/stats/categories")
	log.Printf("  GET    /api/v1/stats/monthly")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedTransactions(svc *ingestion.Service) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		"testdata/transactions.csv",
		filepath.Join(".", "testdata", "transactions.csv"),
	}

	// Also try to find relative to the executable.
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", "transactions.csv"),
			filepath.Join(dir, "..", "..", "testdata", "transactions.csv"),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded transactions from %s", path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find transactions.csv in any candidate path: %w", loadErr)
	}

	result, err := svc.ImportCSV(data)
	if err != nil {
		return fmt.Errorf("import seed file: %w", err)
	}

	log.Printf("Seeded %d transactions (%d duplicates skipped)",
		result.RecordsImported, result.DuplicatesSkipped)
	return nil
}
