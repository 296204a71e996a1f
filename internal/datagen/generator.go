// Package datagen produces a synthetic retail transaction ledger with a
// realistic mix of loyal and one-time customers.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/retailiq/insights/internal/domain"
)

const (
	// DefaultNumTransactions matches the stock demo dataset size.
	DefaultNumTransactions = 8000

	// defaultCustomerRatio: roughly 40% as many customers as transactions.
	defaultCustomerRatio = 0.4

	// defaultLoyalRatio: 15% of customers buy 5-15 times; the rest 1-3.
	defaultLoyalRatio = 0.15

	historyDays = 730
)

// amountRange holds the plausible spend band for one category.
type amountRange struct {
	lo, hi float64
}

var amountRanges = map[domain.Category]amountRange{
	domain.CategoryElectronics: {5000, 50000},
	domain.CategoryClothing:    {500, 5000},
	domain.CategoryHomeKitchen: {1000, 10000},
	domain.CategoryBooks:       {200, 2000},
	domain.CategorySports:      {1000, 15000},
	domain.CategoryBeauty:      {500, 3000},
}

// Config controls ledger generation. The zero value produces the default
// 8,000-row ledger ending at the current time with seed 0.
type Config struct {
	NumTransactions int
	CustomerRatio   float64
	LoyalRatio      float64
	Seed            int64
	Now             time.Time
	ShowProgress    bool
}

func (c Config) withDefaults() Config {
	if c.NumTransactions <= 0 {
		c.NumTransactions = DefaultNumTransactions
	}
	if c.CustomerRatio <= 0 {
		c.CustomerRatio = defaultCustomerRatio
	}
	if c.LoyalRatio <= 0 {
		c.LoyalRatio = defaultLoyalRatio
	}
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	return c
}

// Generate builds a synthetic ledger spanning the two years before cfg.Now.
// Output is deterministic for a fixed seed and Now, and never contains
// future dates.
func Generate(cfg Config) []domain.Transaction {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	start := cfg.Now.AddDate(0, 0, -historyDays)
	numCustomers := int(float64(cfg.NumTransactions) * cfg.CustomerRatio)
	if numCustomers < 1 {
		numCustomers = 1
	}

	var bar *progressbar.ProgressBar
	if cfg.ShowProgress {
		bar = progressbar.Default(int64(cfg.NumTransactions))
	}

	txns := make([]domain.Transaction, 0, cfg.NumTransactions)
	txnID := 1

	for c := 1; c <= numCustomers && txnID <= cfg.NumTransactions; c++ {
		customerID := fmt.Sprintf("CUST_%05d", c)

		numPurchases := 1 + rng.Intn(3)
		if rng.Float64() < cfg.LoyalRatio {
			numPurchases = 5 + rng.Intn(11)
		}

		current := start.AddDate(0, 0, rng.Intn(600))
		for p := 0; p < numPurchases && txnID <= cfg.NumTransactions; p++ {
			current = current.AddDate(0, 0, 7+rng.Intn(84))
			if current.After(cfg.Now) {
				current = cfg.Now.AddDate(0, 0, -(1 + rng.Intn(30)))
			}

			category := domain.Categories[rng.Intn(len(domain.Categories))]
			band := amountRanges[category]
			amount := band.lo + rng.Float64()*(band.hi-band.lo)
			amount = math.Round(amount*100) / 100

			txns = append(txns, domain.Transaction{
				ID:         fmt.Sprintf("TXN_%06d", txnID),
				CustomerID: customerID,
				Date:       current,
				Category:   category,
				Amount:     amount,
				Quantity:   1 + rng.Intn(5),
			})
			txnID++
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}

	return txns
}
