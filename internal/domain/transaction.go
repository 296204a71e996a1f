package domain

import "time"

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryHomeKitchen Category = "Home & Kitchen"
	CategoryBooks       Category = "Books"
	CategorySports      Category = "Sports"
	CategoryBeauty      Category = "Beauty"
)

// Categories lists every product category in a fixed order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryHomeKitchen,
	CategoryBooks,
	CategorySports,
	CategoryBeauty,
}

// Transaction is a single row of the retail ledger. Transactions are
// externally supplied and never mutated after ingestion.
type Transaction struct {
	ID         string    `json:"transaction_id"`
	CustomerID string    `json:"customer_id"`
	Date       time.Time `json:"date"`
	Category   Category  `json:"category"`
	Amount     float64   `json:"amount"`
	Quantity   int       `json:"quantity"`
}
