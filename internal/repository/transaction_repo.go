package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/retailiq/insights/internal/domain"
)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

func (r *TransactionRepo) BulkInsert(txns []domain.Transaction) (int, error) {
	inserted := 0
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO transactions
		(id, customer_id, date, category, amount, quantity)
		VALUES (?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range txns {
		tx := &txns[i]
		res, err := stmt.Exec(
			tx.ID, tx.CustomerID, tx.Date.Format(time.RFC3339),
			string(tx.Category), tx.Amount, tx.Quantity,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *TransactionRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// GetAll loads the full ledger ordered by transaction ID, the snapshot the
// analysis pipeline consumes.
func (r *TransactionRepo) GetAll() ([]domain.Transaction, error) {
	rows, err := r.db.Query(
		"SELECT id, customer_id, date, category, amount, quantity FROM transactions ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

type TransactionFilter struct {
	CustomerID string
	Category   string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

func (r *TransactionRepo) List(f TransactionFilter) ([]domain.Transaction, int, error) {
	where, args := buildTransactionWhere(f)

	var total int
	countSQL := "SELECT COUNT(*) FROM transactions" + where
	if err := r.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	querySQL := "SELECT id, customer_id, date, category, amount, quantity FROM transactions" +
		where + " ORDER BY date DESC, id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// OverallStats holds aggregate ledger statistics for the dashboard header.
type OverallStats struct {
	TotalTransactions   int     `json:"total_transactions"`
	TotalCustomers      int     `json:"total_customers"`
	TotalRevenue        float64 `json:"total_revenue"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
	FirstDate           string  `json:"first_date"`
	LastDate            string  `json:"last_date"`
}

func (r *TransactionRepo) GetOverallStats() (*OverallStats, error) {
	s := &OverallStats{}
	var first, last sql.NullString
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(DISTINCT customer_id),
			COALESCE(SUM(amount), 0),
			COALESCE(AVG(amount), 0),
			MIN(date),
			MAX(date)
		FROM transactions
	`).Scan(&s.TotalTransactions, &s.TotalCustomers, &s.TotalRevenue,
		&s.AvgTransactionValue, &first, &last)
	if err != nil {
		return nil, err
	}
	if first.Valid {
		s.FirstDate = first.String[:10]
	}
	if last.Valid {
		s.LastDate = last.String[:10]
	}
	return s, nil
}

type CategoryRevenue struct {
	Category     string  `json:"category"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	AvgAmount    float64 `json:"avg_amount"`
}

func (r *TransactionRepo) GetRevenueByCategory() ([]CategoryRevenue, error) {
	rows, err := r.db.Query(`
		SELECT category, COUNT(*), COALESCE(SUM(amount), 0), ROUND(COALESCE(AVG(amount), 0), 2)
		FROM transactions GROUP BY category ORDER BY SUM(amount) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryRevenue
	for rows.Next() {
		var cr CategoryRevenue
		if err := rows.Scan(&cr.Category, &cr.Transactions, &cr.Revenue, &cr.AvgAmount); err != nil {
			return nil, err
		}
		result = append(result, cr)
	}
	return result, rows.Err()
}

type MonthRevenue struct {
	Month        string  `json:"month"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
}

func (r *TransactionRepo) GetMonthlyRevenue() ([]MonthRevenue, error) {
	rows, err := r.db.Query(`
		SELECT strftime('%Y-%m', date), COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions GROUP BY 1 ORDER BY 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthRevenue
	for rows.Next() {
		var mr MonthRevenue
		if err := rows.Scan(&mr.Month, &mr.Transactions, &mr.Revenue); err != nil {
			return nil, err
		}
		result = append(result, mr)
	}
	return result, rows.Err()
}

// FileIngested reports whether a ledger file with this hash was imported
// before.
func (r *TransactionRepo) FileIngested(hash string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM ingested_files WHERE file_hash = ?", hash,
	).Scan(&n)
	return n > 0, err
}

func (r *TransactionRepo) RecordIngestedFile(hash string, records int) error {
	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO ingested_files (file_hash, record_count, ingested_at) VALUES (?,?,?)",
		hash, records, time.Now().Format(time.RFC3339),
	)
	return err
}

// --- helpers ---

func buildTransactionWhere(f TransactionFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.CustomerID != "" {
		clauses = append(clauses, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.From != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, f.To.Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var category, date string
		if err := rows.Scan(&tx.ID, &tx.CustomerID, &date, &category, &tx.Amount, &tx.Quantity); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tx.Category = domain.Category(category)
		tx.Date, _ = time.Parse(time.RFC3339, date)
		txns = append(txns, tx)
	}
	return txns, rows.Err()
}
