// Package bigquery implements the read-only transaction source backing the
// per-user insight endpoint. Schema ownership lives elsewhere; this package
// only reads.
package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/insight-service/internal/domain"
)

const transactionsTable = "transactions"

// transactionRow mirrors the columns the insight pipeline needs; the table
// carries more, but reading them here would be dead weight.
type transactionRow struct {
	TransactionID   string              `bigquery:"transaction_id"`
	TransactionDate civil.Date          `bigquery:"transaction_date"`
	Amount          *big.Rat            `bigquery:"amount"`
	RawDescription  string              `bigquery:"raw_description"`
	CategoryName    bigquery.NullString `bigquery:"category_name"`
}

// TransactionSource reads a user's transaction history from BigQuery.
type TransactionSource struct {
	client  *bigquery.Client
	dataset string
}

// NewTransactionSource creates a source bound to the given project and
// dataset.
func NewTransactionSource(ctx context.Context, projectID, dataset string) (*TransactionSource, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery: creating client: %w", err)
	}
	return &TransactionSource{client: client, dataset: dataset}, nil
}

// ListByUser returns up to limit of the user's most recent transactions,
// mapped into the domain shape the pipeline consumes.
func (s *TransactionSource) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			transaction_date,
			amount,
			raw_description,
			category_name
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY transaction_date DESC
		LIMIT @row_limit
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "row_limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery: query read: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery: iterating rows: %w", err)
		}
		txs = append(txs, rowToTransaction(row))
	}

	return txs, nil
}

// Close releases the underlying BigQuery client.
func (s *TransactionSource) Close() error {
	return s.client.Close()
}

func rowToTransaction(row transactionRow) domain.Transaction {
	var amount float64
	if row.Amount != nil {
		amount, _ = row.Amount.Float64()
	}

	tx := domain.Transaction{
		ID:          row.TransactionID,
		Description: row.RawDescription,
		Amount:      amount,
		Date:        row.TransactionDate.In(time.UTC),
	}
	if row.CategoryName.Valid {
		tx.Category = row.CategoryName.StringVal
	}
	return tx
}
