package domain

import (
	"time"
)

// Transaction is one transaction from the user's history, consumed read-only
// by the insight pipeline. Amount is signed: positive for money IN (income),
// negative for money OUT (expense). A zero amount counts as neither.
type Transaction struct {
	ID          string    `json:"id,omitempty"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"date"`
}

// IsIncome reports whether the transaction brings money in.
func (t Transaction) IsIncome() bool {
	return t.Amount > 0
}

// IsExpense reports whether the transaction takes money out.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}
