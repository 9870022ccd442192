package insight

import (
	"math"
	"sort"

	"github.com/dvloznov/insight-service/internal/domain"
)

// uncategorized is the bucket for expense transactions without a category, so
// the breakdown always sums to the total expense.
const uncategorized = "uncategorized"

// CategorySpend is one entry of the per-category expense breakdown.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	// Percent is this category's share of the total expense, rounded to one
	// decimal. Zero when there are no expenses.
	Percent float64 `json:"percentage_of_expense"`
}

// SpendingSummary is the reduction of a transaction set used as input for
// insight generation. Recomputed per request, never stored.
type SpendingSummary struct {
	TotalIncome  float64         `json:"total_income"`
	TotalExpense float64         `json:"total_expense"`
	Breakdown    []CategorySpend `json:"category_breakdown"`
}

// Aggregate reduces a transaction set into summary statistics. Income and
// expense are mutually exclusive partitions on the sign of the amount; zero
// amounts contribute to neither. The breakdown covers expense transactions
// only, sorted descending by amount with the category name as tie-break.
func Aggregate(txs []domain.Transaction) SpendingSummary {
	var summary SpendingSummary
	byCategory := make(map[string]float64)

	for _, tx := range txs {
		switch {
		case tx.IsIncome():
			summary.TotalIncome += tx.Amount
		case tx.IsExpense():
			spent := -tx.Amount
			summary.TotalExpense += spent
			category := tx.Category
			if category == "" {
				category = uncategorized
			}
			byCategory[category] += spent
		}
	}

	for category, amount := range byCategory {
		var percent float64
		if summary.TotalExpense > 0 {
			percent = round1(amount / summary.TotalExpense * 100)
		}
		summary.Breakdown = append(summary.Breakdown, CategorySpend{
			Category: category,
			Amount:   amount,
			Percent:  percent,
		})
	}

	sort.Slice(summary.Breakdown, func(i, j int) bool {
		a, b := summary.Breakdown[i], summary.Breakdown[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})

	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
