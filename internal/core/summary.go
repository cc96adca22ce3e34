package core

import "time"

// Summary is the triple reported by the summary endpoints.
type Summary struct {
	TotalExpense Money `json:"total_expense"`
	TotalIncome  Money `json:"total_income"`
	Balance      Money `json:"balance"`
}

// NewSummary derives the balance from the two totals.
func NewSummary(income, expense Money) Summary {
	return Summary{
		TotalExpense: expense,
		TotalIncome:  income,
		Balance:      income.Sub(expense),
	}
}

// Aggregate sums the income and expense amounts of txs dated within w.
// It never fails: an empty or non-matching set yields zeros.
func Aggregate(txs []Transaction, w Window, loc *time.Location) Summary {
	return Sum(WindowFilter(w, loc).Apply(txs))
}

// Sum totals every transaction of txs by type.
func Sum(txs []Transaction) Summary {
	income, expense := Zero, Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return NewSummary(income, expense)
}
