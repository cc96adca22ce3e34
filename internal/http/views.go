package http

import (
	"time"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/services"
)

// Wire shapes. The user field of categories and transactions carries the
// owning profile id.
type (
	categoryJSON struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		User *int64 `json:"user"`
	}

	transactionJSON struct {
		ID          int64                `json:"id"`
		User        int64                `json:"user"`
		Category    *core.CategoryRef    `json:"category"`
		Description string               `json:"description"`
		Amount      core.Money           `json:"amount"`
		Type        core.TransactionType `json:"type"`
		Date        string               `json:"date"`
	}

	profileJSON struct {
		ID           int64             `json:"id"`
		Username     string            `json:"username"`
		Email        string            `json:"email"`
		Balance      core.Money        `json:"balance"`
		Categories   []categoryJSON    `json:"categories"`
		Transactions []transactionJSON `json:"transactions"`
	}
)

func newCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, User: c.ProfileID}
}

func newCategoryList(cats []core.Category) []categoryJSON {
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryJSON(c))
	}
	return out
}

func newTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		User:        t.ProfileID,
		Category:    t.Category,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date.Format(time.RFC3339Nano),
	}
}

func newTransactionList(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionJSON(t))
	}
	return out
}

func newProfileJSON(v services.ProfileView) profileJSON {
	return profileJSON{
		ID:           v.User.ID,
		Username:     v.User.Username,
		Email:        v.User.Email,
		Balance:      v.Profile.Balance,
		Categories:   newCategoryList(v.Categories),
		Transactions: newTransactionList(v.Transactions),
	}
}
