package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
)

const transactionSelect = `SELECT t.id, t.profile_id, t.category_id, c.name, t.description, t.amount_cents, t.type, t.date
FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

// filterClause translates f into a WHERE clause. It always scopes to profileID.
func filterClause(profileID int64, f core.Filter) (string, []any) {
	conds := []string{"t.profile_id = ?"}
	args := []any{profileID}
	if f.Since != nil {
		conds = append(conds, "t.date >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if f.Until != nil {
		conds = append(conds, "t.date <= ?")
		args = append(args, f.Until.UnixNano())
	}
	if f.MinAmount != nil {
		conds = append(conds, "t.amount_cents >= ?")
		args = append(args, f.MinAmount.Cents())
	}
	if f.MaxAmount != nil {
		conds = append(conds, "t.amount_cents <= ?")
		args = append(args, f.MaxAmount.Cents())
	}
	if f.Type != "" {
		conds = append(conds, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != nil {
		conds = append(conds, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	for _, term := range f.SearchTerms() {
		conds = append(conds, foldFunc + `(t.description) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(term))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var t core.Transaction
	var catID sql.NullInt64
	var catName sql.NullString
	var cents, date int64
	var typ string
	if err := s.Scan(&t.ID, &t.ProfileID, &catID, &catName, &t.Description, &cents, &typ, &date); err != nil {
		return core.Transaction{}, err
	}
	if catID.Valid {
		t.Category = &core.CategoryRef{ID: catID.Int64, Name: catName.String}
	}
	t.Amount = core.MoneyFromCents(cents)
	t.Type = core.TransactionType(typ)
	t.Date = fromNanos(date)
	return t, nil
}

// ListTransactions implements ledger.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context, profileID int64, f core.Filter, p core.Page) ([]core.Transaction, int, error) {
	where, args := filterClause(profileID, f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM transactions t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := -1
	if p.Size > 0 {
		limit = p.Size
	}
	query := transactionSelect + where + ` ORDER BY t.date DESC, t.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, total, nil
}

func (r *SQLiteRepository) getTransaction(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, profileID, id int64) (core.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx,
		transactionSelect+` WHERE t.id = ? AND t.profile_id = ?`, id, profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, profileID, id int64) (core.Transaction, error) {
	return r.getTransaction(ctx, r.db, profileID, id)
}

// checkCategory reports core.ErrNotFound when id is set and not owned by profileID.
func checkCategory(ctx context.Context, tx *sql.Tx, profileID int64, id *int64) error {
	if id == nil {
		return nil
	}
	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM categories WHERE id = ? AND profile_id = ?`, *id, profileID).Scan(&n); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, profileID int64, in core.TransactionInput, at time.Time) (core.Transaction, error) {
	var out core.Transaction
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkCategory(ctx, tx, profileID, in.CategoryID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (profile_id, category_id, description, amount_cents, type, date) VALUES (?, ?, ?, ?, ?, ?)`,
			profileID, nullable(in.CategoryID), in.Description, in.Amount.Cents(), string(in.Type), at.UnixNano())
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction id: %w", err)
		}
		out, err = r.getTransaction(ctx, tx, profileID, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", out.ID,
		"profile_id", profileID,
		"type", out.Type,
		"amount_cents", out.Amount.Cents())

	return out, nil
}

// UpdateTransaction rewrites the client-writable fields. The date column is never touched.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, profileID, id int64, in core.TransactionInput) (core.Transaction, error) {
	var out core.Transaction
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkCategory(ctx, tx, profileID, in.CategoryID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET category_id = ?, description = ?, amount_cents = ?, type = ? WHERE id = ? AND profile_id = ?`,
			nullable(in.CategoryID), in.Description, in.Amount.Cents(), string(in.Type), id, profileID)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if err := expectOne(res); err != nil {
			return err
		}
		out, err = r.getTransaction(ctx, tx, profileID, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, profileID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOne(res)
}

// Summarize totals income and expense in integer cents inside the database.
func (r *SQLiteRepository) Summarize(ctx context.Context, profileID int64, since, until time.Time) (core.Summary, error) {
	var income, expense int64
	err := r.db.QueryRowContext(ctx, `SELECT
    COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents END), 0),
    COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents END), 0)
FROM transactions
WHERE profile_id = ? AND date >= ? AND date <= ?`,
		profileID, since.UnixNano(), until.UnixNano()).Scan(&income, &expense)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	return core.NewSummary(core.MoneyFromCents(income), core.MoneyFromCents(expense)), nil
}
