package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jfprgin/home-budget/internal/core"
)

// likePattern turns a search term into a case-insensitive LIKE pattern
// with the wildcard characters escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// ListCategories implements ledger.CategoryStore
func (r *SQLiteRepository) ListCategories(ctx context.Context, profileID int64, q core.CategoryQuery) ([]core.Category, error) {
	query := `SELECT id, profile_id, name FROM categories WHERE profile_id = ?`
	args := []any{profileID}
	if q.Name != "" {
		query += ` AND name = ?`
		args = append(args, q.Name)
	}
	for _, term := range strings.Fields(strings.ReplaceAll(q.Search, ",", " ")) {
		query += ` AND ` + foldFunc + `(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(term))
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	var owner sql.NullInt64
	if err := s.Scan(&c.ID, &owner, &c.Name); err != nil {
		return core.Category{}, err
	}
	if owner.Valid {
		id := owner.Int64
		c.ProfileID = &id
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, profileID, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT id, profile_id, name FROM categories WHERE id = ? AND profile_id = ?`, id, profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, core.ErrNotFound
		}
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, profileID int64, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (profile_id, name) VALUES (?, ?)`, profileID, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	owner := profileID
	return core.Category{ID: id, ProfileID: &owner, Name: name}, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, profileID, id int64, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND profile_id = ?`, name, id, profileID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := expectOne(res); err != nil {
		return core.Category{}, err
	}
	owner := profileID
	return core.Category{ID: id, ProfileID: &owner, Name: name}, nil
}

// DeleteCategory removes the category; its transactions go with it via the foreign key.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, profileID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted from SQLite", "category_id", id, "profile_id", profileID)
	return nil
}
