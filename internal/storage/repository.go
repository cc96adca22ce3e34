package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jfprgin/home-budget/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteRepository struct {
	db *sql.DB
}

// DSN returns the connection string used for every pooled connection.
// Foreign keys are per-connection in SQLite, so they are enabled here.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isConstraint reports a constraint violation, whatever extended code the
// driver attached to it.
func isConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// CreateUser implements ledger.UserStore
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User, balance core.Money, seed []string) (core.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			u.Username, u.Email, u.PasswordHash, u.CreatedAt.UnixNano())
		if err != nil {
			if isConstraint(err) {
				return core.ErrConflict
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if u.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("user id: %w", err)
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (user_id, balance_cents) VALUES (?, ?)`, u.ID, balance.Cents())
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		if u.ProfileID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("profile id: %w", err)
		}

		for _, name := range seed {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (profile_id, name) VALUES (?, ?)`, u.ProfileID, name); err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User saved to SQLite",
		"user_id", u.ID,
		"profile_id", u.ProfileID,
		"seeded_categories", len(seed))

	return u, nil
}

const userColumns = `u.id, u.username, u.email, u.password_hash, u.created_at, p.id`

func scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var created int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created, &u.ProfileID); err != nil {
		return core.User{}, notFound(err)
	}
	u.CreatedAt = fromNanos(created)
	return u, nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u JOIN profiles p ON p.user_id = u.id WHERE u.username = ?`, username))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, err
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u JOIN profiles p ON p.user_id = u.id WHERE u.id = ?`, id))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, err
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectOne(res)
}

// DeleteUser relies on ON DELETE CASCADE for the profile, categories and transactions.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "User deleted from SQLite", "user_id", userID)
	return nil
}

func (r *SQLiteRepository) Profile(ctx context.Context, profileID int64) (core.Profile, error) {
	var p core.Profile
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, balance_cents FROM profiles WHERE id = ?`, profileID).
		Scan(&p.ID, &p.UserID, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Profile{}, core.ErrNotFound
		}
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.Balance = core.MoneyFromCents(balance)
	return p, nil
}

// Revoke implements ledger.TokenBlacklist
func (r *SQLiteRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at, revoked_at) VALUES (?, ?, ?)`,
		jti, expiresAt.UnixNano(), time.Now().UnixNano())
	if err != nil {
		if isConstraint(err) {
			return core.ErrConflict
		}
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n); err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// PurgeExpiredTokens drops blacklist rows whose token would be rejected anyway.
func (r *SQLiteRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.RowsAffected()
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
