// Package storage implements the durable transaction store on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound signals that no record matched the owner-scoped lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail signals a registration attempt with a taken email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is an account record; it exists only to resolve owner identity.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TransactionFilter narrows a find query. Nil fields are not applied;
// kind and date range combine with AND semantics. Limit 0 means no cap.
type TransactionFilter struct {
	Kind  *core.Kind
	From  *core.Date
	To    *core.Date
	Limit int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
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

// InsertTransaction stores a validated transaction and returns it with the
// assigned id and audit timestamps.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, kind, category, amount_cents, note, occurred_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.OwnerID, tx.Kind.String(), tx.Category, tx.Amount.Cents, tx.Note, tx.Date.String(), now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	tx.ID = id
	tx.CreatedAt = now
	tx.UpdatedAt = now
	return tx, nil
}

// UpdateTransaction persists an already-merged record, owner-scoped.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET kind = ?, category = ?, amount_cents = ?, note = ?, occurred_on = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		tx.Kind.String(), tx.Category, tx.Amount.Cents, tx.Note, tx.Date.String(), now, tx.ID, tx.OwnerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, ErrNotFound
	}

	tx.UpdatedAt = now
	return tx, nil
}

// DeleteTransaction removes a record, owner-scoped. Hard delete.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTransaction fetches one record, owner-scoped.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, kind, category, amount_cents, note, occurred_on, created_at, updated_at
		FROM transactions
		WHERE id = ? AND owner_id = ?`, id, ownerID)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// FindTransactions lists an owner's records, most recent date first.
// occurred_on is stored as YYYY-MM-DD text, so lexical comparison matches
// calendar order.
func (r *SQLiteRepository) FindTransactions(ctx context.Context, ownerID int64, filter TransactionFilter) ([]core.Transaction, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, owner_id, kind, category, amount_cents, note, occurred_on, created_at, updated_at
		FROM transactions
		WHERE owner_id = ?`)
	args := []any{ownerID}

	if filter.Kind != nil {
		query.WriteString(` AND kind = ?`)
		args = append(args, filter.Kind.String())
	}
	if filter.From != nil {
		query.WriteString(` AND occurred_on >= ?`)
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		query.WriteString(` AND occurred_on <= ?`)
		args = append(args, filter.To.String())
	}
	query.WriteString(` ORDER BY occurred_on DESC, id DESC`)
	if filter.Limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		kind       string
		occurredOn string
	)
	if err := row.Scan(&tx.ID, &tx.OwnerID, &kind, &tx.Category, &tx.Amount.Cents,
		&tx.Note, &occurredOn, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Kind = core.Kind(kind)
	date, err := core.ParseDate(occurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", occurredOn, err)
	}
	tx.Date = date
	return tx, nil
}

// CreateUser registers a new account.
func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("last insert id: %w", err)
	}

	return User{ID: id, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// GetUserByEmail fetches an account for login.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE email = ?`, email))
}

// GetUserByID fetches an account by its id.
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
