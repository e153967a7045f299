package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"fintrack/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository, email string) User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "Test User", email, "hash")
	require.NoError(t, err)
	return u
}

func insertTx(t *testing.T, repo *SQLiteRepository, owner int64, kind core.Kind, category string, cents int64, date string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	tx, err := repo.InsertTransaction(context.Background(), core.Transaction{
		OwnerID:  owner,
		Kind:     kind,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Date:     d,
	})
	require.NoError(t, err)
	return tx
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo, "a@example.com")

	created := insertTx(t, repo, user.ID, core.KindExpense, "Groceries", 4250, "2025-01-31")
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetTransaction(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, core.KindExpense, got.Kind)
	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, int64(4250), got.Amount.Cents)
	assert.Equal(t, "2025-01-31", got.Date.String())
}

func TestOwnerIsolation(t *testing.T) {
	repo := newTestRepo(t)
	alice := newTestUser(t, repo, "alice@example.com")
	bob := newTestUser(t, repo, "bob@example.com")

	tx := insertTx(t, repo, alice.ID, core.KindIncome, "Salary", 100000, "2025-02-01")

	_, err := repo.GetTransaction(context.Background(), bob.ID, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteTransaction(context.Background(), bob.ID, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	txs, err := repo.FindTransactions(context.Background(), bob.ID, TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestFindFilters(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo, "c@example.com")

	insertTx(t, repo, user.ID, core.KindExpense, "Food", 1000, "2025-01-10")
	insertTx(t, repo, user.ID, core.KindExpense, "Travel", 2000, "2025-02-10")
	insertTx(t, repo, user.ID, core.KindIncome, "Salary", 90000, "2025-02-01")
	insertTx(t, repo, user.ID, core.KindEMI, "Car Loan", 15000, "2025-02-20")

	t.Run("no filters returns all, date desc", func(t *testing.T) {
		txs, err := repo.FindTransactions(context.Background(), user.ID, TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, txs, 4)
		for i := 1; i < len(txs); i++ {
			assert.GreaterOrEqual(t, txs[i-1].Date.String(), txs[i].Date.String())
		}
	})

	t.Run("kind and range combine with AND", func(t *testing.T) {
		kind := core.KindExpense
		from, _ := core.ParseDate("2025-02-01")
		to, _ := core.ParseDate("2025-02-28")
		txs, err := repo.FindTransactions(context.Background(), user.ID, TransactionFilter{
			Kind: &kind, From: &from, To: &to,
		})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "Travel", txs[0].Category)
	})

	t.Run("range is inclusive at both ends", func(t *testing.T) {
		from, _ := core.ParseDate("2025-02-01")
		to, _ := core.ParseDate("2025-02-20")
		txs, err := repo.FindTransactions(context.Background(), user.ID, TransactionFilter{From: &from, To: &to})
		require.NoError(t, err)
		assert.Len(t, txs, 3)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		txs, err := repo.FindTransactions(context.Background(), user.ID, TransactionFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})
}

func TestFindLimitKeepsMostRecent(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo, "d@example.com")

	for day := 1; day <= 5; day++ {
		insertTx(t, repo, user.ID, core.KindExpense, "Food", 100, fmt.Sprintf("2025-03-%02d", day))
	}

	txs, err := repo.FindTransactions(context.Background(), user.ID, TransactionFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "2025-03-05", txs[0].Date.String())
	assert.Equal(t, "2025-03-03", txs[2].Date.String())
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	user := newTestUser(t, repo, "e@example.com")

	tx := insertTx(t, repo, user.ID, core.KindExpense, "Food", 1000, "2025-01-15")

	tx.Note = "dinner"
	tx.Amount = core.Money{Cents: 1250}
	updated, err := repo.UpdateTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "dinner", updated.Note)

	got, err := repo.GetTransaction(context.Background(), user.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), got.Amount.Cents)

	require.NoError(t, repo.DeleteTransaction(context.Background(), user.ID, tx.ID))
	_, err = repo.GetTransaction(context.Background(), user.ID, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is a NotFound, not a no-op success
	assert.ErrorIs(t, repo.DeleteTransaction(context.Background(), user.ID, tx.ID), ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	newTestUser(t, repo, "dup@example.com")

	_, err := repo.CreateUser(context.Background(), "Other", "dup@example.com", "hash2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetUserByEmail(t *testing.T) {
	repo := newTestRepo(t)
	created := newTestUser(t, repo, "login@example.com")

	u, err := repo.GetUserByEmail(context.Background(), "login@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
