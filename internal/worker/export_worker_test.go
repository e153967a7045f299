package worker

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	txs map[int64]core.Transaction
}

func (f *fakeGetter) GetTransaction(_ context.Context, ownerID, id int64) (core.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok || tx.OwnerID != ownerID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return tx, nil
}

func testWorker(t *testing.T, txs map[int64]core.Transaction) (*ExportWorker, string) {
	t.Helper()
	dir := t.TempDir()
	w := NewExportWorker(&fakeGetter{txs: txs}, dir)
	w.clock = func() time.Time { return time.Date(2025, 1, 25, 12, 0, 0, 0, time.UTC) }
	return w, dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportCreatedWritesMonthFile(t *testing.T) {
	w, dir := testWorker(t, map[int64]core.Transaction{
		7: {
			ID: 7, OwnerID: 3, Kind: core.KindExpense, Category: "Food",
			Amount: core.Money{Cents: 2550}, Note: "lunch",
			Date: core.NewDate(2025, time.January, 10),
		},
	})

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionCreated, 7, 3))
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(dir, "2025-01.csv"))
	require.Len(t, rows, 2, "header plus one row")
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"2025-01-25T12:00:00Z", "7", "3", "expense", "Food", "25.5", "lunch", "2025-01-10"}, rows[1])
}

func TestExportAppendsWithoutDuplicateHeader(t *testing.T) {
	w, dir := testWorker(t, map[int64]core.Transaction{
		1: {ID: 1, OwnerID: 3, Kind: core.KindIncome, Category: "Salary",
			Amount: core.Money{Cents: 100000}, Date: core.NewDate(2025, time.January, 1)},
		2: {ID: 2, OwnerID: 3, Kind: core.KindEMI, Category: "Car Loan",
			Amount: core.Money{Cents: 20000}, Date: core.NewDate(2025, time.January, 5)},
	})

	require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionCreated, 1, 3)))
	require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionCreated, 2, 3)))

	rows := readCSV(t, filepath.Join(dir, "2025-01.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "2", rows[2][1])
}

func TestExportSplitsByOccurrenceMonth(t *testing.T) {
	w, dir := testWorker(t, map[int64]core.Transaction{
		1: {ID: 1, OwnerID: 3, Kind: core.KindExpense, Category: "Food",
			Amount: core.Money{Cents: 500}, Date: core.NewDate(2024, time.December, 31)},
	})

	require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionCreated, 1, 3)))

	_, err := os.Stat(filepath.Join(dir, "2024-12.csv"))
	assert.NoError(t, err, "row lands in the month the transaction occurred, not the export month")
}

func TestExportSkipsVanishedTransaction(t *testing.T) {
	w, dir := testWorker(t, nil)

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionCreated, 99, 3))
	assert.NoError(t, err, "vanished transactions are skipped, not requeued")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeletedEventRecordsDeletion(t *testing.T) {
	w, dir := testWorker(t, nil)

	require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionDeleted, 42, 3)))

	rows := readCSV(t, filepath.Join(dir, "deletions.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"deleted_at", "transaction_id", "owner_id"}, rows[0])
	assert.Equal(t, []string{"2025-01-25T12:00:00Z", "42", "3"}, rows[1])
}

func TestUnknownEventIgnored(t *testing.T) {
	w, dir := testWorker(t, nil)

	require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent("transaction.archived", 1, 3)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
