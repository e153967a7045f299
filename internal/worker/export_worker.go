// Package worker turns ledger change events into CSV export files, one
// file per calendar month of occurrence.
package worker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionGetter reads one owner-scoped transaction.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
}

var exportHeader = []string{"exported_at", "transaction_id", "owner_id", "type", "category", "amount", "note", "date"}

// ExportWorker appends created transactions to per-month CSV files and
// records deletions in a separate log, so the exports stay reconcilable.
type ExportWorker struct {
	store  TransactionGetter
	dir    string
	logger *log.Logger
	clock  func() time.Time
}

func NewExportWorker(store TransactionGetter, dir string) *ExportWorker {
	return &ExportWorker{
		store:  store,
		dir:    dir,
		logger: log.Default(log.ComponentWorker),
		clock:  time.Now,
	}
}

// HandleEvent processes one ledger event. A transaction already gone by the
// time its created event arrives is skipped, not retried.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	switch event.Event {
	case amqp.EventTransactionCreated:
		return w.exportCreated(ctx, event)
	case amqp.EventTransactionDeleted:
		return w.recordDeleted(event)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event", "event", event.Event)
		return nil
	}
}

func (w *ExportWorker) exportCreated(ctx context.Context, event *amqp.LedgerEvent) error {
	tx, err := w.store.GetTransaction(ctx, event.OwnerID, event.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction vanished before export",
			log.FieldTxID, event.TransactionID,
			log.FieldOwnerID, event.OwnerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", event.TransactionID, err)
	}

	path := filepath.Join(w.dir, tx.Date.Format("2006-01")+".csv")
	row := []string{
		w.clock().UTC().Format(time.RFC3339),
		fmt.Sprintf("%d", tx.ID),
		fmt.Sprintf("%d", tx.OwnerID),
		tx.Kind.String(),
		tx.Category,
		tx.Amount.String(),
		tx.Note,
		tx.Date.String(),
	}
	if err := w.appendRow(path, exportHeader, row); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		log.FieldTxID, tx.ID,
		log.FieldOwnerID, tx.OwnerID,
		"file", filepath.Base(path))
	return nil
}

func (w *ExportWorker) recordDeleted(event *amqp.LedgerEvent) error {
	path := filepath.Join(w.dir, "deletions.csv")
	row := []string{
		w.clock().UTC().Format(time.RFC3339),
		fmt.Sprintf("%d", event.TransactionID),
		fmt.Sprintf("%d", event.OwnerID),
	}
	return w.appendRow(path, []string{"deleted_at", "transaction_id", "owner_id"}, row)
}

// appendRow appends one CSV row, writing the header first on a fresh file.
func (w *ExportWorker) appendRow(path string, header, row []string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat export file: %w", err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write export header: %w", err)
		}
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write export row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
