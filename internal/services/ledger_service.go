// Package services orchestrates the ledger: validation, persistence,
// aggregation, trends and change events.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Store is the owner-scoped transaction store the ledger runs against.
type Store interface {
	InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id int64) error
	GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	FindTransactions(ctx context.Context, ownerID int64, filter storage.TransactionFilter) ([]core.Transaction, error)
}

// EventPublisher emits ledger change notifications. Publishing is
// best-effort: failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event string, transactionID, ownerID int64) error
}

// Clock supplies "now" so the trend window is testable.
type Clock func() time.Time

// Config tunes a Ledger. Zero values get sensible defaults.
type Config struct {
	Events    EventPublisher
	Clock     Clock
	ListLimit int
	CacheSize int
	CacheTTL  time.Duration
	Logger    *log.Logger
}

// Ledger wires the validator, store, aggregation engine and trend builder.
type Ledger struct {
	store     Store
	events    EventPublisher
	clock     Clock
	listLimit int
	summaries *cache.LRUCache[core.Summary]
	logger    *log.Logger
}

func NewLedger(store Store, cfg Config) *Ledger {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default(log.ComponentLedger)
	}
	return &Ledger{
		store:     store,
		events:    cfg.Events,
		clock:     cfg.Clock,
		listLimit: cfg.ListLimit,
		summaries: cache.NewLRUCache[core.Summary](cfg.CacheSize, cfg.CacheTTL),
		logger:    cfg.Logger,
	}
}

// Create validates the input and stores the transaction. Validation runs
// before any store mutation.
func (l *Ledger) Create(ctx context.Context, ownerID int64, in core.TransactionInput) (core.Transaction, error) {
	tx, err := in.Normalize(l.clock())
	if err != nil {
		return core.Transaction{}, err
	}
	tx.OwnerID = ownerID

	created, err := l.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	l.publish(ctx, amqp.EventTransactionCreated, created.ID, ownerID)
	l.invalidateSummaries(ownerID)

	l.logger.InfoContext(ctx, "Transaction created",
		log.FieldOwnerID, ownerID,
		log.FieldTxID, created.ID,
		log.FieldKind, created.Kind.String(),
		log.FieldAmountCents, created.Amount.Cents)

	return created, nil
}

// Update applies a partial update to an owner's transaction. Omitted
// fields keep their prior values; supplied fields are re-validated.
func (l *Ledger) Update(ctx context.Context, ownerID, id int64, upd core.TransactionUpdate) (core.Transaction, error) {
	existing, err := l.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	merged, err := upd.Apply(existing)
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := l.store.UpdateTransaction(ctx, merged)
	if err != nil {
		return core.Transaction{}, err
	}

	l.invalidateSummaries(ownerID)
	return updated, nil
}

// Delete removes an owner's transaction. Hard delete.
func (l *Ledger) Delete(ctx context.Context, ownerID, id int64) error {
	if err := l.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}

	l.publish(ctx, amqp.EventTransactionDeleted, id, ownerID)
	l.invalidateSummaries(ownerID)
	return nil
}

// Get fetches one owner-scoped transaction.
func (l *Ledger) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, ownerID, id)
}

// List returns an owner's transactions, most recent first, capped at the
// configured listing limit. Kind and date-range filters combine with AND.
func (l *Ledger) List(ctx context.Context, ownerID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	if filter.Limit <= 0 || filter.Limit > l.listLimit {
		filter.Limit = l.listLimit
	}
	return l.store.FindTransactions(ctx, ownerID, filter)
}

// Summary aggregates one calendar month. Zero year/month means the current
// month at the injected clock. Results are cached briefly per owner+month
// and dropped on any of the owner's writes.
func (l *Ledger) Summary(ctx context.Context, ownerID int64, year int, month time.Month) (core.Summary, error) {
	if year == 0 || month == 0 {
		now := l.clock()
		year, month = now.Year(), now.Month()
	}

	key := summaryKey(ownerID, year, month)
	if cached, ok := l.summaries.Get(key); ok {
		return cached, nil
	}

	summary, err := l.monthSummary(ctx, ownerID, year, month)
	if err != nil {
		return core.Summary{}, err
	}

	l.summaries.Set(key, summary)
	return summary, nil
}

// Trends builds the fixed 6-month window anchored at the clock's now,
// oldest first. The month reductions run concurrently and join into a
// fixed-index slice; any store failure aborts the whole window so callers
// never see partial trend data.
func (l *Ledger) Trends(ctx context.Context, ownerID int64) ([]core.MonthSummary, error) {
	now := l.clock()
	results := make([]core.MonthSummary, core.TrendMonths)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < core.TrendMonths; i++ {
		i := i
		g.Go(func() error {
			year, month := core.MonthsBack(now, core.TrendMonths-1-i)
			summary, err := l.monthSummary(ctx, ownerID, year, month)
			if err != nil {
				return fmt.Errorf("trend month %s: %w", core.MonthLabel(year, month), err)
			}
			results[i] = core.MonthSummary{
				Month:    core.MonthLabel(year, month),
				Income:   summary.Income,
				Expenses: summary.Expenses,
				EMIs:     summary.EMIs,
				Savings:  summary.NetSavings,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (l *Ledger) monthSummary(ctx context.Context, ownerID int64, year int, month time.Month) (core.Summary, error) {
	first, last := core.MonthBounds(year, month)
	txs, err := l.store.FindTransactions(ctx, ownerID, storage.TransactionFilter{
		From: &first,
		To:   &last,
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("find transactions for %d-%02d: %w", year, month, err)
	}
	return core.Summarize(txs), nil
}

func (l *Ledger) publish(ctx context.Context, event string, transactionID, ownerID int64) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishLedgerEvent(ctx, event, transactionID, ownerID); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish ledger event",
			"event", event,
			log.FieldTxID, transactionID,
			log.FieldError, err)
	}
}

func (l *Ledger) invalidateSummaries(ownerID int64) {
	l.summaries.DeletePrefix(fmt.Sprintf("owner:%d:", ownerID))
}

func summaryKey(ownerID int64, year int, month time.Month) string {
	return fmt.Sprintf("owner:%d:%04d-%02d", ownerID, year, int(month))
}
