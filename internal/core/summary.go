package core

import "time"

// TrendMonths is the fixed size of the rolling trend window.
const TrendMonths = 6

// Summary is the aggregate view of one transaction set.
type Summary struct {
	Income            Money            `json:"income"`
	Expenses          Money            `json:"expenses"`
	EMIs              Money            `json:"emis"`
	NetSavings        Money            `json:"netSavings"`
	CategoryBreakdown map[string]Money `json:"categoryBreakdown"`
	TotalTransactions int              `json:"totalTransactions"`
}

// MonthSummary is one entry of the trend window.
type MonthSummary struct {
	Month    string `json:"month"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
	EMIs     Money  `json:"emis"`
	Savings  Money  `json:"savings"`
}

// Summarize reduces a transaction set into per-kind sums, net savings and
// the category breakdown. The breakdown covers expense transactions only;
// income and EMI categories are deliberately excluded. An empty input
// yields zero sums and an empty (non-nil) breakdown.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		CategoryBreakdown: make(map[string]Money),
		TotalTransactions: len(txs),
	}
	for _, tx := range txs {
		switch tx.Kind {
		case KindIncome:
			s.Income = s.Income.Add(tx.Amount)
		case KindExpense:
			s.Expenses = s.Expenses.Add(tx.Amount)
			s.CategoryBreakdown[tx.Category] = s.CategoryBreakdown[tx.Category].Add(tx.Amount)
		case KindEMI:
			s.EMIs = s.EMIs.Add(tx.Amount)
		}
	}
	s.NetSavings = s.Income.Sub(s.Expenses).Sub(s.EMIs)
	return s
}

// MonthBounds returns the first and last calendar day of the given month,
// both inclusive. The day-zero construction handles variable month lengths
// and year rollover.
func MonthBounds(year int, month time.Month) (first, last Date) {
	first = NewDate(year, month, 1)
	last = Date{Time: time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)}
	return first, last
}

// MonthLabel formats a month in the canonical "Jan 2006" form. Localization
// is a presentation concern.
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// MonthsBack resolves the calendar month that lies n months before the
// given instant, normalizing across year boundaries.
func MonthsBack(now time.Time, n int) (int, time.Month) {
	t := time.Date(now.Year(), now.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
