package core

import (
	"testing"
	"time"
)

func tx(kind Kind, category string, cents int64, date string) Transaction {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return Transaction{Kind: kind, Category: category, Amount: Money{Cents: cents}, Date: d}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		tx(KindExpense, "Food", 10000, "2025-01-15"),
		tx(KindIncome, "Salary", 100000, "2025-01-01"),
		tx(KindEMI, "Car Loan", 20000, "2025-01-20"),
	}
	s := Summarize(txs)

	if s.Income.Cents != 100000 {
		t.Errorf("income = %s", s.Income)
	}
	if s.Expenses.Cents != 10000 {
		t.Errorf("expenses = %s", s.Expenses)
	}
	if s.EMIs.Cents != 20000 {
		t.Errorf("emis = %s", s.EMIs)
	}
	if s.NetSavings.Cents != 70000 {
		t.Errorf("netSavings = %s, want 700", s.NetSavings)
	}
	if s.TotalTransactions != 3 {
		t.Errorf("totalTransactions = %d", s.TotalTransactions)
	}
	if len(s.CategoryBreakdown) != 1 || s.CategoryBreakdown["Food"].Cents != 10000 {
		t.Errorf("categoryBreakdown = %v, want only Food:100", s.CategoryBreakdown)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Income.Cents != 0 || s.Expenses.Cents != 0 || s.EMIs.Cents != 0 || s.NetSavings.Cents != 0 {
		t.Errorf("sums should be zero: %+v", s)
	}
	if s.CategoryBreakdown == nil || len(s.CategoryBreakdown) != 0 {
		t.Errorf("breakdown should be empty non-nil map, got %v", s.CategoryBreakdown)
	}
	if s.TotalTransactions != 0 {
		t.Errorf("totalTransactions = %d", s.TotalTransactions)
	}
}

func TestSummarizeBreakdownProperties(t *testing.T) {
	txs := []Transaction{
		tx(KindExpense, "Food", 1200, "2025-02-01"),
		tx(KindExpense, "Food", 800, "2025-02-02"),
		tx(KindExpense, "Travel", 5000, "2025-02-03"),
		tx(KindIncome, "Food", 99999, "2025-02-04"), // same category name, wrong kind
		tx(KindEMI, "Travel", 11111, "2025-02-05"),
	}
	s := Summarize(txs)

	var breakdownTotal Money
	for _, v := range s.CategoryBreakdown {
		breakdownTotal = breakdownTotal.Add(v)
	}
	if breakdownTotal != s.Expenses {
		t.Errorf("breakdown sum %s != expenses %s", breakdownTotal, s.Expenses)
	}
	if s.CategoryBreakdown["Food"].Cents != 2000 {
		t.Errorf("Food = %s, income amounts must not leak in", s.CategoryBreakdown["Food"])
	}
	if got := s.Income.Sub(s.Expenses).Sub(s.EMIs); got != s.NetSavings {
		t.Errorf("identity broken: %s != %s", got, s.NetSavings)
	}
}

func TestMonthBounds(t *testing.T) {
	cases := []struct {
		year        int
		month       time.Month
		first, last string
	}{
		{2025, time.January, "2025-01-01", "2025-01-31"},
		{2025, time.February, "2025-02-01", "2025-02-28"},
		{2024, time.February, "2024-02-01", "2024-02-29"},
		{2025, time.April, "2025-04-01", "2025-04-30"},
		{2025, time.December, "2025-12-01", "2025-12-31"},
	}
	for _, tc := range cases {
		first, last := MonthBounds(tc.year, tc.month)
		if first.String() != tc.first || last.String() != tc.last {
			t.Errorf("MonthBounds(%d, %s) = %s..%s, want %s..%s",
				tc.year, tc.month, first, last, tc.first, tc.last)
		}
	}
}

func TestMonthsBack(t *testing.T) {
	now := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		back  int
		year  int
		month time.Month
	}{
		{0, 2025, time.February},
		{1, 2025, time.January},
		{2, 2024, time.December},
		{5, 2024, time.September},
	}
	for _, tc := range cases {
		year, month := MonthsBack(now, tc.back)
		if year != tc.year || month != tc.month {
			t.Errorf("MonthsBack(%d) = %d %s, want %d %s", tc.back, year, month, tc.year, tc.month)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(2025, time.January); got != "Jan 2025" {
		t.Errorf("label = %q", got)
	}
	if got := MonthLabel(2024, time.December); got != "Dec 2024" {
		t.Errorf("label = %q", got)
	}
}
