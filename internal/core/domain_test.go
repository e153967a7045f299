package core

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func TestNormalizeDefaults(t *testing.T) {
	in := TransactionInput{Kind: "expense", Category: "Groceries", Amount: "42.50"}
	tx, err := in.Normalize(testNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Note != "" {
		t.Errorf("note should default to empty, got %q", tx.Note)
	}
	if tx.Date.String() != "2025-03-15" {
		t.Errorf("date should default to now, got %s", tx.Date)
	}
	if tx.Amount.Cents != 4250 {
		t.Errorf("amount = %d cents, want 4250", tx.Amount.Cents)
	}
}

func TestNormalizeMissingFields(t *testing.T) {
	cases := []struct {
		name string
		in   TransactionInput
	}{
		{"all missing", TransactionInput{}},
		{"no kind", TransactionInput{Category: "Food", Amount: "10"}},
		{"no category", TransactionInput{Kind: "expense", Amount: "10"}},
		{"no amount", TransactionInput{Kind: "expense", Category: "Food"}},
		{"blank amount", TransactionInput{Kind: "expense", Category: "Food", Amount: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.in.Normalize(testNow); !errors.Is(err, ErrMissingField) {
				t.Errorf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestNormalizeInvalidKind(t *testing.T) {
	for _, kind := range []string{"transfer", "INCOME", "emi ", "salary"} {
		in := TransactionInput{Kind: kind, Category: "c", Amount: "1"}
		if kind == "emi " {
			// surrounding whitespace is trimmed, so this one is valid
			if _, err := in.Normalize(testNow); err != nil {
				t.Errorf("kind %q: expected ok, got %v", kind, err)
			}
			continue
		}
		if _, err := in.Normalize(testNow); !errors.Is(err, ErrInvalidKind) {
			t.Errorf("kind %q: expected ErrInvalidKind", kind)
		}
	}
}

func TestNormalizeInvalidAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5", "0.00", "abc", "1.2.3"} {
		for _, kind := range Kinds() {
			in := TransactionInput{Kind: kind.String(), Category: "c", Amount: amount}
			if _, err := in.Normalize(testNow); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("kind %s amount %q: expected ErrInvalidAmount", kind, amount)
			}
		}
	}
}

func TestNormalizeBadDate(t *testing.T) {
	in := TransactionInput{Kind: "income", Category: "Salary", Amount: "100", Date: "15/03/2025"}
	if _, err := in.Normalize(testNow); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestApplyPartialUpdate(t *testing.T) {
	base := Transaction{
		ID:       7,
		OwnerID:  1,
		Kind:     KindExpense,
		Category: "Food & Dining",
		Amount:   Money{Cents: 2500},
		Note:     "lunch",
		Date:     NewDate(2025, 1, 15),
	}

	t.Run("note only leaves the rest unchanged", func(t *testing.T) {
		updated, err := TransactionUpdate{Note: strPtr("team lunch")}.Apply(base)
		if err != nil {
			t.Fatalf("expected ok, got %v", err)
		}
		if updated.Note != "team lunch" {
			t.Errorf("note = %q", updated.Note)
		}
		if updated.Kind != base.Kind || updated.Category != base.Category ||
			updated.Amount != base.Amount || !updated.Date.Equal(base.Date.Time) {
			t.Errorf("untouched fields changed: %+v", updated)
		}
	})

	t.Run("note can be cleared", func(t *testing.T) {
		updated, err := TransactionUpdate{Note: strPtr("")}.Apply(base)
		if err != nil {
			t.Fatalf("expected ok, got %v", err)
		}
		if updated.Note != "" {
			t.Errorf("note = %q, want empty", updated.Note)
		}
	})

	t.Run("supplied fields are validated", func(t *testing.T) {
		if _, err := (TransactionUpdate{Kind: strPtr("bogus")}).Apply(base); !errors.Is(err, ErrInvalidKind) {
			t.Errorf("expected ErrInvalidKind, got %v", err)
		}
		if _, err := (TransactionUpdate{Amount: strPtr("-1")}).Apply(base); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
		if _, err := (TransactionUpdate{Category: strPtr("  ")}).Apply(base); !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})
}
