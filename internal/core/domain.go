package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindEMI     Kind = "emi"
)

type (
	// Kind is the closed transaction classification.
	Kind string

	// Date is a calendar date; the time of day is irrelevant and always
	// normalized to midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single ledger record owned by one user.
	Transaction struct {
		ID        int64     `json:"id"`
		OwnerID   int64     `json:"-"`
		Kind      Kind      `json:"type"`
		Category  string    `json:"category"`
		Amount    Money     `json:"amount"`
		Note      string    `json:"note"`
		Date      Date      `json:"date"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// Kinds returns the closed set of valid kinds.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense, KindEMI}
}

func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindEMI:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TransactionInput is the raw creation payload before validation. Amount
// arrives as a decimal string so the boundary keeps full precision.
type TransactionInput struct {
	Kind     string
	Category string
	Amount   string
	Note     string
	Date     string
}

// Normalize validates the input and produces a transaction with defaults
// applied: a missing note stays "", a missing date becomes the current
// date. Checks run in order and short-circuit on the first failure.
func (in TransactionInput) Normalize(now time.Time) (Transaction, error) {
	var missing []string
	if strings.TrimSpace(in.Kind) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Amount) == "" {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return Transaction{}, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	kind := Kind(strings.TrimSpace(in.Kind))
	if !kind.IsValid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, err
	}

	date := DateOf(now)
	if strings.TrimSpace(in.Date) != "" {
		date, err = ParseDate(strings.TrimSpace(in.Date))
		if err != nil {
			return Transaction{}, err
		}
	}

	return Transaction{
		Kind:     kind,
		Category: strings.TrimSpace(in.Category),
		Amount:   amount,
		Note:     strings.TrimSpace(in.Note),
		Date:     date,
	}, nil
}

// TransactionUpdate carries a partial update; nil fields keep their prior
// values. Only supplied fields are re-validated.
type TransactionUpdate struct {
	Kind     *string
	Category *string
	Amount   *string
	Note     *string
	Date     *string
}

// Apply merges the update into an existing transaction, validating each
// supplied field with the same rules as Normalize.
func (u TransactionUpdate) Apply(tx Transaction) (Transaction, error) {
	if u.Kind != nil {
		kind := Kind(strings.TrimSpace(*u.Kind))
		if !kind.IsValid() {
			return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidKind, *u.Kind)
		}
		tx.Kind = kind
	}
	if u.Category != nil {
		category := strings.TrimSpace(*u.Category)
		if category == "" {
			return Transaction{}, fmt.Errorf("%w: category", ErrMissingField)
		}
		tx.Category = category
	}
	if u.Amount != nil {
		amount, err := ParseAmount(*u.Amount)
		if err != nil {
			return Transaction{}, err
		}
		tx.Amount = amount
	}
	if u.Note != nil {
		tx.Note = strings.TrimSpace(*u.Note)
	}
	if u.Date != nil {
		date, err := ParseDate(strings.TrimSpace(*u.Date))
		if err != nil {
			return Transaction{}, err
		}
		tx.Date = date
	}
	return tx, nil
}
