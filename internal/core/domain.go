package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical textual form for ledger dates. Lexical ordering
// of formatted dates matches chronological ordering, which the storage layer
// relies on when sorting by the (date, id) key.
const DateLayout = "2006/01/02"

type (
	// Date is a calendar date with no time component.
	Date struct {
		time.Time
	}

	// Money holds a signed amount in cents. Negative amounts are expenses,
	// positive amounts are income.
	Money struct {
		Cents int64
	}

	// Transaction is one dated, categorized ledger entry. ID is assigned by
	// the store, is monotonically increasing and never reused.
	Transaction struct {
		ID          int64
		Date        Date
		Category    string
		Subcategory string
		Amount      Money
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrZeroAmount       = errors.New("zero amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptySubcategory = errors.New("empty subcategory")

	// ErrNotFound is returned when an operation references a transaction ID
	// that does not exist in the store.
	ErrNotFound = errors.New("transaction not found")

	// ErrEmptySet is returned by aggregations over a filter that matches no
	// transactions. Callers must treat it as "no data yet", distinct from a
	// zero-valued result.
	ErrEmptySet = errors.New("no matching transactions")
)

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the canonical yyyy/MM/dd form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date in its canonical sortable form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents == 0 {
		return ErrZeroAmount
	}
	return nil
}

// Units returns the amount in whole currency units for display and axis math.
// Use cents for balance arithmetic.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Subcategory) == "" {
		return ErrEmptySubcategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// Less orders transactions by the ledger key: date ascending, then ID
// ascending. The ID tie-break keeps same-day transactions in insertion order
// so running balances are reproducible across redraws.
func (t Transaction) Less(other Transaction) bool {
	if !t.Date.Equal(other.Date.Time) {
		return t.Date.Before(other.Date.Time)
	}
	return t.ID < other.ID
}
