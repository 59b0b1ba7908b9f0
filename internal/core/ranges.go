// Package core provides the ledger domain types and the pure computations
// derived from them: running balances and plot axis ranges.
package core

import "time"

// Axis padding policy. Each side gets a margin of span/rangePadDivisor; when
// the data collapses to a single date or amount the fixed fallback offsets
// are applied first so the axis never has zero width.
const (
	rangePadDivisor = 10

	degenerateDatePad     = 24 * time.Hour
	degenerateAmountCents = int64(100 * 100) // ±100 currency units
)

// Bounds holds the extreme values of a filtered transaction set.
type Bounds struct {
	MinDate   Date
	MaxDate   Date
	MinAmount Money
	MaxAmount Money
}

// Range is a padded axis interval. Date ranges are expressed in Unix seconds
// so they can be handed straight to a date/time axis ticker.
type Range struct {
	Start float64
	End   float64
}

// Width returns the extent of the interval.
func (r Range) Width() float64 {
	return r.End - r.Start
}

// DateRange derives the x-axis interval for the given date bounds. Equal
// bounds are spread to a two-day span before the proportional margin is
// applied.
func DateRange(min, max Date) Range {
	if min.Equal(max.Time) {
		min = Date{Time: min.Add(-degenerateDatePad)}
		max = Date{Time: max.Add(degenerateDatePad)}
	}
	lo := float64(min.Unix())
	hi := float64(max.Unix())
	margin := (hi - lo) / rangePadDivisor
	return Range{Start: lo - margin, End: hi + margin}
}

// AmountRange derives the y-axis interval for the given amount bounds, in
// currency units. Equal bounds are spread by the fixed offset before the
// proportional margin is applied.
func AmountRange(min, max Money) Range {
	if min.Cents == max.Cents {
		min.Cents -= degenerateAmountCents
		max.Cents += degenerateAmountCents
	}
	lo := min.Units()
	hi := max.Units()
	margin := (hi - lo) / rangePadDivisor
	return Range{Start: lo - margin, End: hi + margin}
}
