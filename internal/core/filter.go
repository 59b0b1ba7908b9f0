package core

import "strings"

// Filter narrows a transaction set by category and, optionally, subcategory.
// The zero value matches everything.
type Filter struct {
	Category    string
	Subcategory string
}

// Normalize trims both fields and drops a subcategory given without a
// category. A subcategory filter is only meaningful combined with a category
// filter; the bare-subcategory input is accepted but ignored.
func (f Filter) Normalize() Filter {
	f.Category = strings.TrimSpace(f.Category)
	f.Subcategory = strings.TrimSpace(f.Subcategory)
	if f.Category == "" {
		f.Subcategory = ""
	}
	return f
}

// IsActive reports whether the filter narrows the result set. Mirrors the
// enabled state of a "clear filter" control.
func (f Filter) IsActive() bool {
	return f.Category != ""
}

// Matches reports whether t satisfies the filter predicate.
func (f Filter) Matches(t Transaction) bool {
	if f.Category == "" {
		return true
	}
	if t.Category != f.Category {
		return false
	}
	return f.Subcategory == "" || t.Subcategory == f.Subcategory
}

// Title renders the heading used above the filtered table and plot.
func (f Filter) Title() string {
	switch {
	case f.Category == "":
		return "All Transactions"
	case f.Subcategory == "":
		return f.Category + " Transactions"
	default:
		return f.Category + " - " + f.Subcategory + " Transactions"
	}
}
