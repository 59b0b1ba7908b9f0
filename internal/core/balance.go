package core

// BalanceEntry pairs a transaction with the running balance up to and
// including it.
type BalanceEntry struct {
	Transaction
	Balance Money
}

// WithRunningBalance computes the cumulative balance over txs in the order
// given, starting from zero. Single forward pass; the input slice is not
// modified. Callers are expected to pass a sequence already ordered by
// (date, id).
func WithRunningBalance(txs []Transaction) []BalanceEntry {
	entries := make([]BalanceEntry, len(txs))
	var sum int64
	for i, t := range txs {
		sum += t.Amount.Cents
		entries[i] = BalanceEntry{Transaction: t, Balance: Money{Cents: sum}}
	}
	return entries
}
