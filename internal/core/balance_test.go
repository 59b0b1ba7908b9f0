package core

import "testing"

func TestWithRunningBalance(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Date: NewDate(2024, 1, 1), Category: "Food", Subcategory: "Groceries", Amount: Money{Cents: -2000}},
		{ID: 2, Date: NewDate(2024, 1, 1), Category: "Food", Subcategory: "Dining", Amount: Money{Cents: -1500}},
		{ID: 3, Date: NewDate(2024, 1, 5), Category: "Pay", Subcategory: "Salary", Amount: Money{Cents: 200000}},
	}

	entries := WithRunningBalance(txs)
	want := []int64{-2000, -3500, 196500}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Balance.Cents != w {
			t.Fatalf("entry %d balance %d, want %d", i, entries[i].Balance.Cents, w)
		}
		if entries[i].ID != txs[i].ID {
			t.Fatalf("entry %d transaction reordered", i)
		}
		if entries[i].Category != txs[i].Category || !entries[i].Date.Equal(txs[i].Date.Time) {
			t.Fatalf("entry %d lost transaction fields", i)
		}
	}
}

// The final balance must equal the arithmetic sum over exactly the input
// records, and repeated invocations must agree.
func TestWithRunningBalanceSumAndIdempotence(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Amount: Money{Cents: 500}},
		{ID: 2, Amount: Money{Cents: -300}},
		{ID: 3, Amount: Money{Cents: 42}},
		{ID: 4, Amount: Money{Cents: -999}},
	}
	var sum int64
	for _, tx := range txs {
		sum += tx.Amount.Cents
	}

	first := WithRunningBalance(txs)
	second := WithRunningBalance(txs)
	if first[len(first)-1].Balance.Cents != sum {
		t.Fatalf("final balance %d, want %d", first[len(first)-1].Balance.Cents, sum)
	}
	for i := range first {
		if first[i].Balance != second[i].Balance {
			t.Fatalf("invocation %d not reproducible at %d", i, i)
		}
	}
}

func TestWithRunningBalanceEmpty(t *testing.T) {
	if entries := WithRunningBalance(nil); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
