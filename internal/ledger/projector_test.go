package ledger

import (
	"context"
	"math"
	"testing"

	"budgetledger/internal/core"
	"budgetledger/internal/ledger/memory"
)

func seedScenario(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	add := func(date core.Date, cat, sub string, cents int64) {
		t.Helper()
		if _, err := s.Add(ctx, core.Transaction{Date: date, Category: cat, Subcategory: sub, Amount: core.Money{Cents: cents}}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	add(core.NewDate(2024, 1, 1), "Food", "Groceries", -2000)
	add(core.NewDate(2024, 1, 1), "Food", "Dining", -1500)
	add(core.NewDate(2024, 1, 5), "Pay", "Salary", 200000)
}

func TestTableViewMatchAll(t *testing.T) {
	p := NewProjector(memory.New())
	seedScenario(t, p.store)

	view, err := p.TableView(context.Background())
	if err != nil {
		t.Fatalf("table view: %v", err)
	}
	if view.Title != "All Transactions" {
		t.Fatalf("title %q", view.Title)
	}
	want := []int64{-2000, -3500, 196500}
	if len(view.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(view.Rows), len(want))
	}
	for i, w := range want {
		if view.Rows[i].Balance.Cents != w {
			t.Fatalf("row %d balance %d, want %d", i, view.Rows[i].Balance.Cents, w)
		}
	}
}

func TestTableViewFiltered(t *testing.T) {
	p := NewProjector(memory.New())
	seedScenario(t, p.store)

	p.SetTableFilter(core.Filter{Category: "Food"})
	view, err := p.TableView(context.Background())
	if err != nil {
		t.Fatalf("table view: %v", err)
	}
	if view.Title != "Food Transactions" {
		t.Fatalf("title %q", view.Title)
	}
	want := []int64{-2000, -3500}
	if len(view.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(view.Rows), len(want))
	}
	for i, w := range want {
		if view.Rows[i].Balance.Cents != w {
			t.Fatalf("row %d balance %d, want %d", i, view.Rows[i].Balance.Cents, w)
		}
	}
}

func TestFiltersAreIndependent(t *testing.T) {
	p := NewProjector(memory.New())
	seedScenario(t, p.store)
	ctx := context.Background()

	p.SetTableFilter(core.Filter{Category: "Food"})

	plot, err := p.PlotView(ctx)
	if err != nil {
		t.Fatalf("plot view: %v", err)
	}
	if plot.Title != "All Transactions" {
		t.Fatalf("table filter leaked into plot: title %q", plot.Title)
	}
	if len(plot.Points) != 3 {
		t.Fatalf("plot should see all 3 transactions, got %d", len(plot.Points))
	}

	p.SetPlotFilter(core.Filter{Category: "Pay", Subcategory: "Salary"})
	table, err := p.TableView(ctx)
	if err != nil {
		t.Fatalf("table view: %v", err)
	}
	if table.Title != "Food Transactions" {
		t.Fatalf("plot filter leaked into table: title %q", table.Title)
	}
}

func TestSetFilterNormalizes(t *testing.T) {
	p := NewProjector(memory.New())
	p.SetTableFilter(core.Filter{Subcategory: "Dining"})
	if p.TableFilter().IsActive() {
		t.Fatal("bare subcategory must normalize to the empty filter")
	}
}

func TestClearFilter(t *testing.T) {
	p := NewProjector(memory.New())
	p.SetPlotFilter(core.Filter{Category: "Food", Subcategory: "Dining"})
	if !p.PlotFilter().IsActive() {
		t.Fatal("filter should be active after set")
	}
	p.ClearPlotFilter()
	if p.PlotFilter().IsActive() {
		t.Fatal("filter should be inactive after clear")
	}
	if got := p.PlotFilter().Title(); got != "All Transactions" {
		t.Fatalf("title after clear %q", got)
	}
}

func TestPlotViewRanges(t *testing.T) {
	p := NewProjector(memory.New())
	seedScenario(t, p.store)

	plot, err := p.PlotView(context.Background())
	if err != nil {
		t.Fatalf("plot view: %v", err)
	}
	if plot.Empty {
		t.Fatal("plot should not be empty")
	}
	// Amounts span -20..2000, margin 202: (-222, 2202).
	if math.Abs(plot.AmountRange.Start-(-222)) > 1e-6 || math.Abs(plot.AmountRange.End-2202) > 1e-6 {
		t.Fatalf("amount range (%v, %v)", plot.AmountRange.Start, plot.AmountRange.End)
	}
	if plot.DateRange.Width() <= 0 {
		t.Fatal("date range must have positive width")
	}
	// Points keep the (date, id) order.
	if plot.Points[0].Amount.Cents != -2000 || plot.Points[2].Amount.Cents != 200000 {
		t.Fatalf("points out of order: %+v", plot.Points)
	}
}

func TestPlotViewEmptySet(t *testing.T) {
	p := NewProjector(memory.New())
	seedScenario(t, p.store)

	p.SetPlotFilter(core.Filter{Category: "Rent"})
	plot, err := p.PlotView(context.Background())
	if err != nil {
		t.Fatalf("empty set must not be an error: %v", err)
	}
	if !plot.Empty {
		t.Fatal("expected empty projection")
	}
	if plot.Title != "Rent Transactions" {
		t.Fatalf("title %q", plot.Title)
	}
	if len(plot.Points) != 0 {
		t.Fatalf("expected no points, got %d", len(plot.Points))
	}
}
