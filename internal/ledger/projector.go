package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budgetledger/internal/core"
)

// TableProjection is the running-balance table for the active table filter.
type TableProjection struct {
	Title string
	Rows  []core.BalanceEntry
}

// PlotPoint is one scatter-plot marker.
type PlotPoint struct {
	Date   core.Date
	Amount core.Money
}

// PlotProjection is the scatter plot for the active plot filter. Empty is set
// when the filter matches nothing; Points and the ranges are then zero-valued
// and must not be rendered.
type PlotProjection struct {
	Title       string
	Points      []PlotPoint
	DateRange   core.Range
	AmountRange core.Range
	Empty       bool
}

// Projector derives the table and plot views from a store. The two filters
// are independent: filtering the table never affects the plot. Every view
// call recomputes from the store's current contents.
type Projector struct {
	store Store

	mu          sync.Mutex
	tableFilter core.Filter
	plotFilter  core.Filter
}

func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// SetTableFilter applies a normalized filter to the table view.
func (p *Projector) SetTableFilter(f core.Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tableFilter = f.Normalize()
}

// ClearTableFilter resets the table view to match all transactions.
func (p *Projector) ClearTableFilter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tableFilter = core.Filter{}
}

// TableFilter returns the active table filter.
func (p *Projector) TableFilter() core.Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tableFilter
}

// SetPlotFilter applies a normalized filter to the plot view.
func (p *Projector) SetPlotFilter(f core.Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plotFilter = f.Normalize()
}

// ClearPlotFilter resets the plot view to match all transactions.
func (p *Projector) ClearPlotFilter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plotFilter = core.Filter{}
}

// PlotFilter returns the active plot filter.
func (p *Projector) PlotFilter() core.Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plotFilter
}

// TableView materializes the running-balance table for the active table
// filter.
func (p *Projector) TableView(ctx context.Context) (TableProjection, error) {
	f := p.TableFilter()
	txs, err := p.store.Query(ctx, f)
	if err != nil {
		return TableProjection{}, fmt.Errorf("query table view: %w", err)
	}
	return TableProjection{
		Title: f.Title(),
		Rows:  core.WithRunningBalance(txs),
	}, nil
}

// PlotView materializes the scatter plot and its padded axis ranges for the
// active plot filter.
func (p *Projector) PlotView(ctx context.Context) (PlotProjection, error) {
	f := p.PlotFilter()

	bounds, err := p.store.Aggregate(ctx, f)
	if errors.Is(err, core.ErrEmptySet) {
		return PlotProjection{Title: f.Title(), Empty: true}, nil
	}
	if err != nil {
		return PlotProjection{}, fmt.Errorf("aggregate plot bounds: %w", err)
	}

	txs, err := p.store.Query(ctx, f)
	if err != nil {
		return PlotProjection{}, fmt.Errorf("query plot view: %w", err)
	}

	points := make([]PlotPoint, len(txs))
	for i, tx := range txs {
		points[i] = PlotPoint{Date: tx.Date, Amount: tx.Amount}
	}

	return PlotProjection{
		Title:       f.Title(),
		Points:      points,
		DateRange:   core.DateRange(bounds.MinDate, bounds.MaxDate),
		AmountRange: core.AmountRange(bounds.MinAmount, bounds.MaxAmount),
	}, nil
}
