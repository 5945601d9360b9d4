// Package dashboard computes the summary shown on the landing page.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"billgen/internal/apperr"
	"billgen/internal/models"
	"billgen/internal/store"
)

const (
	revenueMonths = 6
	recentLimit   = 5
)

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type Summary struct {
	TotalBills       int64          `json:"totalBills"`
	RevenueThisMonth float64        `json:"revenueThisMonth"`
	OutstandingBills int64          `json:"outstandingBills"`
	MonthlyRevenue   []MonthRevenue `json:"monthlyRevenue"`
	RecentBills      []models.Bill  `json:"recentBills"`
	RevenueChange    float64        `json:"revenueChange"`
}

type Aggregator struct {
	bills store.BillStore
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.loc = loc }
}

func NewAggregator(bills store.BillStore, opts ...Option) *Aggregator {
	a := &Aggregator{bills: bills, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// monthStart returns the first instant of the month offset months away
// from t's month.
func monthStart(t time.Time, offset int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
}

// Summary reads across every bill regardless of owner.
func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	now := a.now().In(a.loc)
	summary := &Summary{MonthlyRevenue: make([]MonthRevenue, revenueMonths)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := a.bills.CountBills(gctx, store.BillFilter{})
		summary.TotalBills = n
		return err
	})
	g.Go(func() error {
		n, err := a.bills.CountBills(gctx, store.BillFilter{
			Statuses: []string{models.BillStatusUnpaid, models.BillStatusOverdue},
		})
		summary.OutstandingBills = n
		return err
	})
	g.Go(func() error {
		recent, err := a.bills.FindBills(gctx, store.BillFilter{Limit: recentLimit})
		summary.RecentBills = recent
		return err
	})
	for i := 0; i < revenueMonths; i++ {
		i := i
		start := monthStart(now, i-(revenueMonths-1))
		end := monthStart(start, 1)
		g.Go(func() error {
			revenue, err := a.bills.SumGrandTotal(gctx, store.BillFilter{
				Statuses:     []string{models.BillStatusPaid},
				BillDateFrom: &start,
				BillDateTo:   &end,
			})
			summary.MonthlyRevenue[i] = MonthRevenue{Month: start.Format("Jan"), Revenue: revenue}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("dashboard query failed", err)
	}

	summary.RevenueThisMonth = summary.MonthlyRevenue[revenueMonths-1].Revenue
	summary.RevenueChange = percentChange(summary.RevenueThisMonth, summary.MonthlyRevenue[revenueMonths-2].Revenue)
	if summary.RecentBills == nil {
		summary.RecentBills = []models.Bill{}
	}
	return summary, nil
}

// percentChange is 0 when there is no positive baseline to compare with.
func percentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
