package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/ports"

	"golang.org/x/sync/singleflight"
)

// DashboardService aggregates a user's months into the dashboard summary.
type DashboardService struct {
	months ports.MonthStore
	cache  cache.Cache[core.Summary]
	group  singleflight.Group
	now    func() time.Time

	// generations counts invalidations per user; a computation that raced
	// one does not store its result.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewDashboardService caches summaries in c when it is non-nil.
func NewDashboardService(months ports.MonthStore, c cache.Cache[core.Summary], now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{months: months, cache: c, now: now, generations: make(map[string]uint64)}
}

func dashboardKey(user string, year int) string {
	return fmt.Sprintf("dashboard:%s:%d", user, year)
}

// Summary returns the dashboard of user as of the current month. Concurrent
// misses for the same user share a single computation.
func (s *DashboardService) Summary(ctx context.Context, user string) (core.Summary, error) {
	now := s.now()
	key := dashboardKey(user, now.Year())
	if s.cache != nil {
		if sum, ok := s.cache.Get(key); ok {
			return sum, nil
		}
	}

	gen := s.generation(user)
	flight := fmt.Sprintf("%s#%d", key, gen)
	v, err, shared := s.group.Do(flight, func() (interface{}, error) {
		// Shared by every waiter, so the leader's cancellation must not end it.
		months, err := s.months.ListMonths(context.WithoutCancel(ctx), user)
		if err != nil {
			return nil, fmt.Errorf("list months: %w", err)
		}
		sum := Summarize(months, now)
		if s.cache != nil && s.generation(user) == gen {
			s.cache.Set(key, sum)
		}
		return sum, nil
	})
	if err != nil {
		return core.Summary{}, err
	}
	if shared {
		slog.DebugContext(ctx, "Dashboard computation shared", "user", user)
	}
	return v.(core.Summary), nil
}

// Invalidate drops every cached summary of user.
func (s *DashboardService) Invalidate(user string) {
	s.mu.Lock()
	s.generations[user]++
	s.mu.Unlock()
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix("dashboard:" + user + ":")
}

func (s *DashboardService) generation(user string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[user]
}

// Summarize computes the dashboard for the month containing now.
func Summarize(months []core.MonthRecord, now time.Time) core.Summary {
	sum := core.Summary{Year: now.Year(), Series: []core.MonthTotals{}}
	current := core.FormatMonthYear(now)

	type point struct {
		at     time.Time
		totals core.MonthTotals
	}
	var series []point

	for _, m := range months {
		t := core.TotalsOf(m)
		sum.NetIncome = sum.NetIncome.Add(t.Income)
		sum.NetExpense = sum.NetExpense.Add(t.Expense)
		sum.NetInvestment = sum.NetInvestment.Add(t.Investment)

		if m.MonthYear == current {
			sum.Current = currentMonth(t)
		}
		if at, err := m.Period(); err == nil && at.Year() == now.Year() {
			series = append(series, point{at: at, totals: t})
		}
	}
	if !sum.Current.Found {
		sum.Current = core.CurrentMonth{
			MonthTotals: core.MonthTotals{MonthYear: current},
		}
	}
	sum.NetWorth = sum.NetIncome.Add(sum.NetInvestment).Sub(sum.NetExpense)

	sort.SliceStable(series, func(i, j int) bool { return series[i].at.Before(series[j].at) })
	for _, p := range series {
		sum.Series = append(sum.Series, p.totals)
	}
	return sum
}

func currentMonth(t core.MonthTotals) core.CurrentMonth {
	savings := t.Income.Sub(t.Expense)
	return core.CurrentMonth{
		MonthTotals:    t,
		Found:          true,
		Savings:        savings,
		SavingsRate:    core.SavingsRate(t.Income, t.Expense),
		DisposableCash: savings.Sub(t.Investment),
	}
}
