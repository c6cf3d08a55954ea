// Package storetest holds the behaviour every ports.Store implementation must
// share. Adapters call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"finledger/internal/core"
	"finledger/internal/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore against the store contract. newStore must return an
// empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) ports.Store) {
	t.Run("months", func(t *testing.T) { testMonths(t, newStore(t)) })
	t.Run("apply update", func(t *testing.T) { testApplyUpdate(t, newStore(t)) })
	t.Run("history", func(t *testing.T) { testHistory(t, newStore(t)) })
	t.Run("cards", func(t *testing.T) { testCards(t, newStore(t)) })
	t.Run("users are isolated", func(t *testing.T) { testIsolation(t, newStore(t)) })
}

func month(id, monthYear string) core.MonthRecord {
	return core.MonthRecord{
		ID:        id,
		MonthYear: monthYear,
		Income: []core.LineItem{{
			ID:      id + "-salary",
			Remarks: "Salary",
			Amount:  decimal.NewNullDecimal(decimal.NewFromInt(5000)),
			Attrs:   map[string]any{"source": "employer"},
		}},
		CumulativeIncome: decimal.NewFromInt(5000),
		Version:          1,
		Timestamp:        time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func entry(key string, m core.MonthRecord, at time.Time) core.ArchiveEntry {
	return core.ArchiveEntry{
		Key:        key,
		MonthID:    m.ID,
		MonthYear:  m.MonthYear,
		RecordedAt: at,
		Changes: core.Delta{
			core.Income: {{
				LineItem:       core.LineItem{Remarks: "Salary", Amount: decimal.NewNullDecimal(decimal.NewFromInt(5500))},
				Kind:           core.Updated,
				PreviousAmount: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
			}},
			core.Expense: {},
		},
	}
}

func testMonths(t *testing.T, s ports.Store) {
	ctx := context.Background()
	m := month("m1", "October 2026")
	require.NoError(t, s.CreateMonth(ctx, "u", m))

	err := s.CreateMonth(ctx, "u", month("m2", "October 2026"))
	assert.ErrorIs(t, err, ports.ErrMonthExists)

	got, err := s.GetMonth(ctx, "u", "m1")
	require.NoError(t, err)
	assert.Equal(t, "October 2026", got.MonthYear)
	require.Len(t, got.Income, 1)
	assert.Equal(t, "employer", got.Income[0].Attrs["source"])
	assert.True(t, got.CumulativeIncome.Equal(decimal.NewFromInt(5000)))

	_, err = s.GetMonth(ctx, "u", "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, s.CreateMonth(ctx, "u", month("m0", "September 2026")))
	list, err := s.ListMonths(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func testApplyUpdate(t *testing.T, s ports.Store) {
	ctx := context.Background()
	m := month("m1", "October 2026")
	require.NoError(t, s.CreateMonth(ctx, "u", m))

	next := m
	next.Version = 2
	next.Income = []core.LineItem{{Remarks: "Salary", Amount: decimal.NewNullDecimal(decimal.NewFromInt(5500))}}
	at := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.ApplyUpdate(ctx, "u", next, 1, entry("02-Oct-2026 09:00:00", next, at)))

	got, err := s.GetMonth(ctx, "u", "m1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Version)
	assert.True(t, got.Income[0].Amount.Decimal.Equal(decimal.NewFromInt(5500)))

	stale := next
	stale.Version = 2
	err = s.ApplyUpdate(ctx, "u", stale, 1, entry("02-Oct-2026 09:00:01", stale, at))
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	again := next
	again.Version = 3
	err = s.ApplyUpdate(ctx, "u", again, 2, entry("02-Oct-2026 09:00:00", again, at))
	assert.ErrorIs(t, err, ports.ErrArchiveKeyExists)

	got, err = s.GetMonth(ctx, "u", "m1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Version, "a rejected update must not change the record")

	err = s.ApplyUpdate(ctx, "u", month("nope", "May 2026"), 1, entry("k", month("nope", "May 2026"), at))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func testHistory(t *testing.T, s ports.Store) {
	ctx := context.Background()
	m := month("m1", "October 2026")
	require.NoError(t, s.CreateMonth(ctx, "u", m))

	base := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)
	for i, key := range []string{"02-Oct-2026 09:00:00", "02-Oct-2026 09:05:00", "02-Oct-2026 09:10:00"} {
		next := m
		next.Version = int64(i + 2)
		require.NoError(t, s.ApplyUpdate(ctx, "u", next, int64(i+1), entry(key, next, base.Add(time.Duration(i)*5*time.Minute))))
	}

	history, err := s.ListHistory(ctx, "u", "m1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "02-Oct-2026 09:10:00", history[0].Key)
	assert.Equal(t, "02-Oct-2026 09:00:00", history[2].Key)

	e, err := s.GetHistory(ctx, "u", "m1", "02-Oct-2026 09:05:00")
	require.NoError(t, err)
	require.Len(t, e.Changes[core.Income], 1)
	rec := e.Changes[core.Income][0]
	assert.Equal(t, core.Updated, rec.Kind)
	assert.True(t, rec.PreviousAmount.Decimal.Equal(decimal.NewFromInt(5000)))
	assert.NotNil(t, e.Changes[core.Expense])

	_, err = s.GetHistory(ctx, "u", "m1", "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = s.ListHistory(ctx, "u", "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func testCards(t *testing.T, s ports.Store) {
	ctx := context.Background()
	c := core.Card{
		ID:           "c1",
		BankName:     "HDFC Bank",
		CardName:     "Regalia",
		StatementDay: 12,
		DueDay:       2,
		TotalDue:     decimal.NewFromInt(1200),
		UpdatedAt:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveCard(ctx, "u", c))

	c.AmountPaid = decimal.NewFromInt(200)
	require.NoError(t, s.SaveCard(ctx, "u", c))

	got, err := s.GetCard(ctx, "u", "c1")
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(200)))

	require.NoError(t, s.SaveCard(ctx, "u", core.Card{ID: "c0", BankName: "Axis Bank", CardName: "Ace"}))
	cards, err := s.ListCards(ctx, "u")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Axis Bank", cards[0].BankName)

	users, err := s.ListCardUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u"}, users)

	require.NoError(t, s.SaveStatement(ctx, "u", c.StatementFor("September 2026", c.UpdatedAt)))
	require.NoError(t, s.SaveStatement(ctx, "u", c.StatementFor("October 2026", c.UpdatedAt)))
	require.NoError(t, s.SaveStatement(ctx, "u", c.StatementFor("October 2026", c.UpdatedAt)))

	stmts, err := s.ListStatements(ctx, "u", "c1")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "October 2026", stmts[0].Month)

	err = s.SaveStatement(ctx, "u", core.Statement{CardID: "missing", Month: "October 2026"})
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = s.ListStatements(ctx, "u", "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func testIsolation(t *testing.T, s ports.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateMonth(ctx, "alice", month("m1", "October 2026")))
	require.NoError(t, s.CreateMonth(ctx, "bob", month("m1", "October 2026")))

	_, err := s.GetMonth(ctx, "carol", "m1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	list, err := s.ListMonths(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
