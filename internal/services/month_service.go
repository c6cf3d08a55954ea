package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/archive"
	"finledger/internal/core"
	"finledger/internal/metrics"
	"finledger/internal/ports"
	"finledger/internal/reconcile"

	"github.com/google/uuid"
)

// ErrInvalidInput marks errors caused by the caller's payload.
var ErrInvalidInput = errors.New("invalid input")

// maxKeyAttempts bounds the same-second archive key suffixes tried per update.
const maxKeyAttempts = 10

// Publisher announces new archive entries.
type Publisher interface {
	PublishMonthUpdated(ctx context.Context, msg *amqp.MonthUpdatedMessage) error
}

// MonthServiceConfig carries the optional collaborators of MonthService.
type MonthServiceConfig struct {
	Keyer          *archive.Keyer
	StrictIdentity bool
	Metrics        *metrics.Collector
	// OnChange runs after a month of user was created or updated.
	OnChange func(user string)
	Now      func() time.Time
	NewID    func() string
}

// MonthService records months and keeps their change history.
type MonthService struct {
	months    ports.MonthStore
	history   ports.HistoryStore
	publisher Publisher
	keyer     *archive.Keyer
	strict    bool
	metrics   *metrics.Collector
	onChange  func(string)
	now       func() time.Time
	newID     func() string
}

func NewMonthService(months ports.MonthStore, history ports.HistoryStore, publisher Publisher, cfg MonthServiceConfig) *MonthService {
	s := &MonthService{
		months:    months,
		history:   history,
		publisher: publisher,
		keyer:     cfg.Keyer,
		strict:    cfg.StrictIdentity,
		metrics:   cfg.Metrics,
		onChange:  cfg.OnChange,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}
	if s.keyer == nil {
		s.keyer, _ = archive.NewKeyer("")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Create stores a new month. Empty rows are dropped and every line item gets
// a fresh identifier.
func (s *MonthService) Create(ctx context.Context, user string, draft core.MonthRecord) (core.MonthRecord, error) {
	m := draft.Clone()
	m.MonthYear = strings.TrimSpace(m.MonthYear)
	for _, c := range core.Categories() {
		items := core.FilterValidRows(m.Items(c))
		for i := range items {
			items[i].ID = s.newID()
		}
		setItems(&m, c, items)
	}
	if err := m.Validate(); err != nil {
		return core.MonthRecord{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m.ID = s.newID()
	m.Version = 1
	m.Timestamp = s.now().UTC()
	withTotals(&m)

	if err := s.months.CreateMonth(ctx, user, m); err != nil {
		return core.MonthRecord{}, fmt.Errorf("create month: %w", err)
	}

	slog.InfoContext(ctx, "Month created",
		"user", user,
		"month_id", m.ID,
		"month_year", m.MonthYear)
	s.changed(user)
	return m, nil
}

// Update replaces the collections of a month and archives the changes
// relative to the stored version. A non-zero draft version must match the
// stored one. The month key cannot change.
func (s *MonthService) Update(ctx context.Context, user, id string, draft core.MonthRecord) (core.MonthRecord, core.ArchiveEntry, error) {
	prev, err := s.months.GetMonth(ctx, user, id)
	if err != nil {
		return core.MonthRecord{}, core.ArchiveEntry{}, fmt.Errorf("get month: %w", err)
	}
	if draft.Version != 0 && draft.Version != prev.Version {
		s.metrics.ObserveMonthUpdate(metrics.ResultConflict)
		return core.MonthRecord{}, core.ArchiveEntry{}, ports.ErrVersionConflict
	}
	if my := strings.TrimSpace(draft.MonthYear); my != "" && my != prev.MonthYear {
		s.metrics.ObserveMonthUpdate(metrics.ResultRejected)
		return core.MonthRecord{}, core.ArchiveEntry{}, fmt.Errorf("%w: month year cannot change from %q to %q", ErrInvalidInput, prev.MonthYear, my)
	}

	next := draft.Clone()
	next.ID = prev.ID
	next.MonthYear = prev.MonthYear
	for _, c := range core.Categories() {
		items := core.FilterValidRows(next.Items(c))
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = s.newID()
			}
		}
		setItems(&next, c, items)
	}
	if err := next.Validate(); err != nil {
		s.metrics.ObserveMonthUpdate(metrics.ResultRejected)
		return core.MonthRecord{}, core.ArchiveEntry{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if s.strict {
		if err := s.checkIdentities(prev, next); err != nil {
			s.metrics.ObserveMonthUpdate(metrics.ResultRejected)
			return core.MonthRecord{}, core.ArchiveEntry{}, err
		}
	}

	now := s.now()
	next.Version = prev.Version + 1
	next.Timestamp = now.UTC()
	withTotals(&next)

	delta := reconcile.Reconcile(prev.Snapshot(), next.Snapshot())
	entry, err := s.apply(ctx, user, next, prev.Version, now, delta)
	if err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			s.metrics.ObserveMonthUpdate(metrics.ResultConflict)
		} else {
			s.metrics.ObserveMonthUpdate(metrics.ResultError)
		}
		return core.MonthRecord{}, core.ArchiveEntry{}, err
	}
	s.metrics.ObserveMonthUpdate(metrics.ResultOK)
	s.metrics.ObserveDelta(delta)

	counts := delta.Counts()
	slog.InfoContext(ctx, "Month updated",
		"user", user,
		"month_id", next.ID,
		"version", next.Version,
		"archive_key", entry.Key,
		"created", counts[core.Created],
		"updated", counts[core.Updated],
		"deleted", counts[core.Deleted])

	s.publish(ctx, user, entry, next.Version)
	s.changed(user)
	return next, entry, nil
}

// apply writes the record and its archive entry, suffixing the key when
// another update of the same month was archived within the same second.
func (s *MonthService) apply(ctx context.Context, user string, next core.MonthRecord, expected int64, now time.Time, delta core.Delta) (core.ArchiveEntry, error) {
	base := s.keyer.Key(now)
	for n := 0; n < maxKeyAttempts; n++ {
		entry := archive.NewEntry(archive.WithSuffix(base, n), next, now, delta)
		err := s.months.ApplyUpdate(ctx, user, next, expected, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ports.ErrArchiveKeyExists) {
			return core.ArchiveEntry{}, fmt.Errorf("apply update: %w", err)
		}
	}
	return core.ArchiveEntry{}, fmt.Errorf("apply update: %w", ports.ErrArchiveKeyExists)
}

func (s *MonthService) checkIdentities(prev, next core.MonthRecord) error {
	if err := reconcile.CheckIdentities(prev.Snapshot()); err != nil {
		return fmt.Errorf("stored month: %w", err)
	}
	if err := reconcile.CheckIdentities(next.Snapshot()); err != nil {
		return fmt.Errorf("submitted month: %w", err)
	}
	return nil
}

func (s *MonthService) publish(ctx context.Context, user string, entry core.ArchiveEntry, version int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping month update message")
		return
	}
	if err := s.publisher.PublishMonthUpdated(ctx, amqp.NewMonthUpdatedMessage(user, entry, version)); err != nil {
		s.metrics.IncPublishFailures()
		slog.ErrorContext(ctx, "Failed to publish month update message",
			"month_id", entry.MonthID,
			"archive_key", entry.Key,
			"error", err)
	}
}

func (s *MonthService) changed(user string) {
	if s.onChange != nil {
		s.onChange(user)
	}
}

func (s *MonthService) Get(ctx context.Context, user, id string) (core.MonthRecord, error) {
	m, err := s.months.GetMonth(ctx, user, id)
	if err != nil {
		return core.MonthRecord{}, fmt.Errorf("get month: %w", err)
	}
	return m, nil
}

// List returns the user's months, newest month first.
func (s *MonthService) List(ctx context.Context, user string) ([]core.MonthRecord, error) {
	months, err := s.months.ListMonths(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	SortMonths(months)
	return months, nil
}

// History returns the archive entries of a month, newest first.
func (s *MonthService) History(ctx context.Context, user, id string) ([]core.ArchiveEntry, error) {
	entries, err := s.history.ListHistory(ctx, user, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (s *MonthService) HistoryEntry(ctx context.Context, user, id, key string) (core.ArchiveEntry, error) {
	entry, err := s.history.GetHistory(ctx, user, id, key)
	if err != nil {
		return core.ArchiveEntry{}, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

// Diff previews the changes between two snapshots without storing anything.
// With strict set, ambiguous identities are reported instead.
func (s *MonthService) Diff(previous, current core.Snapshot, strict bool, opts ...reconcile.Option) (core.Delta, error) {
	if strict || s.strict {
		if err := reconcile.CheckIdentities(previous, opts...); err != nil {
			return nil, fmt.Errorf("previous: %w", err)
		}
		if err := reconcile.CheckIdentities(current, opts...); err != nil {
			return nil, fmt.Errorf("current: %w", err)
		}
	}
	return reconcile.Reconcile(previous, current, opts...), nil
}

// SortMonths orders records newest month first; unparseable keys sort last.
func SortMonths(months []core.MonthRecord) {
	sort.SliceStable(months, func(i, j int) bool {
		ti, ei := months[i].Period()
		tj, ej := months[j].Period()
		if ei != nil || ej != nil {
			return ei == nil && ej != nil
		}
		return ti.After(tj)
	})
}

func setItems(m *core.MonthRecord, c core.Category, items []core.LineItem) {
	switch c {
	case core.Income:
		m.Income = items
	case core.Expense:
		m.Expense = items
	case core.Investment:
		m.Investment = items
	}
}

func withTotals(m *core.MonthRecord) {
	m.CumulativeIncome = core.Total(m.Income)
	m.CumulativeExpense = core.Total(m.Expense)
	m.CumulativeInvestment = core.Total(m.Investment)
}
