package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finledger/internal/core"
	"finledger/internal/metrics"
	"finledger/internal/ports"
)

// StatementProcessor closes card statements once their statement day has
// been reached in a month that has no archived statement yet.
type StatementProcessor struct {
	cards    ports.CardStore
	service  *CardService
	checker  DuenessChecker
	metrics  *metrics.Collector
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewStatementProcessor(cards ports.CardStore, service *CardService, interval time.Duration, m *metrics.Collector) *StatementProcessor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StatementProcessor{
		cards:    cards,
		service:  service,
		checker:  MonthlyChecker{},
		metrics:  m,
		interval: interval,
		now:      time.Now,
	}
}

// ProcessDueStatements archives every due statement and returns how many
// were closed. Failures on single cards are logged and skipped.
func (p *StatementProcessor) ProcessDueStatements(ctx context.Context, now time.Time) (int, error) {
	if p.cards == nil || p.service == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	users, err := p.cards.ListCardUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list card users: %w", err)
	}

	month := core.FormatMonthYear(now)
	closed := 0
	checked := 0
	for _, user := range users {
		cards, err := p.cards.ListCards(ctx, user)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list cards", "user", user, "error", err)
			continue
		}
		for _, c := range cards {
			checked++
			if !c.HasBill() {
				continue
			}
			last, err := p.lastClosed(ctx, user, c.ID)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to read statements", "card_id", c.ID, "error", err)
				continue
			}
			if !p.checker.IsDue(last, now, c.StatementDay) {
				continue
			}
			if _, err := p.service.CloseStatement(ctx, user, c.ID, month); err != nil {
				slog.ErrorContext(ctx, "Failed to close statement",
					"card_id", c.ID,
					"statement_month", month,
					"error", err)
				continue
			}
			closed++
			p.metrics.IncStatementsClosed()
		}
	}

	slog.InfoContext(ctx, "Statement processing complete",
		"closed", closed,
		"total_checked", checked,
		"statement_month", month)
	return closed, nil
}

// lastClosed returns the month of the newest archived statement.
func (p *StatementProcessor) lastClosed(ctx context.Context, user, cardID string) (time.Time, error) {
	stmts, err := p.cards.ListStatements(ctx, user, cardID)
	if err != nil {
		return time.Time{}, err
	}
	var last time.Time
	for _, st := range stmts {
		t, err := core.ParseMonthYear(st.Month)
		if err != nil {
			continue
		}
		if t.After(last) {
			last = t
		}
	}
	return last, nil
}

// Start runs ProcessDueStatements immediately and then every interval.
// Returns an error if already running.
func (p *StatementProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("statement processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Statement processor started", "interval", p.interval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to end.
func (p *StatementProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Statement processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Statement processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *StatementProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Done is closed when the loop exits.
func (p *StatementProcessor) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doneCh
}

func (p *StatementProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *StatementProcessor) tick(ctx context.Context) {
	if _, err := p.ProcessDueStatements(ctx, p.now()); err != nil {
		slog.ErrorContext(ctx, "Statement processing failed", "error", err)
	}
}
