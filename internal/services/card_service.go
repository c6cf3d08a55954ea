package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"finledger/internal/core"
	"finledger/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardList is a user's cards with the amount still due across them.
type CardList struct {
	Cards            []core.Card     `json:"cards"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

// CardService manages credit cards and their monthly statements.
type CardService struct {
	cards    ports.CardStore
	validate *validator.Validate
	now      func() time.Time
}

func NewCardService(cards ports.CardStore, now func() time.Time) *CardService {
	if now == nil {
		now = time.Now
	}
	return &CardService{cards: cards, validate: newCardValidator(), now: now}
}

func newCardValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("bank", func(fl validator.FieldLevel) bool {
		return core.IsSupportedBank(fl.Field().String())
	})
	return v
}

func (s *CardService) validateCard(c core.Card) error {
	err := s.validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "bank":
		return fmt.Sprintf("%s must be one of the supported banks", field)
	case "min", "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be between 1 and 31", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Add registers a new card. Bill fields on the draft are applied as the
// card's opening bill.
func (s *CardService) Add(ctx context.Context, user string, draft core.Card) (core.Card, error) {
	c := core.Card{
		ID:           uuid.NewString(),
		BankName:     strings.TrimSpace(draft.BankName),
		CardName:     strings.TrimSpace(draft.CardName),
		StatementDay: draft.StatementDay,
		DueDay:       draft.DueDay,
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.validateCard(c); err != nil {
		return core.Card{}, err
	}
	if err := c.ApplyBill(draft.TotalDue, draft.AmountPaid, draft.BillPaid); err != nil {
		return core.Card{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.cards.SaveCard(ctx, user, c); err != nil {
		return core.Card{}, fmt.Errorf("save card: %w", err)
	}
	slog.InfoContext(ctx, "Card added", "user", user, "card_id", c.ID, "bank", c.BankName)
	return c, nil
}

// Edit changes the issuer, name and billing days of a card. The bill is kept.
func (s *CardService) Edit(ctx context.Context, user, id string, patch core.Card) (core.Card, error) {
	c, err := s.Get(ctx, user, id)
	if err != nil {
		return core.Card{}, err
	}
	c.BankName = strings.TrimSpace(patch.BankName)
	c.CardName = strings.TrimSpace(patch.CardName)
	c.StatementDay = patch.StatementDay
	c.DueDay = patch.DueDay
	c.UpdatedAt = s.now().UTC()
	if err := s.validateCard(c); err != nil {
		return core.Card{}, err
	}
	if err := s.cards.SaveCard(ctx, user, c); err != nil {
		return core.Card{}, fmt.Errorf("save card: %w", err)
	}
	return c, nil
}

func (s *CardService) Get(ctx context.Context, user, id string) (core.Card, error) {
	c, err := s.cards.GetCard(ctx, user, id)
	if err != nil {
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (s *CardService) List(ctx context.Context, user string) (CardList, error) {
	cards, err := s.cards.ListCards(ctx, user)
	if err != nil {
		return CardList{}, fmt.Errorf("list cards: %w", err)
	}
	if cards == nil {
		cards = []core.Card{}
	}
	return CardList{Cards: cards, TotalOutstanding: core.TotalOutstanding(cards)}, nil
}

// RecordBill sets the current bill of a card. A paid bill settles the full
// amount due.
func (s *CardService) RecordBill(ctx context.Context, user, id string, totalDue, amountPaid decimal.Decimal, paid bool) (core.Card, error) {
	c, err := s.Get(ctx, user, id)
	if err != nil {
		return core.Card{}, err
	}
	if err := c.ApplyBill(totalDue, amountPaid, paid); err != nil {
		return core.Card{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.cards.SaveCard(ctx, user, c); err != nil {
		return core.Card{}, fmt.Errorf("save card: %w", err)
	}
	slog.InfoContext(ctx, "Card bill recorded",
		"card_id", id,
		"total_due", totalDue.String(),
		"bill_paid", c.BillPaid)
	return c, nil
}

// Statements lists the archived statements of a card, newest first. When
// the current month has not been archived yet and the card carries a bill,
// it is shown as a synthetic statement built from the card.
func (s *CardService) Statements(ctx context.Context, user, id string) ([]core.Statement, error) {
	c, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	stmts, err := s.cards.ListStatements(ctx, user, id)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}

	now := s.now()
	current := core.FormatMonthYear(now)
	present := false
	for _, st := range stmts {
		if st.Month == current {
			present = true
			break
		}
	}
	if !present && c.HasBill() {
		st := c.StatementFor(current, now.UTC())
		st.Synthetic = true
		stmts = append(stmts, st)
	}
	if stmts == nil {
		stmts = []core.Statement{}
	}
	core.SortStatements(stmts)
	return stmts, nil
}

// CloseStatement archives the card's current bill under month, which
// defaults to the current month.
func (s *CardService) CloseStatement(ctx context.Context, user, id, month string) (core.Statement, error) {
	now := s.now()
	if strings.TrimSpace(month) == "" {
		month = core.FormatMonthYear(now)
	}
	at, err := core.ParseMonthYear(month)
	if err != nil {
		return core.Statement{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	month = core.FormatMonthYear(at)

	c, err := s.Get(ctx, user, id)
	if err != nil {
		return core.Statement{}, err
	}
	st := c.StatementFor(month, now.UTC())
	if err := s.cards.SaveStatement(ctx, user, st); err != nil {
		return core.Statement{}, fmt.Errorf("save statement: %w", err)
	}
	slog.InfoContext(ctx, "Statement closed", "card_id", id, "statement_month", month)
	return st, nil
}
