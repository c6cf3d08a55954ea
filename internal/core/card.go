package core

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BankOther is the catch-all issuer for banks not in SupportedBanks.
const BankOther = "Other"

// SupportedBanks lists the card issuers the client offers.
var SupportedBanks = []string{
	"HDFC Bank",
	"Axis Bank",
	"ICICI Bank",
	"State Bank of India",
	"Bandhan Bank",
	"Bank Of Baroda",
	"Federal Bank",
	"IDBI Bank",
	"IDFC First Bank",
	"Punjab National Bank",
	"HSBC Bank",
	"AU Small Finance Bank",
	BankOther,
}

var (
	ErrInvalidBank       = errors.New("unsupported bank")
	ErrInvalidBillingDay = errors.New("billing day must be between 1 and 31")
	ErrEmptyCardName     = errors.New("empty card name")
	ErrOverpaid          = errors.New("amount paid exceeds total due")
)

type (
	// Card is a credit card with its current billing cycle.
	Card struct {
		ID           string          `json:"id"`
		BankName     string          `json:"bankName" validate:"required,bank"`
		CardName     string          `json:"cardName" validate:"required,max=100"`
		StatementDay int             `json:"statementDate" validate:"min=1,max=31"`
		DueDay       int             `json:"dueDate" validate:"min=1,max=31"`
		TotalDue     decimal.Decimal `json:"totalDue"`
		AmountPaid   decimal.Decimal `json:"amountPaid"`
		BillPaid     bool            `json:"billPaid"`
		UpdatedAt    time.Time       `json:"updatedAt"`
	}

	// Statement is the archived bill of one card for one month.
	Statement struct {
		CardID     string          `json:"cardId"`
		Month      string          `json:"month"`
		TotalDue   decimal.Decimal `json:"totalDue"`
		AmountPaid decimal.Decimal `json:"amountPaid"`
		BillPaid   bool            `json:"billPaid"`
		ClosedAt   time.Time       `json:"closedAt"`
		Synthetic  bool            `json:"synthetic,omitempty"`
	}
)

// IsSupportedBank reports whether name is a known issuer.
func IsSupportedBank(name string) bool {
	for _, b := range SupportedBanks {
		if b == name {
			return true
		}
	}
	return false
}

// Outstanding is what remains to be paid on the current bill.
func (c Card) Outstanding() decimal.Decimal {
	return c.TotalDue.Sub(c.AmountPaid)
}

// HasBill reports whether a bill has been recorded for the current cycle.
func (c Card) HasBill() bool {
	return !c.TotalDue.IsZero()
}

// ApplyBill records a bill on the card. Marking it paid settles the full amount.
func (c *Card) ApplyBill(totalDue, amountPaid decimal.Decimal, paid bool) error {
	if totalDue.IsNegative() || amountPaid.IsNegative() {
		return ErrNegativeAmount
	}
	if paid {
		amountPaid = totalDue
	}
	if amountPaid.GreaterThan(totalDue) {
		return ErrOverpaid
	}
	c.TotalDue = totalDue
	c.AmountPaid = amountPaid
	c.BillPaid = paid
	return nil
}

// StatementFor snapshots the card's current bill under month.
func (c Card) StatementFor(month string, at time.Time) Statement {
	return Statement{
		CardID:     c.ID,
		Month:      month,
		TotalDue:   c.TotalDue,
		AmountPaid: c.AmountPaid,
		BillPaid:   c.BillPaid,
		ClosedAt:   at,
	}
}

// TotalOutstanding sums what remains due across cards.
func TotalOutstanding(cards []Card) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range cards {
		sum = sum.Add(c.Outstanding())
	}
	return sum
}

// SortStatements orders statements newest month first. Statements whose
// month key does not parse sort last.
func SortStatements(stmts []Statement) {
	sort.SliceStable(stmts, func(i, j int) bool {
		ti, erri := ParseMonthYear(stmts[i].Month)
		tj, errj := ParseMonthYear(stmts[j].Month)
		if erri != nil || errj != nil {
			return erri == nil && errj != nil
		}
		return ti.After(tj)
	})
}
