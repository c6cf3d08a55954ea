package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income     Category = "income"
	Expense    Category = "expense"
	Investment Category = "investment"
)

// Investment types accepted on investment line items.
const (
	InvestUSStock  = "usStock"
	InvestUSBond   = "usBond"
	InvestIndStock = "indStock"
	InvestIndBond  = "indBond"
	InvestGold     = "gold"
	InvestFixed    = "fixed"
	InvestOthers   = "others"
)

// MonthYearLayout is the layout of a month key, e.g. "October 2026".
const MonthYearLayout = "January 2006"

type (
	// Category names a collection inside a snapshot.
	Category string

	// Snapshot groups line items by category.
	Snapshot map[Category][]LineItem

	// MonthRecord is the stored ledger of one calendar month.
	MonthRecord struct {
		ID                   string          `json:"id"`
		MonthYear            string          `json:"monthYear"`
		Income               []LineItem      `json:"income"`
		Expense              []LineItem      `json:"expense"`
		Investment           []LineItem      `json:"investment"`
		CumulativeIncome     decimal.Decimal `json:"cumulativeIncome"`
		CumulativeExpense    decimal.Decimal `json:"cumulativeExpense"`
		CumulativeInvestment decimal.Decimal `json:"cumulativeInvestment"`
		Version              int64           `json:"version"`
		Timestamp            time.Time       `json:"timestamp"`
	}

	// ArchiveEntry is an append-only record of the changes applied by one update.
	ArchiveEntry struct {
		Key        string    `json:"key"`
		MonthID    string    `json:"monthId"`
		MonthYear  string    `json:"monthYear"`
		RecordedAt time.Time `json:"recordedAt"`
		Changes    Delta     `json:"changes"`
	}
)

var (
	ErrInvalidMonthYear      = errors.New("invalid month year")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrNegativeAmount        = errors.New("negative amount")
	ErrInvalidInvestmentType = errors.New("invalid investment type")
)

// Categories lists the collections a month record carries, in display order.
func Categories() []Category {
	return []Category{Income, Expense, Investment}
}

// IsInvestmentType reports whether t is one of the supported investment types.
func IsInvestmentType(t string) bool {
	switch t {
	case InvestUSStock, InvestUSBond, InvestIndStock, InvestIndBond, InvestGold, InvestFixed, InvestOthers:
		return true
	}
	return false
}

// IsUSInvestment reports whether the investment type carries a USD amount.
func IsUSInvestment(t string) bool {
	return strings.HasPrefix(t, "us")
}

// ParseMonthYear parses a "Month YYYY" key.
func ParseMonthYear(s string) (time.Time, error) {
	t, err := time.Parse(MonthYearLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidMonthYear
	}
	return t, nil
}

// FormatMonthYear returns the month key for t.
func FormatMonthYear(t time.Time) string {
	return t.Format(MonthYearLayout)
}

// Snapshot exposes the record's collections keyed by category.
func (m MonthRecord) Snapshot() Snapshot {
	return Snapshot{
		Income:     m.Income,
		Expense:    m.Expense,
		Investment: m.Investment,
	}
}

// Items returns the collection for c.
func (m MonthRecord) Items(c Category) []LineItem {
	switch c {
	case Income:
		return m.Income
	case Expense:
		return m.Expense
	case Investment:
		return m.Investment
	}
	return nil
}

// Period returns the first instant of the record's month.
func (m MonthRecord) Period() (time.Time, error) {
	return ParseMonthYear(m.MonthYear)
}

// Validate checks the month key, the amounts and the investment rows.
func (m MonthRecord) Validate() error {
	if _, err := ParseMonthYear(m.MonthYear); err != nil {
		return err
	}
	for _, c := range Categories() {
		for _, it := range m.Items(c) {
			if it.RawAmount() {
				return ErrInvalidAmount
			}
			if it.Amount.Valid && it.Amount.Decimal.IsNegative() {
				return ErrNegativeAmount
			}
		}
	}
	for _, it := range m.Investment {
		if !IsInvestmentType(it.Type) {
			return ErrInvalidInvestmentType
		}
	}
	return nil
}

// Total sums the amounts of items, treating absent amounts as zero.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Amount.Valid {
			sum = sum.Add(it.Amount.Decimal)
		}
	}
	return sum
}

// FilterValidRows drops rows that carry neither an amount nor remarks.
func FilterValidRows(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		_, rawRemarks := it.Attrs[FieldRemarks]
		if it.Amount.Valid || it.RawAmount() || rawRemarks || strings.TrimSpace(it.Remarks) != "" {
			out = append(out, it)
		}
	}
	return out
}

// UserKey derives the storage key for an account email.
func UserKey(email string) string {
	return strings.ReplaceAll(strings.TrimSpace(email), ".", "_")
}

// Clone returns a deep copy of the record's collections.
func (m MonthRecord) Clone() MonthRecord {
	out := m
	out.Income = cloneItems(m.Income)
	out.Expense = cloneItems(m.Expense)
	out.Investment = cloneItems(m.Investment)
	return out
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
