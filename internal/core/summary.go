package core

import "github.com/shopspring/decimal"

// MonthTotals is the per-category sum of one month.
type MonthTotals struct {
	MonthYear    string                     `json:"monthYear"`
	Income       decimal.Decimal            `json:"income"`
	Expense      decimal.Decimal            `json:"expense"`
	Investment   decimal.Decimal            `json:"investment"`
	InvestByType map[string]decimal.Decimal `json:"investmentByType,omitempty"`
}

// CurrentMonth summarises the month the dashboard is opened in.
type CurrentMonth struct {
	MonthTotals
	Found          bool            `json:"found"`
	Savings        decimal.Decimal `json:"savings"`
	SavingsRate    decimal.Decimal `json:"savingsRate"`
	DisposableCash decimal.Decimal `json:"disposableIncome"`
}

// Summary is the aggregate shown on the dashboard.
type Summary struct {
	Current       CurrentMonth    `json:"currentMonth"`
	NetIncome     decimal.Decimal `json:"netIncome"`
	NetExpense    decimal.Decimal `json:"netExpense"`
	NetInvestment decimal.Decimal `json:"netInvestment"`
	NetWorth      decimal.Decimal `json:"netWorth"`
	Year          int             `json:"year"`
	Series        []MonthTotals   `json:"series"`
}

// TotalsOf computes the per-category totals of a record.
func TotalsOf(m MonthRecord) MonthTotals {
	byType := make(map[string]decimal.Decimal)
	for _, it := range m.Investment {
		if it.Amount.Valid {
			byType[it.Type] = byType[it.Type].Add(it.Amount.Decimal)
		}
	}
	return MonthTotals{
		MonthYear:    m.MonthYear,
		Income:       Total(m.Income),
		Expense:      Total(m.Expense),
		Investment:   Total(m.Investment),
		InvestByType: byType,
	}
}

// SavingsRate is savings as a percentage of income, rounded to two decimals.
// It is zero when nothing was saved.
func SavingsRate(income, expense decimal.Decimal) decimal.Decimal {
	savings := income.Sub(expense)
	if !savings.IsPositive() || !income.IsPositive() {
		return decimal.Zero
	}
	return savings.Mul(decimal.NewFromInt(100)).Div(income).Round(2)
}
