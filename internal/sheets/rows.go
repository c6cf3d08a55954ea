package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"finledger/internal/core"

	"github.com/shopspring/decimal"
)

// HistoryHeader names the columns written by HistoryRows.
var HistoryHeader = []any{
	"Archive Key", "Month", "User", "Category", "Change",
	"Remarks", "Amount", "Previous Amount", "Type", "ID",
}

// HistoryRows flattens an archive entry into one spreadsheet row per change
// record. Categories are written in name order and records keep their
// reconciliation order.
func HistoryRows(user string, entry core.ArchiveEntry) [][]any {
	var rows [][]any
	for _, cat := range entry.Changes.Categories() {
		for _, r := range entry.Changes[cat] {
			rows = append(rows, []any{
				entry.Key,
				entry.MonthYear,
				user,
				string(cat),
				string(r.Kind),
				r.Remarks,
				cell(r.Amount),
				previousCell(r),
				r.Type,
				r.ID,
			})
		}
	}
	return rows
}

// SheetName returns "<year> <base>" for the year of the tracked month,
// falling back to the year the entry was recorded.
func SheetName(base string, entry core.ArchiveEntry) string {
	year := entry.RecordedAt.Year()
	if t, err := core.ParseMonthYear(entry.MonthYear); err == nil {
		year = t.Year()
	}
	return YearPrefixedName(base, year)
}

// YearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func YearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func cell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return core.FormatAmount(d.Decimal)
}

func previousCell(r core.ChangeRecord) string {
	if r.Kind != core.Updated {
		return ""
	}
	return cell(r.PreviousAmount)
}
