package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestParseMonthYear(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"October 2026", true},
		{" January 2025 ", true},
		{"Oct 2026", false},
		{"2026-10", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseMonthYear(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
	if got := FormatMonthYear(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)); got != "October 2026" {
		t.Fatalf("unexpected month key %q", got)
	}
}

func TestMonthRecordValidate(t *testing.T) {
	good := MonthRecord{
		MonthYear:  "October 2026",
		Income:     []LineItem{{Remarks: "Salary", Amount: amt("5000")}},
		Investment: []LineItem{{Remarks: "ETF", Type: InvestUSStock, Amount: amt("100")}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []MonthRecord{
		{MonthYear: "nope"},
		{MonthYear: "October 2026", Expense: []LineItem{{Remarks: "x", Amount: amt("-1")}}},
		{MonthYear: "October 2026", Investment: []LineItem{{Remarks: "x", Type: "crypto"}}},
	}
	for i, m := range bads {
		if err := m.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFilterValidRows(t *testing.T) {
	rows := []LineItem{
		{Remarks: "Food", Amount: amt("10")},
		{Remarks: "   "},
		{Amount: amt("5")},
		{},
	}
	got := FilterValidRows(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Remarks != "Food" || !got[1].Amount.Valid {
		t.Fatalf("unexpected rows kept: %+v", got)
	}
}

func TestTotalIgnoresAbsentAmounts(t *testing.T) {
	total := Total([]LineItem{{Amount: amt("10.5")}, {Remarks: "pending"}, {Amount: amt("4.5")}})
	if !total.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %s", total)
	}
}

func TestUserKey(t *testing.T) {
	if got := UserKey("jane.doe@mail.example.com"); got != "jane_doe@mail_example_com" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLineItemJSONRoundTripKeepsAttributes(t *testing.T) {
	in := []byte(`{"id":"a1","remarks":"Food","amount":"100","type":"groceries","note":"weekly","qty":3}`)
	var it LineItem
	if err := json.Unmarshal(in, &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.ID != "a1" || it.Remarks != "Food" || it.Type != "groceries" {
		t.Fatalf("typed fields not decoded: %+v", it)
	}
	if !it.Amount.Valid || !it.Amount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("amount not decoded: %+v", it.Amount)
	}
	if v, ok := it.Field("note"); !ok || v != "weekly" {
		t.Fatalf("expected note attribute, got %v %v", v, ok)
	}

	out, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if back["note"] != "weekly" || back["qty"] != float64(3) {
		t.Fatalf("pass-through attributes lost: %v", back)
	}
}

func TestLineItemAmountForms(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		want  string
	}{
		{`{"amount":12.5}`, true, "12.5"},
		{`{"amount":"12,5"}`, true, "12.5"},
		{`{"amount":""}`, false, ""},
		{`{"amount":null}`, false, ""},
		{`{}`, false, ""},
	}
	for _, tc := range cases {
		var it LineItem
		if err := json.Unmarshal([]byte(tc.in), &it); err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if it.Amount.Valid != tc.valid {
			t.Fatalf("%s: expected valid=%v", tc.in, tc.valid)
		}
		if tc.valid && it.Amount.Decimal.String() != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.in, tc.want, it.Amount.Decimal)
		}
	}

	var it LineItem
	if err := json.Unmarshal([]byte(`{"amount":"ten"}`), &it); err != nil {
		t.Fatalf("non-numeric amount must decode: %v", err)
	}
	if it.Amount.Valid || !it.RawAmount() {
		t.Fatalf("expected raw amount, got %+v", it)
	}
	if v, ok := it.Field(FieldAmount); !ok || v != "ten" {
		t.Fatalf("Field(amount) = %v %v, want ten", v, ok)
	}
	out, _ := json.Marshal(it)
	if !strings.Contains(string(out), `"amount":"ten"`) {
		t.Fatalf("raw amount not written back: %s", out)
	}
}

func TestLineItemKeepsUntypedWellKnownFields(t *testing.T) {
	var it LineItem
	if err := json.Unmarshal([]byte(`{"id":7,"remarks":42,"type":true,"amount":150}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.ID != "" || it.Remarks != "" {
		t.Fatalf("non-string values must not fill typed fields: %+v", it)
	}
	if v, ok := it.Field(FieldID); !ok || v != json.Number("7") {
		t.Fatalf("Field(id) = %v %v", v, ok)
	}
	if v, ok := it.Field(FieldRemarks); !ok || v != json.Number("42") {
		t.Fatalf("Field(remarks) = %v %v", v, ok)
	}

	out, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if back["id"] != float64(7) || back["remarks"] != float64(42) || back["type"] != true || back["amount"] != float64(150) {
		t.Fatalf("values not passed through: %s", out)
	}
}

func TestMonthValidateRejectsRawAmount(t *testing.T) {
	var it LineItem
	if err := json.Unmarshal([]byte(`{"remarks":"Food","amount":"n/a"}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := MonthRecord{MonthYear: "October 2026", Expense: []LineItem{it}}
	if err := m.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("Validate() = %v, want ErrInvalidAmount", err)
	}
}

func TestChangeRecordJSON(t *testing.T) {
	rec := ChangeRecord{
		LineItem:       LineItem{Remarks: "Food", Type: "groceries", Amount: amt("150")},
		Kind:           Updated,
		PreviousAmount: amt("100"),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["changeKind"] != "UPDATED" || m["type"] != "groceries" || m["previousAmount"] != float64(100) || m["amount"] != float64(150) {
		t.Fatalf("unexpected encoding: %s", raw)
	}

	var back ChangeRecord
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if back.Kind != Updated || !back.PreviousAmount.Decimal.Equal(decimal.NewFromInt(100)) || back.Attrs != nil {
		t.Fatalf("unexpected decoded record: %+v", back)
	}

	created, _ := json.Marshal(ChangeRecord{LineItem: LineItem{Remarks: "x"}, Kind: Created})
	if err := json.Unmarshal(created, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["previousAmount"]; ok {
		t.Fatalf("created record must not carry previousAmount: %s", created)
	}
}

func TestSavingsRate(t *testing.T) {
	cases := []struct {
		income, expense, want string
	}{
		{"1000", "250", "75"},
		{"3000", "1000", "66.67"},
		{"1000", "1000", "0"},
		{"1000", "1500", "0"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		got := SavingsRate(decimal.RequireFromString(tc.income), decimal.RequireFromString(tc.expense))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%s/%s expected %s, got %s", tc.income, tc.expense, tc.want, got)
		}
	}
}
