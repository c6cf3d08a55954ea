package reconcile

import (
	"encoding/json"
	"errors"
	"testing"

	"finledger/internal/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(remarks, amount string) core.LineItem {
	it := core.LineItem{Remarks: remarks}
	if amount != "" {
		it.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	return it
}

type want struct {
	kind    core.ChangeKind
	remarks string
	amount  string
	prev    string
}

func assertRecords(t *testing.T, got []core.ChangeRecord, expected ...want) {
	t.Helper()
	require.Len(t, got, len(expected))
	for i, w := range expected {
		r := got[i]
		assert.Equal(t, w.kind, r.Kind, "record %d kind", i)
		assert.Equal(t, w.remarks, r.Remarks, "record %d remarks", i)
		if w.amount != "" {
			require.True(t, r.Amount.Valid, "record %d amount", i)
			assert.True(t, r.Amount.Decimal.Equal(decimal.RequireFromString(w.amount)), "record %d amount %s", i, r.Amount.Decimal)
		}
		if w.kind == core.Updated && w.prev != "" {
			require.True(t, r.PreviousAmount.Valid, "record %d previous amount", i)
			assert.True(t, r.PreviousAmount.Decimal.Equal(decimal.RequireFromString(w.prev)), "record %d previous %s", i, r.PreviousAmount.Decimal)
		}
		if w.kind != core.Updated {
			assert.False(t, r.PreviousAmount.Valid, "record %d must not carry a previous amount", i)
		}
	}
}

func TestReconcileIdenticalSnapshotsProduceNoRecords(t *testing.T) {
	snap := core.Snapshot{
		core.Income:  {item("Salary", "5000")},
		core.Expense: {item("Food", "100"), item("Rent", "1200")},
	}
	delta := Reconcile(snap, snap)

	require.Len(t, delta, 2)
	for c, records := range delta {
		assert.NotNil(t, records, "category %s", c)
		assert.Empty(t, records, "category %s", c)
	}
}

func TestReconcilePureAdd(t *testing.T) {
	delta := Reconcile(
		core.Snapshot{core.Expense: {}},
		core.Snapshot{core.Expense: {item("Food", "100"), item("Fuel", "40")}},
	)
	assertRecords(t, delta[core.Expense],
		want{kind: core.Created, remarks: "Food", amount: "100"},
		want{kind: core.Created, remarks: "Fuel", amount: "40"},
	)
}

func TestReconcilePureRemove(t *testing.T) {
	delta := Reconcile(
		core.Snapshot{core.Expense: {item("Food", "100"), item("Fuel", "40")}},
		core.Snapshot{core.Expense: {}},
	)
	assertRecords(t, delta[core.Expense],
		want{kind: core.Deleted, remarks: "Food", amount: "100"},
		want{kind: core.Deleted, remarks: "Fuel", amount: "40"},
	)
}

func TestReconcileAmountOnlyUpdate(t *testing.T) {
	delta := Reconcile(
		core.Snapshot{core.Expense: {item("Food", "100")}},
		core.Snapshot{core.Expense: {item("Food", "150")}},
	)
	assertRecords(t, delta[core.Expense], want{kind: core.Updated, remarks: "Food", amount: "150", prev: "100"})
}

func TestReconcileUnchangedItemIsSkipped(t *testing.T) {
	delta := Reconcile(
		core.Snapshot{core.Expense: {item("Food", "100"), item("Rent", "1200")}},
		core.Snapshot{core.Expense: {item("Food", "100"), item("Rent", "1300")}},
	)
	assertRecords(t, delta[core.Expense], want{kind: core.Updated, remarks: "Rent", amount: "1300", prev: "1200"})
}

func TestReconcileMixedChanges(t *testing.T) {
	previous := core.Snapshot{core.Income: {item("Salary", "5000"), item("Bonus", "1000")}}
	current := core.Snapshot{core.Income: {item("Salary", "5500"), item("Freelance", "800")}}

	assertRecords(t, Reconcile(previous, current)[core.Income],
		want{kind: core.Updated, remarks: "Salary", amount: "5500", prev: "5000"},
		want{kind: core.Created, remarks: "Freelance", amount: "800"},
		want{kind: core.Deleted, remarks: "Bonus", amount: "1000"},
	)
}

func TestReconcileCoversEveryCategory(t *testing.T) {
	previous := core.Snapshot{
		core.Income:  {item("Salary", "5000")},
		core.Expense: {item("Food", "100")},
	}
	current := core.Snapshot{
		core.Expense:    {item("Food", "100")},
		core.Investment: {item("ETF", "300")},
	}
	delta := Reconcile(previous, current)

	assert.ElementsMatch(t, []core.Category{core.Expense, core.Income, core.Investment}, delta.Categories())
	assertRecords(t, delta[core.Income], want{kind: core.Deleted, remarks: "Salary"})
	assertRecords(t, delta[core.Expense])
	assertRecords(t, delta[core.Investment], want{kind: core.Created, remarks: "ETF"})
}

func TestReconcileEmptyInputs(t *testing.T) {
	assert.Empty(t, Reconcile(nil, nil))
	assert.Empty(t, Reconcile(core.Snapshot{}, core.Snapshot{}))
}

func TestReconcileLastWriteWinsOnDuplicatePreviousIdentity(t *testing.T) {
	// The last duplicate supplies the value; the first fixes the position.
	previous := core.Snapshot{core.Expense: {
		item("Food", "100"),
		item("Rent", "1200"),
		item("Food", "300"),
	}}
	current := core.Snapshot{core.Expense: {item("Food", "300")}}

	assertRecords(t, Reconcile(previous, current)[core.Expense],
		want{kind: core.Deleted, remarks: "Rent", amount: "1200"},
	)

	assertRecords(t, Reconcile(previous, core.Snapshot{core.Expense: {}})[core.Expense],
		want{kind: core.Deleted, remarks: "Food", amount: "300"},
		want{kind: core.Deleted, remarks: "Rent", amount: "1200"},
	)
}

func TestReconcileDuplicateCurrentIdentityCreatesSecondOccurrence(t *testing.T) {
	previous := core.Snapshot{core.Expense: {item("Food", "100")}}
	current := core.Snapshot{core.Expense: {item("Food", "100"), item("Food", "50")}}

	assertRecords(t, Reconcile(previous, current)[core.Expense],
		want{kind: core.Created, remarks: "Food", amount: "50"},
	)
}

func TestReconcileAbsentIdentitiesShareOneBucket(t *testing.T) {
	previous := core.Snapshot{core.Expense: {item("", "10"), item("", "20")}}
	current := core.Snapshot{core.Expense: {item("", "20"), item("", "30")}}

	// Both previous rows collapse to the one with amount 20, which the first
	// current row matches; the second current row has no bucket left.
	assertRecords(t, Reconcile(previous, current)[core.Expense],
		want{kind: core.Created, remarks: "", amount: "30"},
	)
}

func TestReconcileAmountAppearingOrDisappearingIsAnUpdate(t *testing.T) {
	delta := Reconcile(
		core.Snapshot{core.Expense: {item("Food", ""), item("Fuel", "40")}},
		core.Snapshot{core.Expense: {item("Food", "25"), item("Fuel", "")}},
	)
	records := delta[core.Expense]
	require.Len(t, records, 2)
	assert.Equal(t, core.Updated, records[0].Kind)
	assert.False(t, records[0].PreviousAmount.Valid)
	assert.Equal(t, core.Updated, records[1].Kind)
	assert.True(t, records[1].PreviousAmount.Decimal.Equal(decimal.NewFromInt(40)))
}

func TestReconcileNumericEquality(t *testing.T) {
	delta := Reconcile(
		core.Snapshot{core.Expense: {item("Food", "100.00")}},
		core.Snapshot{core.Expense: {item("Food", "100")}},
	)
	assert.Empty(t, delta[core.Expense])
}

func TestReconcileCustomFields(t *testing.T) {
	prev := core.LineItem{ID: "a", Remarks: "Groceries", Attrs: map[string]any{"qty": json.Number("2")}}
	cur := core.LineItem{ID: "a", Remarks: "Supermarket", Attrs: map[string]any{"qty": float64(3)}}

	delta := Reconcile(
		core.Snapshot{core.Expense: {prev}},
		core.Snapshot{core.Expense: {cur}},
		WithIdentityField(core.FieldID),
		WithAmountField("qty"),
	)
	records := delta[core.Expense]
	require.Len(t, records, 1)
	assert.Equal(t, core.Updated, records[0].Kind)
	assert.Equal(t, "Supermarket", records[0].Remarks)
	assert.True(t, records[0].PreviousAmount.Decimal.Equal(decimal.NewFromInt(2)))

	// Matching by id, a renamed row with the same amount is not a change.
	cur.Attrs["qty"] = "2"
	delta = Reconcile(core.Snapshot{core.Expense: {prev}}, core.Snapshot{core.Expense: {cur}},
		WithIdentityField(core.FieldID), WithAmountField("qty"))
	assert.Empty(t, delta[core.Expense])
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	shared := map[string]any{"note": "x"}
	previous := core.Snapshot{core.Expense: {{Remarks: "Food", Attrs: shared}}}
	current := core.Snapshot{core.Expense: {}}

	delta := Reconcile(previous, current)
	delta[core.Expense][0].Attrs["note"] = "changed"

	assert.Equal(t, "x", shared["note"])
	assert.Len(t, previous[core.Expense], 1)
}

func TestReconcileKeepsTypeField(t *testing.T) {
	prev := item("Food", "100")
	prev.Type = "groceries"
	cur := item("Food", "150")
	cur.Type = "groceries"

	records := Reconcile(core.Snapshot{core.Expense: {prev}}, core.Snapshot{core.Expense: {cur}})[core.Expense]
	require.Len(t, records, 1)
	assert.Equal(t, "groceries", records[0].Type)
	assert.Equal(t, core.Updated, records[0].Kind)
}

func TestCheckIdentities(t *testing.T) {
	ok := core.Snapshot{
		core.Expense: {item("Food", "1"), item("Rent", "2"), item("", "3")},
		core.Income:  {item("Food", "1")},
	}
	assert.NoError(t, CheckIdentities(ok))

	bad := core.Snapshot{
		core.Expense: {item("Food", "1"), item("Food", "2"), item("", "3"), item("", "4")},
	}
	err := CheckIdentities(bad)
	var idErr *IdentityError
	require.True(t, errors.As(err, &idErr))
	require.Len(t, idErr.Problems, 2)
	assert.Equal(t, IdentityProblem{Category: core.Expense, Identity: "Food", Count: 2}, idErr.Problems[0])
	assert.True(t, idErr.Problems[1].Absent)
	assert.Contains(t, err.Error(), `"Food" appears 2 times`)
}

func decodeSnapshot(t *testing.T, raw string) core.Snapshot {
	t.Helper()
	var s core.Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func TestReconcileNumericIdentityField(t *testing.T) {
	previous := decodeSnapshot(t, `{"expense":[{"id":7,"remarks":"Food","amount":100},{"id":8,"remarks":"Rent","amount":900}]}`)
	current := decodeSnapshot(t, `{"expense":[{"id":7,"remarks":"Groceries","amount":120},{"id":9,"remarks":42,"amount":5}]}`)

	records := Reconcile(previous, current, WithIdentityField(core.FieldID))[core.Expense]
	require.Len(t, records, 3)
	assert.Equal(t, core.Updated, records[0].Kind)
	assert.Equal(t, "Groceries", records[0].Remarks)
	assert.True(t, records[0].PreviousAmount.Decimal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, core.Created, records[1].Kind)
	id, _ := records[1].Field(core.FieldID)
	assert.Equal(t, json.Number("9"), id)
	assert.Equal(t, core.Deleted, records[2].Kind)

	// Numeric remarks match by their text under the default identity field.
	delta := Reconcile(
		decodeSnapshot(t, `{"income":[{"remarks":42,"amount":1}]}`),
		decodeSnapshot(t, `{"income":[{"remarks":42,"amount":1}]}`),
	)
	assert.Empty(t, delta[core.Income])
}

func TestReconcileNonNumericAmountsCompareAsText(t *testing.T) {
	previous := decodeSnapshot(t, `{"expense":[{"remarks":"Gift","amount":"n/a"},{"remarks":"Rent","amount":"tbd"}]}`)
	current := decodeSnapshot(t, `{"expense":[{"remarks":"Gift","amount":"n/a"},{"remarks":"Rent","amount":900}]}`)

	records := Reconcile(previous, current)[core.Expense]
	require.Len(t, records, 1)
	assert.Equal(t, core.Updated, records[0].Kind)
	assert.Equal(t, "Rent", records[0].Remarks)
	assert.False(t, records[0].PreviousAmount.Valid, "a non-numeric previous amount is reported as null")

	raw, err := json.Marshal(records[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"remarks":"Rent","type":"","amount":900,"changeKind":"UPDATED","previousAmount":null}`, string(raw))
}

func TestReconcileEmptyAndMissingIdentityShareOneBucket(t *testing.T) {
	previous := decodeSnapshot(t, `{"expense":[{"remarks":"","amount":10},{"amount":20},{"remarks":null,"amount":30}]}`)
	current := decodeSnapshot(t, `{"expense":[{"amount":30}]}`)

	// The three previous rows collapse into one bucket holding the last value,
	// so the current row is unchanged and nothing is deleted.
	assert.Empty(t, Reconcile(previous, current)[core.Expense])
}
