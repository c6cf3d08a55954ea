package core

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	Created ChangeKind = "CREATED"
	Updated ChangeKind = "UPDATED"
	Deleted ChangeKind = "DELETED"
)

type (
	// ChangeKind classifies a change record.
	ChangeKind string

	// ChangeRecord is a line item tagged with how it changed between two
	// snapshots. PreviousAmount is only meaningful for Updated records.
	ChangeRecord struct {
		LineItem
		Kind           ChangeKind
		PreviousAmount decimal.NullDecimal
	}

	// Delta maps each category to its ordered change records.
	Delta map[Category][]ChangeRecord
)

// Field shadows LineItem.Field so the change kind is addressable by name.
func (r ChangeRecord) Field(name string) (any, bool) {
	switch name {
	case "changeKind":
		return string(r.Kind), r.Kind != ""
	case "previousAmount":
		if r.Kind != Updated || !r.PreviousAmount.Valid {
			return nil, false
		}
		return r.PreviousAmount.Decimal, true
	}
	return r.LineItem.Field(name)
}

func (r ChangeRecord) MarshalJSON() ([]byte, error) {
	m := r.LineItem.fields()
	m["changeKind"] = r.Kind
	if r.Kind == Updated {
		if r.PreviousAmount.Valid {
			m["previousAmount"] = jsonNumber(r.PreviousAmount.Decimal)
		} else {
			m["previousAmount"] = nil
		}
	}
	return json.Marshal(m)
}

func (r *ChangeRecord) UnmarshalJSON(data []byte) error {
	var item LineItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	out := ChangeRecord{LineItem: item}
	if k, ok := item.Attrs["changeKind"].(string); ok {
		out.Kind = ChangeKind(k)
	}
	if prev, ok := item.Attrs["previousAmount"]; ok && prev != nil {
		raw, err := json.Marshal(prev)
		if err != nil {
			return err
		}
		// A previous amount that is not a number reads back as null.
		out.PreviousAmount, _ = decodeAmount(raw)
	}
	delete(out.Attrs, "changeKind")
	delete(out.Attrs, "previousAmount")
	if len(out.Attrs) == 0 {
		out.Attrs = nil
	}
	*r = out
	return nil
}

// Categories returns the delta's categories sorted by name.
func (d Delta) Categories() []Category {
	out := make([]Category, 0, len(d))
	for c := range d {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Counts tallies the records by kind across every category.
func (d Delta) Counts() map[ChangeKind]int {
	counts := map[ChangeKind]int{Created: 0, Updated: 0, Deleted: 0}
	for _, records := range d {
		for _, r := range records {
			counts[r.Kind]++
		}
	}
	return counts
}

// Empty reports whether no category carries a change.
func (d Delta) Empty() bool {
	for _, records := range d {
		if len(records) > 0 {
			return false
		}
	}
	return true
}
