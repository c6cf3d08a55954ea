// Package reconcile computes the changes between two ledger snapshots.
//
// Items are matched across snapshots by an identity field and compared by an
// amount field. For every category present in either snapshot the result
// holds, in order: UPDATED and CREATED records in the order of the current
// snapshot, then DELETED records in the order their identities were first seen
// in the previous snapshot.
//
// When the previous snapshot holds several items with the same identity the
// last one wins, keeping the position of the first. Items without an identity
// share a single bucket. CheckIdentities reports both situations for callers
// that prefer to reject such input.
package reconcile

import (
	"finledger/internal/core"
)

const (
	DefaultIdentityField = core.FieldRemarks
	DefaultAmountField   = core.FieldAmount
)

type options struct {
	identityField string
	amountField   string
}

// Option configures field selection.
type Option func(*options)

// WithIdentityField selects the attribute used to match items.
func WithIdentityField(name string) Option {
	return func(o *options) {
		if name != "" {
			o.identityField = name
		}
	}
}

// WithAmountField selects the attribute compared between matched items.
func WithAmountField(name string) Option {
	return func(o *options) {
		if name != "" {
			o.amountField = name
		}
	}
}

func newOptions(opts []Option) options {
	o := options{identityField: DefaultIdentityField, amountField: DefaultAmountField}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reconcile returns, per category, the records describing how current differs
// from previous. It never fails and does not modify its inputs.
func Reconcile(previous, current core.Snapshot, opts ...Option) core.Delta {
	o := newOptions(opts)
	out := make(core.Delta, len(previous)+len(current))
	for c := range previous {
		out[c] = nil
	}
	for c := range current {
		out[c] = nil
	}
	for c := range out {
		out[c] = diffCategory(previous[c], current[c], o)
	}
	return out
}

// diffCategory runs the two phases for one category.
func diffCategory(previous, current []core.LineItem, o options) []core.ChangeRecord {
	lookup := newLookup(len(previous))
	for _, it := range previous {
		lookup.put(identityOf(it, o.identityField), it)
	}

	records := make([]core.ChangeRecord, 0)
	for _, it := range current {
		key := identityOf(it, o.identityField)
		prev, found := lookup.take(key)
		if !found {
			records = append(records, core.ChangeRecord{LineItem: it.Clone(), Kind: core.Created})
			continue
		}
		prevAmount, prevOK := prev.Field(o.amountField)
		curAmount, curOK := it.Field(o.amountField)
		if amountsEqual(prevAmount, prevOK, curAmount, curOK) {
			continue
		}
		records = append(records, core.ChangeRecord{
			LineItem:       it.Clone(),
			Kind:           core.Updated,
			PreviousAmount: toNullDecimal(prevAmount, prevOK),
		})
	}

	lookup.each(func(it core.LineItem) {
		records = append(records, core.ChangeRecord{LineItem: it.Clone(), Kind: core.Deleted})
	})
	return records
}
