package reconcile

import (
	"encoding/json"
	"fmt"

	"finledger/internal/core"
	"github.com/shopspring/decimal"
)

// identity is a lookup key. Items lacking the identity field all map to the
// zero identity.
type identity struct {
	present bool
	value   string
}

func identityOf(it core.LineItem, field string) identity {
	v, ok := it.Field(field)
	if !ok {
		return identity{}
	}
	return identity{present: true, value: fmt.Sprint(v)}
}

func (id identity) String() string {
	if !id.present {
		return "<absent>"
	}
	return id.value
}

// lookup is an insertion-ordered map. Re-inserting a key replaces its value in
// place; taking a key removes it without disturbing the order of the others.
type lookup struct {
	index   map[identity]int
	entries []entry
}

type entry struct {
	item  core.LineItem
	taken bool
}

func newLookup(capacity int) *lookup {
	return &lookup{
		index:   make(map[identity]int, capacity),
		entries: make([]entry, 0, capacity),
	}
}

func (l *lookup) put(key identity, it core.LineItem) {
	if i, ok := l.index[key]; ok {
		l.entries[i].item = it
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, entry{item: it})
}

func (l *lookup) take(key identity) (core.LineItem, bool) {
	i, ok := l.index[key]
	if !ok {
		return core.LineItem{}, false
	}
	delete(l.index, key)
	l.entries[i].taken = true
	return l.entries[i].item, true
}

// each visits the entries still present, in insertion order.
func (l *lookup) each(fn func(core.LineItem)) {
	for _, e := range l.entries {
		if !e.taken {
			fn(e.item)
		}
	}
}

// amountsEqual compares two amount values numerically when both are numbers
// and textually otherwise. Two absent amounts are equal.
func amountsEqual(a any, aok bool, b any, bok bool) bool {
	if !aok || !bok {
		return aok == bok
	}
	da, okA := toDecimal(a)
	db, okB := toDecimal(b)
	if okA && okB {
		return da.Equal(db)
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toNullDecimal(v any, ok bool) decimal.NullDecimal {
	if !ok {
		return decimal.NullDecimal{}
	}
	d, ok := toDecimal(v)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	}
	return decimal.Decimal{}, false
}
