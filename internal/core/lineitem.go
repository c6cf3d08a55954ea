package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Field names of the typed line item attributes.
const (
	FieldID        = "id"
	FieldRemarks   = "remarks"
	FieldAmount    = "amount"
	FieldType      = "type"
	FieldUSDAmount = "usdAmount"
)

// LineItem is one row of a month collection. Well-known fields are typed; any
// other attribute the client sends is kept in Attrs and written back verbatim.
type LineItem struct {
	ID        string
	Remarks   string
	Amount    decimal.NullDecimal
	Type      string
	USDAmount decimal.NullDecimal
	Attrs     map[string]any
}

// Field returns the named attribute. Empty strings, nulls and unset amounts
// are reported as absent. A well-known field sent with an unexpected JSON type
// is kept raw in Attrs and returned from there.
func (it LineItem) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		if it.ID != "" {
			return it.ID, true
		}
	case FieldRemarks:
		if it.Remarks != "" {
			return it.Remarks, true
		}
	case FieldType:
		if it.Type != "" {
			return it.Type, true
		}
	case FieldAmount:
		if it.Amount.Valid {
			return it.Amount.Decimal, true
		}
	case FieldUSDAmount:
		if it.USDAmount.Valid {
			return it.USDAmount.Decimal, true
		}
	}
	v, ok := it.Attrs[name]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}

// RawAmount reports whether the amount was sent in a form that is not a
// number, such as "n/a".
func (it LineItem) RawAmount() bool {
	_, ok := it.Attrs[FieldAmount]
	return ok
}

// Clone returns a copy that shares no mutable state with it.
func (it LineItem) Clone() LineItem {
	out := it
	if it.Attrs != nil {
		out.Attrs = make(map[string]any, len(it.Attrs))
		for k, v := range it.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// fields flattens the item into a single attribute map. Typed fields only
// replace a raw attribute of the same name when they are set.
func (it LineItem) fields() map[string]any {
	m := make(map[string]any, len(it.Attrs)+5)
	for k, v := range it.Attrs {
		m[k] = v
	}
	if it.ID != "" {
		m[FieldID] = it.ID
	}
	setString(m, FieldRemarks, it.Remarks)
	setString(m, FieldType, it.Type)
	if it.Amount.Valid {
		m[FieldAmount] = jsonNumber(it.Amount.Decimal)
	} else if _, raw := m[FieldAmount]; !raw {
		m[FieldAmount] = nil
	}
	if it.USDAmount.Valid {
		m[FieldUSDAmount] = jsonNumber(it.USDAmount.Decimal)
	}
	return m
}

func setString(m map[string]any, key, v string) {
	if _, raw := m[key]; raw && v == "" {
		return
	}
	m[key] = v
}

// jsonNumber encodes d as a bare JSON number.
func jsonNumber(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

func (it LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.fields())
}

// UnmarshalJSON never fails on a field value: a well-known field that does
// not decode into its typed form is kept raw in Attrs.
func (it *LineItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out LineItem
	for k, v := range raw {
		var err error
		switch k {
		case FieldID:
			out.ID, err = decodeString(v)
		case FieldRemarks:
			out.Remarks, err = decodeString(v)
		case FieldType:
			out.Type, err = decodeString(v)
		case FieldAmount:
			out.Amount, err = decodeAmount(v)
		case FieldUSDAmount:
			out.USDAmount, err = decodeAmount(v)
		default:
			err = errNotTyped
		}
		if err == nil {
			continue
		}
		val, derr := decodeRaw(v)
		if derr != nil {
			return fmt.Errorf("decode field %q: %w", k, derr)
		}
		if out.Attrs == nil {
			out.Attrs = make(map[string]any)
		}
		out.Attrs[k] = val
	}
	*it = out
	return nil
}

var errNotTyped = errors.New("not a typed field")

// decodeRaw keeps numbers as json.Number so they are written back unchanged.
func decodeRaw(v json.RawMessage) (any, error) {
	var val any
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&val); err != nil {
		return nil, err
	}
	return val, nil
}

func decodeString(v json.RawMessage) (string, error) {
	if bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", err
	}
	return s, nil
}

// decodeAmount accepts a JSON number, a numeric string or null. An empty
// string is an unset amount, as submitted by a blank form field.
func decodeAmount(v json.RawMessage) (decimal.NullDecimal, error) {
	if bytes.Equal(v, []byte("null")) {
		return decimal.NullDecimal{}, nil
	}
	if len(v) > 0 && v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return decimal.NullDecimal{}, err
		}
		if s == "" {
			return decimal.NullDecimal{}, nil
		}
		d, err := ParseAmount(s)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(d), nil
	}
	d, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	return decimal.NewNullDecimal(d), nil
}
