package domain

import (
	"encoding/json"
	"fmt"
)

// ValueKind tags the dynamic type of a RawValue.
type ValueKind int

const (
	// KindNull marks a criterion that could not be computed; it scores as
	// the zero-equivalent class.
	KindNull ValueKind = iota
	KindNumber
	KindBool
	KindCategory
)

// RawValue is the output of one calculator for one station: a number, a
// boolean, a category string, or null. The zero value is Null.
type RawValue struct {
	Kind     ValueKind
	Num      float64
	Bool     bool
	Category string
}

// Null returns the "could not be computed" value.
func Null() RawValue { return RawValue{Kind: KindNull} }

// Number wraps a float criterion value.
func Number(v float64) RawValue { return RawValue{Kind: KindNumber, Num: v} }

// Boolean wraps a yes/no criterion value.
func Boolean(v bool) RawValue { return RawValue{Kind: KindBool, Bool: v} }

// Category wraps a categorical criterion value.
func Category(v string) RawValue { return RawValue{Kind: KindCategory, Category: v} }

// IsNull reports whether the value could not be computed.
func (v RawValue) IsNull() bool { return v.Kind == KindNull }

func (v RawValue) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindBool:
		if v.Bool {
			return "Sim"
		}
		return "Não"
	case KindCategory:
		return v.Category
	default:
		return "null"
	}
}

// MarshalJSON renders the value as its natural JSON type: number, boolean,
// string, or null.
func (v RawValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindCategory:
		return json.Marshal(v.Category)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reads any of the natural JSON types back into a RawValue.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw := raw.(type) {
	case nil:
		*v = Null()
	case float64:
		*v = Number(raw)
	case bool:
		*v = Boolean(raw)
	case string:
		*v = Category(raw)
	default:
		return fmt.Errorf("raw value has unsupported JSON type %T", raw)
	}
	return nil
}

// StationRawValues is the immutable per-station snapshot handed to the
// scoring engine: every active criterion's raw value keyed by field name.
type StationRawValues struct {
	StationCode int                 `json:"codigo_estacao"`
	Values      map[string]RawValue `json:"valores"`
}

// Value returns the raw value for a field, Null when absent.
func (s StationRawValues) Value(field string) RawValue {
	if v, ok := s.Values[field]; ok {
		return v
	}
	return Null()
}
