package verify

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/desertthunder/recipeshift/internal/models"
)

// Severity classifies an [Issue].
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValueKind is the type tag of a detail [Value].
type ValueKind string

const (
	KindString     ValueKind = "string"
	KindIdentifier ValueKind = "identifier"
	KindBoolean    ValueKind = "boolean"
)

// Value is one entry of an issue's detail map. It holds text, a record identifier or a boolean.
type Value struct {
	Kind ValueKind
	Text string
	Flag bool
}

// Text returns a free-text value.
func Text(s string) Value { return Value{Kind: KindString, Text: s} }

// Ident returns a record identifier value.
func Ident(id string) Value { return Value{Kind: KindIdentifier, Text: id} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBoolean, Flag: b} }

func (v Value) String() string {
	if v.Kind == KindBoolean {
		return strconv.FormatBool(v.Flag)
	}
	return v.Text
}

type wireValue struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"kind": ..., "value": ...}.
func (v Value) MarshalJSON() ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch v.Kind {
	case KindBoolean:
		raw, err = json.Marshal(v.Flag)
	case KindString, KindIdentifier:
		raw, err = json.Marshal(v.Text)
	default:
		return nil, fmt.Errorf("unknown value kind %q", v.Kind)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireValue{Kind: v.Kind, Value: raw})
}

// UnmarshalJSON decodes the {"kind": ..., "value": ...} form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.Kind {
	case KindBoolean:
		*v = Value{Kind: w.Kind}
		return json.Unmarshal(w.Value, &v.Flag)
	case KindString, KindIdentifier:
		*v = Value{Kind: w.Kind}
		return json.Unmarshal(w.Value, &v.Text)
	default:
		return fmt.Errorf("unknown value kind %q", w.Kind)
	}
}

// Details is the detail map of an [Issue].
type Details map[string]Value

// Issue is a single discrepancy found by a check.
type Issue struct {
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	RecordID    string            `json:"recordId,omitempty"`
	RecordType  models.RecordType `json:"recordType,omitempty"`
	Details     Details           `json:"details,omitempty"`
}
