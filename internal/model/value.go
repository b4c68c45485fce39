package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind defines the type of a normalized answer value
type ValueKind string

const (
	ValueDate   ValueKind = "date"
	ValueTime   ValueKind = "time"
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValueBool   ValueKind = "bool"
	ValueChoice ValueKind = "choice"
	ValueMulti  ValueKind = "multi"
	ValueGroup  ValueKind = "group"
	ValueRows   ValueKind = "rows"
)

// Value is the normalized result of validating one reply. The populated
// fields depend on Kind: Text holds ISO dates (YYYY-MM-DD), HH:MM times and
// plain text; Choice/Other hold a single-choice resolution; List holds
// multi-choice resolutions in input order; Fields holds one group instance;
// Rows holds the ordered instances of a repeat group or table.
type Value struct {
	Kind   ValueKind          `json:"kind" bson:"kind"`
	Text   string             `json:"text,omitempty" bson:"text,omitempty"`
	Number float64            `json:"number,omitempty" bson:"number,omitempty"`
	IsInt  bool               `json:"isInt,omitempty" bson:"isInt,omitempty"`
	Bool   bool               `json:"bool,omitempty" bson:"bool,omitempty"`
	Choice string             `json:"choice,omitempty" bson:"choice,omitempty"`
	Other  string             `json:"other,omitempty" bson:"other,omitempty"`
	List   []string           `json:"list,omitempty" bson:"list,omitempty"`
	Fields map[string]Value   `json:"fields,omitempty" bson:"fields,omitempty"`
	Rows   []map[string]Value `json:"rows,omitempty" bson:"rows,omitempty"`
}

// TextValue builds a text value.
func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }

// BoolValue builds a boolean value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// ChoiceValue builds a single-choice value with an optional other-detail.
func ChoiceValue(choice, other string) Value {
	return Value{Kind: ValueChoice, Choice: choice, Other: other}
}

// String renders the value the way a transcript shows it.
func (v Value) String() string {
	switch v.Kind {
	case ValueDate, ValueTime, ValueText:
		return v.Text
	case ValueNumber:
		if v.IsInt {
			return strconv.FormatInt(int64(v.Number), 10)
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueBool:
		if v.Bool {
			return "yes"
		}
		return "no"
	case ValueChoice:
		if v.Other != "" {
			return fmt.Sprintf("%s (%s)", v.Choice, v.Other)
		}
		return v.Choice
	case ValueMulti:
		return strings.Join(v.List, ", ")
	case ValueGroup:
		parts := make([]string, 0, len(v.Fields))
		for id, fv := range v.Fields {
			parts = append(parts, id+": "+fv.String())
		}
		return strings.Join(parts, "; ")
	case ValueRows:
		return fmt.Sprintf("%d entries", len(v.Rows))
	}
	return ""
}
