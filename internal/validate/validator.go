// Package validate converts free-form interview replies into typed values.
// Validation is pure: malformed input is a typed *model.ValidationError,
// never a panic, and nothing here touches engine state.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"formwoz/internal/model"
)

// Validate checks one reply against one question definition and returns the
// normalized value. Failures carry an ErrorKind so the engine can decide
// between re-prompting and aborting.
func Validate(q *model.Question, reply string) (model.Value, error) {
	if q == nil {
		return model.Value{}, model.Errf(model.SchemaInconsistency, "no active question")
	}
	switch q.Kind {
	case model.KindDate:
		return parseDate(reply)
	case model.KindTime:
		return parseTime(reply)
	case model.KindText, model.KindMultilineText:
		return parseText(q, reply)
	case model.KindNumber:
		return parseNumber(reply)
	case model.KindBoolean:
		return parseBool(reply)
	case model.KindSingleChoice:
		return parseChoice(q, reply, false)
	case model.KindMultiChoice:
		return parseChoice(q, reply, true)
	case model.KindGroup:
		return parseGroup(q.Fields, reply)
	case model.KindRepeatGroup:
		return parseRepeat(q.Fields, reply)
	case model.KindTable:
		return parseRepeat(q.Columns, reply)
	}
	return model.Value{}, model.Errf(model.SchemaInconsistency, "unknown question type %q", q.Kind)
}

func parseText(q *model.Question, reply string) (model.Value, error) {
	text := strings.TrimSpace(reply)
	if text == "" && !strings.HasSuffix(strings.ToLower(q.Prompt), "(optional)") {
		return model.Value{}, model.Errf(model.BlankRequired, "this question needs an answer")
	}
	return model.TextValue(text), nil
}

// wordNumbers covers spelled-out replies like "thirty". Compounds are not
// resolved; "thirty five" falls through to digit extraction and fails.
var wordNumbers = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100,
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

func parseNumber(reply string) (model.Value, error) {
	s := strings.ToLower(strings.TrimSpace(reply))
	if n, ok := wordNumbers[s]; ok {
		return model.Value{Kind: model.ValueNumber, Number: n, IsInt: true}, nil
	}
	// Tolerate trailing units: "30 kmh", "50 km/h", "25.5km/h".
	if m := numberPattern.FindString(s); m != "" {
		var n float64
		fmt.Sscanf(m, "%g", &n)
		return model.Value{Kind: model.ValueNumber, Number: n, IsInt: !strings.Contains(m, ".")}, nil
	}
	return model.Value{}, model.Errf(model.BadFormat, "%q is not a number", reply)
}

var (
	boolTrue  = map[string]bool{"yes": true, "y": true, "true": true, "t": true, "1": true}
	boolFalse = map[string]bool{"no": true, "n": true, "false": true, "f": true, "0": true}
)

func parseBool(reply string) (model.Value, error) {
	s := strings.ToLower(strings.TrimSpace(reply))
	if boolTrue[s] {
		return model.BoolValue(true), nil
	}
	if boolFalse[s] {
		return model.BoolValue(false), nil
	}
	return model.Value{}, model.Errf(model.BadFormat, "expected yes/no or true/false")
}

// parseGroup is the bulk import path for group answers: the interactive flow
// asks group fields one at a time instead. The reply must be a JSON object
// keyed by field id; every field must validate or the group fails with the
// first failing field's error.
func parseGroup(fields []model.Question, reply string) (model.Value, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(reply), &obj); err != nil {
		return model.Value{}, model.Errf(model.BadFormat, "group reply must be a JSON object")
	}
	return validateGroupObject(fields, obj)
}

func validateGroupObject(fields []model.Question, obj map[string]interface{}) (model.Value, error) {
	parsed := make(map[string]model.Value, len(fields))
	for i := range fields {
		f := &fields[i]
		val, err := Validate(f, rawFieldText(obj[f.ID]))
		if err != nil {
			if verr, ok := err.(*model.ValidationError); ok {
				return model.Value{}, model.Errf(verr.Kind, "%s: %s", f.ID, verr.Message)
			}
			return model.Value{}, err
		}
		parsed[f.ID] = val
	}
	return model.Value{Kind: model.ValueGroup, Fields: parsed}, nil
}

// parseRepeat is the bulk import path for repeat groups and tables: a JSON
// list of group-shaped objects, each validated against the field list.
func parseRepeat(fields []model.Question, reply string) (model.Value, error) {
	var arr []map[string]interface{}
	if err := json.Unmarshal([]byte(reply), &arr); err != nil {
		return model.Value{}, model.Errf(model.BadFormat, "reply must be a JSON list of objects")
	}
	rows := make([]map[string]model.Value, 0, len(arr))
	for i, elem := range arr {
		val, err := validateGroupObject(fields, elem)
		if err != nil {
			if verr, ok := err.(*model.ValidationError); ok {
				return model.Value{}, model.Errf(verr.Kind, "entry %d: %s", i+1, verr.Message)
			}
			return model.Value{}, err
		}
		rows = append(rows, val.Fields)
	}
	return model.Value{Kind: model.ValueRows, Rows: rows}, nil
}

// rawFieldText renders an imported JSON field value back to the text the
// scalar parsers expect.
func rawFieldText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
