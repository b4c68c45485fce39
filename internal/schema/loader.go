package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"formwoz/internal/model"
)

// document is the on-disk shape of a schema file.
type document struct {
	Title     string           `json:"title" yaml:"title"`
	Questions []model.Question `json:"questions" yaml:"questions"`
}

// Load reads and parses a schema document from disk.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema document (JSON or YAML), indexes it and validates
// the structural invariants the engine relies on.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	s := &Schema{Title: doc.Title, Questions: doc.Questions}
	if err := s.index(); err != nil {
		return nil, err
	}
	if err := validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func validate(s *Schema) error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("schema has no questions")
	}
	for id, q := range s.byID {
		if err := validateQuestion(s, q); err != nil {
			return fmt.Errorf("question %q: %w", id, err)
		}
	}
	return nil
}

func validateQuestion(s *Schema, q *model.Question) error {
	switch q.Kind {
	case model.KindDate, model.KindTime, model.KindText, model.KindMultilineText,
		model.KindNumber, model.KindBoolean:
	case model.KindSingleChoice, model.KindMultiChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("choice question has no options")
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if seen[opt] {
				return fmt.Errorf("duplicate option %q", opt)
			}
			seen[opt] = true
		}
	case model.KindGroup, model.KindRepeatGroup:
		if len(q.Fields) == 0 {
			return fmt.Errorf("%s has no fields", q.Kind)
		}
	case model.KindTable:
		if len(q.Columns) == 0 {
			return fmt.Errorf("table has no columns")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Kind)
	}

	if q.FollowUpIfYes != nil && q.Kind != model.KindBoolean {
		return fmt.Errorf("followup_if_yes on non-boolean question")
	}
	if q.CountFrom != "" {
		if q.Kind != model.KindRepeatGroup && q.Kind != model.KindTable {
			return fmt.Errorf("count_from on non-repeating question")
		}
		if s.byID[q.CountFrom] == nil {
			return fmt.Errorf("count_from references unknown id %q", q.CountFrom)
		}
	}
	return nil
}
