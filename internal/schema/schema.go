package schema

import (
	"fmt"

	"formwoz/internal/model"
)

// Schema is the static, ordered question tree for one interview, indexed for
// lookup by id from any context. It is read-only after Parse and safe to
// share across sessions.
type Schema struct {
	Title     string
	Questions []model.Question

	byID      map[string]*model.Question
	mainIndex map[string]int
	// follow-up question id -> the boolean question that triggers it
	followUpTrigger map[string]string
	// field id -> id of the repeat_group/table that owns it
	repeatOwner map[string]string
	// field id -> id of the group that owns it
	groupOwner map[string]string
}

// Len returns the number of top-level questions.
func (s *Schema) Len() int { return len(s.Questions) }

// Main returns the top-level question at index i, or nil when out of range.
func (s *Schema) Main(i int) *model.Question {
	if i < 0 || i >= len(s.Questions) {
		return nil
	}
	return &s.Questions[i]
}

// MainIndex returns the top-level index of a question id, or -1 when the id
// is nested (a field or a follow-up) or unknown.
func (s *Schema) MainIndex(id string) int {
	if i, ok := s.mainIndex[id]; ok {
		return i
	}
	return -1
}

// ByID finds any question in the tree, including follow-ups and nested
// fields.
func (s *Schema) ByID(id string) *model.Question {
	return s.byID[id]
}

// FollowUpTrigger returns the id of the boolean question whose yes answer
// injects the given follow-up, or "" when id is not a follow-up.
func (s *Schema) FollowUpTrigger(id string) string {
	return s.followUpTrigger[id]
}

// RepeatOwner returns the id of the repeat_group or table whose field list
// contains id, or "" when id is not a repeat-group field.
func (s *Schema) RepeatOwner(id string) string {
	return s.repeatOwner[id]
}

// GroupOwner returns the id of the group whose field list contains id, or
// "" when id is not a group field.
func (s *Schema) GroupOwner(id string) string {
	return s.groupOwner[id]
}

// RepeatGroups returns every top-level repeat_group and table question.
func (s *Schema) RepeatGroups() []*model.Question {
	var out []*model.Question
	for i := range s.Questions {
		q := &s.Questions[i]
		if q.Kind == model.KindRepeatGroup || q.Kind == model.KindTable {
			out = append(out, q)
		}
	}
	return out
}

// Interactive returns the question as the conversational flow asks it.
// Table follow-ups are degraded to a multiline text question: asking a
// tabular sub-form inside a follow-up reads badly in chat, so the flow
// collects it as delimited free text instead.
func (s *Schema) Interactive(id string) *model.Question {
	q := s.byID[id]
	if q == nil {
		return nil
	}
	if s.followUpTrigger[id] != "" && q.Kind == model.KindTable {
		conv := *q
		conv.Kind = model.KindMultilineText
		conv.Prompt = q.Prompt + "\n(Please provide details separated by commas or semicolons)"
		conv.Columns = nil
		return &conv
	}
	return q
}

func (s *Schema) index() error {
	s.byID = make(map[string]*model.Question)
	s.mainIndex = make(map[string]int)
	s.followUpTrigger = make(map[string]string)
	s.repeatOwner = make(map[string]string)
	s.groupOwner = make(map[string]string)

	add := func(q *model.Question) error {
		if q.ID == "" {
			return fmt.Errorf("question with empty id (prompt %q)", q.Prompt)
		}
		if _, dup := s.byID[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		s.byID[q.ID] = q
		return nil
	}

	for i := range s.Questions {
		q := &s.Questions[i]
		if err := add(q); err != nil {
			return err
		}
		s.mainIndex[q.ID] = i

		for j := range q.Fields {
			f := &q.Fields[j]
			if err := add(f); err != nil {
				return err
			}
			switch q.Kind {
			case model.KindGroup:
				s.groupOwner[f.ID] = q.ID
			case model.KindRepeatGroup:
				s.repeatOwner[f.ID] = q.ID
			}
		}
		for j := range q.Columns {
			c := &q.Columns[j]
			if err := add(c); err != nil {
				return err
			}
			s.repeatOwner[c.ID] = q.ID
		}
		if fu := q.FollowUpIfYes; fu != nil {
			if err := add(fu); err != nil {
				return err
			}
			s.followUpTrigger[fu.ID] = q.ID
			for j := range fu.Fields {
				if err := add(&fu.Fields[j]); err != nil {
					return err
				}
			}
			for j := range fu.Columns {
				if err := add(&fu.Columns[j]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
