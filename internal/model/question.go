package model

// QuestionKind defines the type of question
type QuestionKind string

const (
	KindDate          QuestionKind = "date"
	KindTime          QuestionKind = "time"
	KindText          QuestionKind = "text"
	KindMultilineText QuestionKind = "multiline_text"
	KindNumber        QuestionKind = "number"
	KindBoolean       QuestionKind = "boolean"
	KindSingleChoice  QuestionKind = "single_choice"
	KindMultiChoice   QuestionKind = "multiple_choice"
	KindGroup         QuestionKind = "group"
	KindRepeatGroup   QuestionKind = "repeat_group"
	KindTable         QuestionKind = "table"
)

// Question is one node of the interview schema. The populated fields depend
// on Kind: Options/OtherSpecify for choice kinds, Fields for group and
// repeat_group, Columns for table, FollowUpIfYes for boolean questions that
// branch on a yes answer.
type Question struct {
	ID            string       `json:"id" yaml:"id" bson:"id"`
	Prompt        string       `json:"question" yaml:"question" bson:"question"`
	Kind          QuestionKind `json:"type" yaml:"type" bson:"type"`
	Options       []string     `json:"options,omitempty" yaml:"options,omitempty" bson:"options,omitempty"`
	OtherSpecify  bool         `json:"other_specify,omitempty" yaml:"other_specify,omitempty" bson:"otherSpecify,omitempty"`
	Fields        []Question   `json:"fields,omitempty" yaml:"fields,omitempty" bson:"fields,omitempty"`
	Columns       []Question   `json:"columns,omitempty" yaml:"columns,omitempty" bson:"columns,omitempty"`
	FollowUpIfYes *Question    `json:"followup_if_yes,omitempty" yaml:"followup_if_yes,omitempty" bson:"followupIfYes,omitempty"`
	// CountFrom names the question whose answer determines how many
	// instances a repeat_group or table collects. When empty the count
	// gate is inferred heuristically (see navigation.Analyzer).
	CountFrom string `json:"count_from,omitempty" yaml:"count_from,omitempty" bson:"countFrom,omitempty"`
}

// IsComposite reports whether the question is asked field-by-field rather
// than as a single reply.
func (q *Question) IsComposite() bool {
	return q.Kind == KindGroup || q.Kind == KindRepeatGroup || q.Kind == KindTable
}

// IsChoice reports whether the question resolves against an option list.
func (q *Question) IsChoice() bool {
	return q.Kind == KindSingleChoice || q.Kind == KindMultiChoice
}

// InstanceFields returns the per-instance field list: Fields for a
// repeat_group, Columns for a table.
func (q *Question) InstanceFields() []Question {
	if q.Kind == KindTable {
		return q.Columns
	}
	return q.Fields
}
