package engine

import (
	"fmt"

	"formwoz/internal/model"
	"formwoz/internal/schema"
)

// prompt renders the descriptor for the state's active question, or nil when
// the interview is done.
func prompt(s *schema.Schema, st State) *model.PromptDescriptor {
	base := model.PromptDescriptor{
		Completed: append([]string(nil), st.Order...),
		Progress:  model.Progress{Answered: len(st.Order), Total: s.Len()},
		Error:     st.Retry.LastError,
		Retries:   st.Retry.Count,
	}

	if st.Pending != nil {
		base.Confirming = true
		base.QuestionID = st.Pending.QuestionID
		base.Kind = model.KindBoolean
		base.Prompt = st.Pending.Strategy.ConfirmationMessage
		return &base
	}

	switch st.Pos.Kind {
	case PosDone:
		return nil
	case PosMain:
		q := s.Interactive(st.Pos.QuestionID)
		fillQuestion(&base, q)
		return &base
	case PosGroupField, PosRepeatField:
		owner := s.ByID(st.Pos.QuestionID)
		fields := owner.InstanceFields()
		field := &fields[st.Pos.FieldIndex]
		fillQuestion(&base, field)
		base.FieldIndex = st.Pos.FieldIndex + 1
		base.FieldCount = len(fields)
		if st.Pos.Kind == PosRepeatField {
			base.Instance = st.Pos.Instance + 1
			base.Prompt = fmt.Sprintf("Entry %d - %s", st.Pos.Instance+1, field.Prompt)
		}
		return &base
	case PosRepeatContinue:
		base.QuestionID = st.Pos.QuestionID
		base.Kind = model.KindBoolean
		base.Prompt = "Would you like to add another entry? (yes/no)"
		return &base
	}
	return nil
}

func fillQuestion(p *model.PromptDescriptor, q *model.Question) {
	p.QuestionID = q.ID
	p.Prompt = q.Prompt
	p.Kind = q.Kind
	p.Options = q.Options
	p.OtherSpecify = q.OtherSpecify
	p.Hint = hintFor(q)
}

// hintFor mirrors the format hints the conversational UI shows under each
// question.
func hintFor(q *model.Question) string {
	switch q.Kind {
	case model.KindDate:
		return "Format: YYYY-MM-DD, e.g. 2025-06-12"
	case model.KindTime:
		return "Format: HH:MM, e.g. 14:35"
	case model.KindNumber:
		return "Please enter a number"
	case model.KindBoolean:
		return "Please answer: yes/no, true/false, or 1/0"
	case model.KindMultiChoice:
		return "You can select multiple options separated by commas"
	case model.KindSingleChoice:
		if q.OtherSpecify {
			return "You can also specify 'Other' with details"
		}
	}
	return ""
}

// completion builds the terminal record from a finished state.
func completion(s *schema.Schema, st State) *model.CompletionRecord {
	answers := make(map[string]model.Value, len(st.Answers))
	for k, v := range st.Answers {
		answers[k] = v
	}
	return &model.CompletionRecord{
		Title:   s.Title,
		Order:   append([]string(nil), st.Order...),
		Answers: answers,
	}
}
