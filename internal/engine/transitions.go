package engine

import (
	"formwoz/internal/model"
	"formwoz/internal/navigation"
	"formwoz/internal/schema"
	"formwoz/internal/validate"
)

// start positions a fresh state at the first question.
func start(s *schema.Schema) State {
	st := newState()
	st.Pos = descend(s, Position{Kind: PosMain, Index: 0, QuestionID: s.Main(0).ID})
	return st
}

// descend converts a cursor pointing at a composite question into the
// field-by-field context the conversational flow actually asks.
func descend(s *schema.Schema, pos Position) Position {
	q := s.Interactive(pos.QuestionID)
	if q == nil || !q.IsComposite() {
		return pos
	}
	switch q.Kind {
	case model.KindGroup:
		pos.Kind = PosGroupField
	default:
		pos.Kind = PosRepeatField
	}
	pos.FieldIndex = 0
	pos.Instance = 0
	pos.Partial = map[string]model.Value{}
	pos.Instances = nil
	return pos
}

// submit feeds one raw reply through validation and routing, returning the
// successor state. Recoverable validation failures come back as a state with
// the retry context bumped; the returned error is only ever a schema
// consistency problem, which should abort the session.
func submit(s *schema.Schema, nav *navigation.Analyzer, prev State, raw string) (State, error) {
	st := prev.clone()

	if st.Pending != nil {
		return submitConfirmation(s, st, raw)
	}

	q, err := activeQuestion(s, &st)
	if err != nil {
		return st, err
	}

	val, verr := validate.Validate(q, raw)
	if verr != nil {
		ve, ok := verr.(*model.ValidationError)
		if !ok || !ve.Recoverable() {
			return st, verr
		}
		st.Retry.Count++
		st.Retry.LastError = ve.Message
		return st, nil
	}

	st.Retry = Retry{}
	switch st.Pos.Kind {
	case PosMain:
		return commitMain(s, st, q, val), nil
	case PosGroupField:
		return commitGroupField(s, st, q, val), nil
	case PosRepeatField:
		return commitRepeatField(s, nav, st, q, val), nil
	case PosRepeatContinue:
		return commitRepeatContinue(s, st, val), nil
	}
	return st, model.Errf(model.SchemaInconsistency, "submit in terminal state")
}

// activeQuestion resolves the definition the cursor points at. The
// continuation prompt of an open-ended repeat group validates as a boolean.
func activeQuestion(s *schema.Schema, st *State) (*model.Question, error) {
	switch st.Pos.Kind {
	case PosMain:
		q := s.Interactive(st.Pos.QuestionID)
		if q == nil {
			return nil, model.Errf(model.SchemaInconsistency, "unknown question id %q", st.Pos.QuestionID)
		}
		return q, nil
	case PosGroupField, PosRepeatField:
		owner := s.ByID(st.Pos.QuestionID)
		if owner == nil {
			return nil, model.Errf(model.SchemaInconsistency, "unknown composite id %q", st.Pos.QuestionID)
		}
		fields := owner.InstanceFields()
		if st.Pos.FieldIndex >= len(fields) {
			return nil, model.Errf(model.SchemaInconsistency, "field index %d out of range for %q", st.Pos.FieldIndex, owner.ID)
		}
		return &fields[st.Pos.FieldIndex], nil
	case PosRepeatContinue:
		return &model.Question{ID: st.Pos.QuestionID, Kind: model.KindBoolean}, nil
	}
	return nil, model.Errf(model.SchemaInconsistency, "no active question in state %q", st.Pos.Kind)
}

func commitMain(s *schema.Schema, st State, q *model.Question, val model.Value) State {
	st.record(st.Pos.QuestionID, val)

	// A yes on a branching boolean injects its follow-up before the flow
	// moves on.
	if q.Kind == model.KindBoolean && val.Bool && q.FollowUpIfYes != nil {
		st.Pos = descend(s, Position{Kind: PosMain, Index: st.Pos.Index, QuestionID: q.FollowUpIfYes.ID})
		return st
	}
	return advance(s, st)
}

func commitGroupField(s *schema.Schema, st State, field *model.Question, val model.Value) State {
	owner := s.ByID(st.Pos.QuestionID)
	st.Pos.Partial[field.ID] = val
	if st.Pos.FieldIndex+1 < len(owner.Fields) {
		st.Pos.FieldIndex++
		return st
	}
	st.record(owner.ID, model.Value{Kind: model.ValueGroup, Fields: st.Pos.Partial})
	return advance(s, st)
}

func commitRepeatField(s *schema.Schema, nav *navigation.Analyzer, st State, field *model.Question, val model.Value) State {
	owner := s.ByID(st.Pos.QuestionID)
	fields := owner.InstanceFields()
	st.Pos.Partial[field.ID] = val
	if st.Pos.FieldIndex+1 < len(fields) {
		st.Pos.FieldIndex++
		return st
	}

	// Instance complete.
	st.Pos.Instances = append(st.Pos.Instances, st.Pos.Partial)
	expected := expectedInstances(nav, owner, st.Answers)
	if expected == 0 {
		// No count could be inferred from the gating answer; ask for
		// an explicit go-ahead before each further instance.
		st.Pos.Kind = PosRepeatContinue
		st.Pos.Partial = nil
		return st
	}
	if len(st.Pos.Instances) < expected {
		return nextInstance(st)
	}
	return commitRepeatGroup(s, st, owner)
}

func commitRepeatContinue(s *schema.Schema, st State, val model.Value) State {
	owner := s.ByID(st.Pos.QuestionID)
	if val.Bool {
		st.Pos.Kind = PosRepeatField
		return nextInstance(st)
	}
	return commitRepeatGroup(s, st, owner)
}

func nextInstance(st State) State {
	st.Pos.Instance++
	st.Pos.FieldIndex = 0
	st.Pos.Partial = map[string]model.Value{}
	return st
}

func commitRepeatGroup(s *schema.Schema, st State, owner *model.Question) State {
	st.record(owner.ID, model.Value{Kind: model.ValueRows, Rows: st.Pos.Instances})
	return advance(s, st)
}

// expectedInstances reads the instance count from the answer of the repeat
// group's count gate. Zero means unknown.
func expectedInstances(nav *navigation.Analyzer, rg *model.Question, answers map[string]model.Value) int {
	gate := rg.CountFrom
	if gate == "" {
		gate = nav.CountGateFor(rg.ID)
	}
	if gate == "" {
		return 0
	}
	return navigation.ExtractCount(answers[gate])
}

// advance moves to the next unanswered top-level question, skipping anything
// still in the completed set so an edit-triggered restart only re-asks what
// was actually invalidated.
func advance(s *schema.Schema, st State) State {
	idx := st.Pos.Index + 1
	for idx < s.Len() && st.completed(s.Main(idx).ID) {
		idx++
	}
	if idx >= s.Len() {
		st.Pos = Position{Kind: PosDone, Index: s.Len()}
		return st
	}
	st.Pos = descend(s, Position{Kind: PosMain, Index: idx, QuestionID: s.Main(idx).ID})
	return st
}

// resumeAt points the cursor back at an earlier question after an edit
// restart. The id may be a main question or a follow-up.
func resumeAt(s *schema.Schema, st State, id string) (State, error) {
	if idx := s.MainIndex(id); idx >= 0 {
		st.Pos = descend(s, Position{Kind: PosMain, Index: idx, QuestionID: id})
		st.Retry = Retry{}
		return st, nil
	}
	if trigger := s.FollowUpTrigger(id); trigger != "" {
		idx := s.MainIndex(trigger)
		st.Pos = descend(s, Position{Kind: PosMain, Index: idx, QuestionID: id})
		st.Retry = Retry{}
		return st, nil
	}
	return st, model.Errf(model.SchemaInconsistency, "cannot resume at nested question %q", id)
}

// submitConfirmation consumes the yes/no reply to a pending destructive
// edit. Anything unparseable re-asks the confirmation.
func submitConfirmation(s *schema.Schema, st State, raw string) (State, error) {
	val, err := validate.Validate(&model.Question{ID: st.Pending.QuestionID, Kind: model.KindBoolean}, raw)
	if err != nil {
		st.Retry.Count++
		st.Retry.LastError = "please answer yes or no"
		return st, nil
	}
	pending := *st.Pending
	st.Pending = nil
	st.Retry = Retry{}
	if !val.Bool {
		return st, nil
	}
	return applyRestart(s, st, pending.QuestionID, pending.NewValue, pending.Strategy)
}

// applyRestart executes a RestartBranch or confirmed ConfirmAndRestart
// strategy: overwrite the edited answer, drop invalidated downstream
// answers, and move the cursor back so the flow re-validates from there.
func applyRestart(s *schema.Schema, st State, id string, val model.Value, strat model.NavigationStrategy) (State, error) {
	st.Answers[id] = val
	for _, clear := range strat.DataToClear {
		st.forget(clear)
	}
	if strat.Kind == model.StrategyConfirmAndRestart {
		// The confirmation promised the shrunken entries are gone;
		// drop the gated repeat groups so they are re-collected.
		for _, affected := range strat.Affected {
			st.forget(affected)
		}
	}
	st.uncomplete(id)

	restartFrom := strat.RestartFrom
	if restartFrom == "" {
		restartFrom = id
	}
	return resumeAt(s, st, restartFrom)
}
