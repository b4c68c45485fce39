package engine

import "formwoz/internal/model"

// PositionKind defines where the interview cursor sits
type PositionKind string

const (
	// PosMain asks a top-level question or a dispatched follow-up.
	PosMain PositionKind = "main"
	// PosGroupField asks one field of a fixed composite group.
	PosGroupField PositionKind = "group_field"
	// PosRepeatField asks one field of the current repeat-group instance.
	PosRepeatField PositionKind = "repeat_field"
	// PosRepeatContinue asks whether to collect another instance; only
	// reached when no instance count can be inferred.
	PosRepeatContinue PositionKind = "repeat_continue"
	// PosDone is terminal.
	PosDone PositionKind = "done"
)

// Position is the interview cursor. Index always tracks the top-level
// question; QuestionID may differ from the question at Index while a
// follow-up is being asked. Partial and Instances only exist inside a
// composite context and are folded into the answer store on completion.
type Position struct {
	Kind       PositionKind             `json:"kind"`
	Index      int                      `json:"index"`
	QuestionID string                   `json:"questionId"`
	FieldIndex int                      `json:"fieldIndex,omitempty"`
	Instance   int                      `json:"instance,omitempty"`
	Partial    map[string]model.Value   `json:"partial,omitempty"`
	Instances  []map[string]model.Value `json:"instances,omitempty"`
}

// Retry tracks consecutive validation failures for the active question.
// There is no upper bound; the count is surfaced so callers can escalate.
type Retry struct {
	Count     int    `json:"count"`
	LastError string `json:"lastError,omitempty"`
}

// PendingEdit is a destructive edit awaiting explicit confirmation.
type PendingEdit struct {
	QuestionID string                   `json:"questionId"`
	NewValue   model.Value              `json:"newValue"`
	Strategy   model.NavigationStrategy `json:"strategy"`
}

// State is the full interview state: cursor, answers, retry context and any
// pending edit. Transitions never mutate a State in place; they return a
// modified copy, so snapshots and replays are safe.
type State struct {
	Pos     Position               `json:"pos"`
	Answers map[string]model.Value `json:"answers"`
	// Order lists completed top-level/follow-up question ids in
	// completion order; it doubles as the editable-question list.
	Order   []string     `json:"order"`
	Retry   Retry        `json:"retry"`
	Pending *PendingEdit `json:"pending,omitempty"`
}

func newState() State {
	return State{Answers: map[string]model.Value{}}
}

// clone copies the state deeply enough that transition writes cannot leak
// into the source.
func (s State) clone() State {
	out := s
	out.Answers = make(map[string]model.Value, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	out.Order = append([]string(nil), s.Order...)
	if s.Pos.Partial != nil {
		out.Pos.Partial = make(map[string]model.Value, len(s.Pos.Partial))
		for k, v := range s.Pos.Partial {
			out.Pos.Partial[k] = v
		}
	}
	if s.Pos.Instances != nil {
		out.Pos.Instances = make([]map[string]model.Value, len(s.Pos.Instances))
		for i, inst := range s.Pos.Instances {
			m := make(map[string]model.Value, len(inst))
			for k, v := range inst {
				m[k] = v
			}
			out.Pos.Instances[i] = m
		}
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	return out
}

// completed reports whether a question id is in the completed set.
func (s *State) completed(id string) bool {
	for _, c := range s.Order {
		if c == id {
			return true
		}
	}
	return false
}

// record stores an answer and marks the id completed. Overwrites keep the
// original completion position.
func (s *State) record(id string, v model.Value) {
	s.Answers[id] = v
	if !s.completed(id) {
		s.Order = append(s.Order, id)
	}
}

// forget drops an answer and its completed mark.
func (s *State) forget(id string) {
	delete(s.Answers, id)
	for i, c := range s.Order {
		if c == id {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
}

// uncomplete removes the completed mark but keeps the stored answer, so a
// restarted question is re-asked while its last value stays visible.
func (s *State) uncomplete(id string) {
	for i, c := range s.Order {
		if c == id {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
}
