// Package engine drives one interview: it holds the cursor and accumulated
// answers, validates each reply, applies routing (follow-ups, groups,
// repeat groups) and resolves edit requests through the navigation
// analyzer. The engine performs no I/O and never blocks; persistence and
// transport live in the layers around it.
package engine

import (
	"encoding/json"
	"fmt"

	"formwoz/internal/model"
	"formwoz/internal/navigation"
	"formwoz/internal/schema"
	"formwoz/internal/validate"
)

// Engine is a thin stateful wrapper over the pure transition functions.
// One engine serves one interview session; concurrent sessions each own
// their engine and share only the read-only schema.
type Engine struct {
	schema *schema.Schema
	nav    *navigation.Analyzer
	state  State
}

// New creates an engine for a schema. Call Start to get the first prompt.
func New(s *schema.Schema) *Engine {
	return &Engine{schema: s, nav: navigation.NewAnalyzer(s)}
}

// Start initializes an empty answer store, positions the interview at the
// first question and returns its prompt.
func (e *Engine) Start() *model.PromptDescriptor {
	e.state = start(e.schema)
	return prompt(e.schema, e.state)
}

// Done reports whether the interview reached its terminal state.
func (e *Engine) Done() bool { return e.state.Pos.Kind == PosDone }

// Submit feeds one raw reply to the engine. It returns the next prompt, or
// a completion record when the reply finished the interview. A validation
// failure is not an error: the same prompt comes back with the error text
// and retry count attached. The returned error only signals a schema
// consistency problem and should abort the session.
func (e *Engine) Submit(raw string) (*model.PromptDescriptor, *model.CompletionRecord, error) {
	if e.state.Pending == nil && e.Done() {
		return nil, completion(e.schema, e.state), nil
	}
	next, err := submit(e.schema, e.nav, e.state, raw)
	if err != nil {
		return nil, nil, err
	}
	e.state = next
	if e.Done() {
		return nil, completion(e.schema, e.state), nil
	}
	return prompt(e.schema, e.state), nil, nil
}

// RequestEdit validates a new value for an already-answered question, asks
// the navigation analyzer for the safe strategy and applies it. A Continue
// strategy is applied immediately; a RestartBranch rewinds the interview; a
// ConfirmAndRestart is parked until ConfirmEdit (or a yes/no Submit)
// resolves it.
func (e *Engine) RequestEdit(questionID, newRaw string) (*model.EditOutcome, error) {
	if e.schema.ByID(questionID) == nil {
		return nil, model.Errf(model.SchemaInconsistency, "unknown question id %q", questionID)
	}
	if !e.state.completed(questionID) {
		return nil, fmt.Errorf("question %q has not been answered yet", questionID)
	}

	val, err := validate.Validate(e.schema.Interactive(questionID), newRaw)
	if err != nil {
		return nil, err
	}

	strat := e.nav.AnalyzeEdit(questionID, val, e.state.Answers)
	switch strat.Kind {
	case model.StrategyContinue:
		st := e.state.clone()
		st.Answers[questionID] = val
		e.state = st
		return &model.EditOutcome{
			Applied:  true,
			Strategy: strat,
			Prompt:   prompt(e.schema, e.state),
		}, nil

	case model.StrategyRestartBranch:
		st, err := applyRestart(e.schema, e.state.clone(), questionID, val, strat)
		if err != nil {
			return nil, err
		}
		e.state = st
		return &model.EditOutcome{
			Applied:  true,
			Strategy: strat,
			Prompt:   prompt(e.schema, e.state),
		}, nil

	case model.StrategyConfirmAndRestart:
		st := e.state.clone()
		st.Pending = &PendingEdit{QuestionID: questionID, NewValue: val, Strategy: strat}
		e.state = st
		return &model.EditOutcome{
			RequiresConfirmation: true,
			Message:              strat.ConfirmationMessage,
			Strategy:             strat,
			Prompt:               prompt(e.schema, e.state),
		}, nil
	}
	return nil, model.Errf(model.SchemaInconsistency, "unknown strategy %q", strat.Kind)
}

// ConfirmEdit resolves a pending destructive edit: confirmed applies the
// restart, declined discards the edit. Either way the interview resumes.
func (e *Engine) ConfirmEdit(confirmed bool) (*model.PromptDescriptor, error) {
	if e.state.Pending == nil {
		return nil, fmt.Errorf("no edit awaiting confirmation")
	}
	reply := "no"
	if confirmed {
		reply = "yes"
	}
	next, err := submit(e.schema, e.nav, e.state, reply)
	if err != nil {
		return nil, err
	}
	e.state = next
	return prompt(e.schema, e.state), nil
}

// Completion returns the final record; nil until the interview is done.
func (e *Engine) Completion() *model.CompletionRecord {
	if !e.Done() {
		return nil
	}
	return completion(e.schema, e.state)
}

// Prompt re-renders the current prompt without advancing anything.
func (e *Engine) Prompt() *model.PromptDescriptor {
	return prompt(e.schema, e.state)
}

// Snapshot serializes the engine state so a session can be parked in a
// cache or store between turns.
func (e *Engine) Snapshot() ([]byte, error) {
	return json.Marshal(e.state)
}

// Restore replaces the engine state with a previously taken snapshot.
func (e *Engine) Restore(snapshot []byte) error {
	var st State
	if err := json.Unmarshal(snapshot, &st); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	if st.Answers == nil {
		st.Answers = map[string]model.Value{}
	}
	e.state = st
	return nil
}
