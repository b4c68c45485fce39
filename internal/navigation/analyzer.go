// Package navigation decides how the interview resumes when a respondent
// edits an already-answered question. The analyzer is pure: it inspects the
// schema and the stored answers and returns a strategy, leaving the engine
// to apply it.
package navigation

import (
	"fmt"
	"regexp"
	"strings"

	"formwoz/internal/model"
	"formwoz/internal/schema"
)

var digitRun = regexp.MustCompile(`\d+`)

// countWords resolves spelled-out counts in gating answers ("two vehicles").
var countWords = []struct {
	word string
	n    int
}{
	{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
}

// numericCues mark a question as count-determining when combined with a
// repeat-group subject noun in its id or prompt.
var numericCues = []string{"number", "count", "how many"}

// Analyzer precomputes the dependency structure one schema implies:
// which questions branch, which follow-up belongs to which trigger, and
// which answers gate how many instances a repeat group collects.
type Analyzer struct {
	schema *schema.Schema

	branching map[string]bool
	// count-gate question id -> ids of the repeat groups it gates
	countGates map[string][]string
}

// NewAnalyzer builds the dependency maps for a schema.
func NewAnalyzer(s *schema.Schema) *Analyzer {
	a := &Analyzer{
		schema:     s,
		branching:  make(map[string]bool),
		countGates: make(map[string][]string),
	}
	for i := 0; i < s.Len(); i++ {
		q := s.Main(i)
		if q.FollowUpIfYes != nil {
			a.branching[q.ID] = true
		}
	}
	for _, rg := range s.RepeatGroups() {
		if gate := a.findCountGate(rg); gate != "" {
			a.countGates[gate] = append(a.countGates[gate], rg.ID)
		}
	}
	return a
}

// findCountGate resolves the question whose answer determines a repeat
// group's instance count: the schema-declared count_from when present,
// otherwise the first question whose id or prompt pairs a numeric cue with
// one of the repeat group's subject nouns.
func (a *Analyzer) findCountGate(rg *model.Question) string {
	if rg.CountFrom != "" {
		return rg.CountFrom
	}
	nouns := subjectNouns(rg.ID)
	for i := 0; i < a.schema.Len(); i++ {
		q := a.schema.Main(i)
		if q.ID == rg.ID {
			continue
		}
		text := strings.ToLower(q.ID + " " + q.Prompt)
		if !hasNumericCue(text) {
			continue
		}
		for _, noun := range nouns {
			if strings.Contains(text, noun) {
				return q.ID
			}
		}
	}
	return ""
}

// CountGateFor returns the id of the question gating a repeat group's
// instance count, or "" when none is known.
func (a *Analyzer) CountGateFor(repeatGroupID string) string {
	for gate, groups := range a.countGates {
		for _, g := range groups {
			if g == repeatGroupID {
				return gate
			}
		}
	}
	return ""
}

// AnalyzeEdit computes the safe strategy for changing a previously-answered
// question. Rules are evaluated in priority order: branching edits, then
// count-gate edits, then in-repeat-group field edits, then the default.
func (a *Analyzer) AnalyzeEdit(editedID string, newValue model.Value, answers map[string]model.Value) model.NavigationStrategy {
	q := a.schema.ByID(editedID)
	if q == nil {
		return model.NavigationStrategy{
			Kind:   model.StrategyContinue,
			Reason: fmt.Sprintf("question %q not found, continuing normally", editedID),
		}
	}

	if a.branching[editedID] {
		return a.analyzeBranchEdit(editedID, newValue, answers)
	}
	if len(a.countGates[editedID]) > 0 {
		return a.analyzeCountEdit(editedID, newValue, answers)
	}
	if a.schema.RepeatOwner(editedID) != "" {
		// Later instances are independent of an edited field value.
		return model.NavigationStrategy{
			Kind:   model.StrategyContinue,
			Reason: fmt.Sprintf("updated field %q within a repeat group, no dependencies affected", editedID),
		}
	}
	return model.NavigationStrategy{
		Kind:   model.StrategyContinue,
		Reason: fmt.Sprintf("simple edit for %q, no dependencies affected", editedID),
	}
}

func (a *Analyzer) analyzeBranchEdit(editedID string, newValue model.Value, answers map[string]model.Value) model.NavigationStrategy {
	oldBool := toBool(answers[editedID])
	newBool := toBool(newValue)
	if oldBool == newBool {
		return model.NavigationStrategy{
			Kind:   model.StrategyContinue,
			Reason: fmt.Sprintf("branch unchanged for %q, continuing from current position", editedID),
		}
	}

	followUpID := a.schema.ByID(editedID).FollowUpIfYes.ID
	strat := model.NavigationStrategy{
		Kind:        model.StrategyRestartBranch,
		RestartFrom: editedID,
		Affected:    []string{followUpID},
	}
	if newBool {
		strat.Reason = fmt.Sprintf("changed to yes for %q, the follow-up question now applies", editedID)
	} else {
		strat.Reason = fmt.Sprintf("changed to no for %q, removing the follow-up question", editedID)
		strat.DataToClear = []string{followUpID}
	}
	return strat
}

func (a *Analyzer) analyzeCountEdit(editedID string, newValue model.Value, answers map[string]model.Value) model.NavigationStrategy {
	oldCount := ExtractCount(answers[editedID])
	newCount := ExtractCount(newValue)
	if oldCount == newCount {
		return model.NavigationStrategy{
			Kind:   model.StrategyContinue,
			Reason: fmt.Sprintf("count unchanged for %q, continuing from current position", editedID),
		}
	}

	affected := a.countGates[editedID]
	if newCount > oldCount {
		// Extra instances are simply prompted for; nothing collected
		// so far is invalidated.
		return model.NavigationStrategy{
			Kind:     model.StrategyContinue,
			Reason:   fmt.Sprintf("increased count from %d to %d, additional entries will be collected", oldCount, newCount),
			Affected: affected,
		}
	}
	return model.NavigationStrategy{
		Kind:                 model.StrategyConfirmAndRestart,
		Reason:               fmt.Sprintf("decreased count from %d to %d, some collected data will be lost", oldCount, newCount),
		RequiresConfirmation: true,
		ConfirmationMessage: fmt.Sprintf(
			"You've changed the number from %d to %d. This will remove data for %d entries. "+
				"Are you sure you want to continue? (Type 'yes' to confirm or 'no' to cancel)",
			oldCount, newCount, oldCount-newCount),
		Affected:    affected,
		RestartFrom: editedID,
	}
}

// ExtractCount pulls an integer count out of a gating answer: a digit
// string, a digit-valued choice, digits embedded in an other-detail, or a
// spelled-out number one through ten. Zero means no count could be read.
func ExtractCount(v model.Value) int {
	candidates := []string{v.Choice, v.Other, v.Text}
	if v.Kind == model.ValueNumber {
		return int(v.Number)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if m := digitRun.FindString(c); m != "" {
			var n int
			fmt.Sscanf(m, "%d", &n)
			return n
		}
		lower := strings.ToLower(c)
		for _, cw := range countWords {
			if strings.Contains(lower, cw.word) {
				return cw.n
			}
		}
	}
	return 0
}

func toBool(v model.Value) bool {
	switch v.Kind {
	case model.ValueBool:
		return v.Bool
	case model.ValueNumber:
		return v.Number != 0
	case model.ValueChoice:
		return truthyText(v.Choice)
	default:
		return truthyText(v.Text)
	}
}

func truthyText(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func hasNumericCue(text string) bool {
	for _, cue := range numericCues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

// subjectNouns derives candidate subject words from a repeat group's id,
// e.g. "vehicle_details" yields "vehicle" and "vehicles". Generic words
// that would match almost any question are skipped.
func subjectNouns(id string) []string {
	skip := map[string]bool{
		"details": true, "detail": true, "info": true, "information": true,
		"list": true, "group": true, "data": true, "the": true, "of": true,
	}
	var nouns []string
	for _, w := range strings.FieldsFunc(strings.ToLower(id), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}) {
		if skip[w] || len(w) < 3 {
			continue
		}
		nouns = append(nouns, strings.TrimSuffix(w, "s"))
	}
	return nouns
}
