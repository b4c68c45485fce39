package model

// StrategyKind defines how the interview resumes after an answer edit
type StrategyKind string

const (
	// StrategyContinue overwrites the stored answer and resumes at the
	// respondent's current position.
	StrategyContinue StrategyKind = "continue"
	// StrategyRestartBranch overwrites the answer, clears DataToClear and
	// moves the position back to RestartFrom (a branch switched).
	StrategyRestartBranch StrategyKind = "restart_branch"
	// StrategyConfirmAndRestart is RestartBranch behind an explicit
	// confirmation, used when collected instance data would be discarded.
	StrategyConfirmAndRestart StrategyKind = "confirm_and_restart"
)

// NavigationStrategy is the analyzer's verdict for one edit request.
type NavigationStrategy struct {
	Kind                 StrategyKind `json:"strategy"`
	Reason               string       `json:"reason"`
	Affected             []string     `json:"affectedQuestions,omitempty"`
	RestartFrom          string       `json:"restartFrom,omitempty"`
	DataToClear          []string     `json:"dataToClear,omitempty"`
	RequiresConfirmation bool         `json:"requiresConfirmation,omitempty"`
	ConfirmationMessage  string       `json:"confirmationMessage,omitempty"`
}
