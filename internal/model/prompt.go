package model

// PromptDescriptor carries everything a transport needs to render the next
// question: the active question, rendering hints, the pending error text (if
// the previous reply failed validation) and the ids already answered.
type PromptDescriptor struct {
	QuestionID   string       `json:"questionId"`
	Prompt       string       `json:"prompt"`
	Kind         QuestionKind `json:"kind"`
	Options      []string     `json:"options,omitempty"`
	OtherSpecify bool         `json:"otherSpecify,omitempty"`
	Hint         string       `json:"hint,omitempty"`

	// Position inside a composite question, 1-based for display.
	// Instance is zero for plain questions and group fields.
	Instance   int `json:"instance,omitempty"`
	FieldIndex int `json:"fieldIndex,omitempty"`
	FieldCount int `json:"fieldCount,omitempty"`

	// Error holds the most recent validation failure for this question;
	// Retries counts consecutive failures. Both reset on success.
	Error   string `json:"error,omitempty"`
	Retries int    `json:"retries,omitempty"`

	// Confirming is set when the engine is waiting on a yes/no reply to a
	// pending destructive edit rather than on a schema question.
	Confirming bool `json:"confirming,omitempty"`

	Completed []string `json:"completed"`
	Progress  Progress `json:"progress"`
}

// Progress counts completed top-level questions.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// CompletionRecord is the terminal output of one interview: every top-level
// answer keyed by question id, in the order the questions were completed.
type CompletionRecord struct {
	Title   string           `json:"title" bson:"title"`
	Order   []string         `json:"order" bson:"order"`
	Answers map[string]Value `json:"answers" bson:"answers"`
}

// EditOutcome is the result of requesting an edit to an earlier answer.
// Either the edit was applied (Applied, with the resumed Prompt) or it needs
// confirmation first (RequiresConfirmation, with the warning Message).
type EditOutcome struct {
	Applied              bool               `json:"applied"`
	RequiresConfirmation bool               `json:"requiresConfirmation"`
	Message              string             `json:"message,omitempty"`
	Strategy             NavigationStrategy `json:"strategy"`
	Prompt               *PromptDescriptor  `json:"prompt,omitempty"`
}
