package service

import "context"

// Preprocessor rewrites the bot's outgoing utterance before it reaches the
// respondent. Implementations range from a no-op to an LLM rephraser; the
// interview flow never depends on what comes back, only the surface text
// changes.
type Preprocessor interface {
	Rephrase(ctx context.Context, text string) (string, error)
}

// NopPreprocessor passes utterances through unchanged.
type NopPreprocessor struct{}

func (NopPreprocessor) Rephrase(_ context.Context, text string) (string, error) {
	return text, nil
}
