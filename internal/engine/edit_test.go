package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formwoz/internal/model"
)

// finishReport completes the whole interview with injuries answered yes.
func finishReport(t *testing.T, e *Engine) *model.CompletionRecord {
	t.Helper()
	e.Start()
	drive(t, e,
		"2025-06-12",
		"yes", "Driver had a sprained wrist",
		"Jane Doe", "555-0101",
		"2",
		"Toyota Corolla", "AB-123",
		"Ford Focus", "CD-456",
	)
	_, rec, err := e.Submit("minor")
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestEditSimpleAnswerContinues(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	drive(t, e, "2025-06-12", "no", "Jane Doe")

	out, err := e.RequestEdit("report_date", "2025-06-13")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.False(t, out.RequiresConfirmation)
	assert.Equal(t, model.StrategyContinue, out.Strategy.Kind)

	// The flow stays where it was.
	require.NotNil(t, out.Prompt)
	assert.Equal(t, "reporter_phone", out.Prompt.QuestionID)

	rec := func() *model.CompletionRecord {
		drive(t, e, "555-0101", "1", "Toyota Corolla", "AB-123")
		_, rec, err := e.Submit("minor")
		require.NoError(t, err)
		return rec
	}()
	require.NotNil(t, rec)
	assert.Equal(t, "2025-06-13", rec.Answers["report_date"].Text)
}

func TestEditRejectsUnansweredQuestion(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	drive(t, e, "2025-06-12")

	_, err := e.RequestEdit("severity", "Minor")
	assert.Error(t, err)
}

func TestEditRejectsUnknownQuestion(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	_, err := e.RequestEdit("no_such_id", "x")
	assert.Error(t, err)
}

func TestEditInvalidValueLeavesStateAlone(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	drive(t, e, "2025-06-12", "no", "Jane Doe")

	before := e.Prompt()
	_, err := e.RequestEdit("report_date", "definitely not a date")
	require.Error(t, err)

	after := e.Prompt()
	assert.Equal(t, before.QuestionID, after.QuestionID)
	assert.Equal(t, before.Completed, after.Completed)
}

func TestEditBranchYesToNoRemovesFollowUp(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	drive(t, e,
		"2025-06-12",
		"yes", "Driver had a sprained wrist",
		"Jane Doe", "555-0101",
	)

	out, err := e.RequestEdit("injuries", "no")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, model.StrategyRestartBranch, out.Strategy.Kind)
	assert.Contains(t, out.Strategy.DataToClear, "injury_details")

	// The branch question is re-asked; the cleared follow-up stays gone.
	require.NotNil(t, out.Prompt)
	assert.Equal(t, "injuries", out.Prompt.QuestionID)
	assert.NotContains(t, out.Prompt.Completed, "injury_details")

	// Answering no resumes at the next unanswered question, skipping the
	// already-completed group.
	p := drive(t, e, "no")
	assert.Equal(t, "vehicle_count", p.QuestionID)
}

func TestEditBranchUnchangedContinues(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	drive(t, e,
		"2025-06-12",
		"yes", "Driver had a sprained wrist",
		"Jane Doe",
	)

	out, err := e.RequestEdit("injuries", "yes")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, model.StrategyContinue, out.Strategy.Kind)
	assert.Equal(t, "reporter_phone", out.Prompt.QuestionID)
}

func TestEditCountDecreaseNeedsConfirmation(t *testing.T) {
	e := New(testSchema(t))
	finishReport(t, e)

	out, err := e.RequestEdit("vehicle_count", "1")
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.True(t, out.RequiresConfirmation)
	assert.Equal(t, model.StrategyConfirmAndRestart, out.Strategy.Kind)
	assert.NotEmpty(t, out.Message)
	assert.Contains(t, out.Message, "2 to 1")

	// The prompt now asks for the confirmation.
	require.NotNil(t, out.Prompt)
	assert.True(t, out.Prompt.Confirming)
}

func TestEditCountDecreaseDeclined(t *testing.T) {
	e := New(testSchema(t))
	rec := finishReport(t, e)

	_, err := e.RequestEdit("vehicle_count", "1")
	require.NoError(t, err)

	_, err = e.ConfirmEdit(false)
	require.NoError(t, err)

	// Nothing changed.
	require.True(t, e.Done())
	after := e.Completion()
	assert.Equal(t, rec.Answers["vehicle_count"], after.Answers["vehicle_count"])
	assert.Len(t, after.Answers["vehicles"].Rows, 2)
}

func TestEditCountDecreaseConfirmed(t *testing.T) {
	e := New(testSchema(t))
	finishReport(t, e)

	_, err := e.RequestEdit("vehicle_count", "1")
	require.NoError(t, err)

	p, err := e.ConfirmEdit(true)
	require.NoError(t, err)

	// The gate is re-asked and the gated entries were dropped.
	require.NotNil(t, p)
	assert.Equal(t, "vehicle_count", p.QuestionID)
	assert.NotContains(t, p.Completed, "vehicles")

	// Re-answering collects exactly one entry, then the interview is done
	// again because everything else survived the edit.
	drive(t, e, "1", "Toyota Corolla")
	_, rec, err := e.Submit("AB-123")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Len(t, rec.Answers["vehicles"].Rows, 1)
	assert.Equal(t, float64(1), rec.Answers["vehicle_count"].Number)
}

func TestEditCountIncreaseContinues(t *testing.T) {
	e := New(testSchema(t))
	finishReport(t, e)

	out, err := e.RequestEdit("vehicle_count", "3")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, model.StrategyContinue, out.Strategy.Kind)
}

func TestConfirmationViaSubmitReply(t *testing.T) {
	e := New(testSchema(t))
	finishReport(t, e)

	_, err := e.RequestEdit("vehicle_count", "1")
	require.NoError(t, err)

	// An unparseable reply re-asks the confirmation.
	p, _, err := e.Submit("maybe")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Confirming)
	assert.Equal(t, 1, p.Retries)

	p, _, err = e.Submit("yes")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "vehicle_count", p.QuestionID)
}

func TestConfirmEditWithoutPending(t *testing.T) {
	e := New(testSchema(t))
	e.Start()
	_, err := e.ConfirmEdit(true)
	assert.Error(t, err)
}
