package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formwoz/internal/model"
)

const sampleYAML = `
title: Accident Report
questions:
  - id: injuries
    question: "Were there any injuries?"
    type: boolean
    followup_if_yes:
      id: injury_table
      question: "Please list the injured"
      type: table
      columns:
        - id: injured_name
          question: "Name"
          type: text
        - id: injury_kind
          question: "Kind of injury"
          type: text
  - id: reporter
    question: "Who is filing this report?"
    type: group
    fields:
      - id: reporter_name
        question: "Your full name"
        type: text
  - id: vehicles
    question: "Vehicle details"
    type: repeat_group
    fields:
      - id: vehicle_make
        question: "Make and model"
        type: text
`

func parseSample(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	return s
}

func TestParseIndexesEveryQuestion(t *testing.T) {
	s := parseSample(t)

	assert.Equal(t, "Accident Report", s.Title)
	assert.Equal(t, 3, s.Len())

	assert.Equal(t, 0, s.MainIndex("injuries"))
	assert.Equal(t, 2, s.MainIndex("vehicles"))
	assert.Equal(t, -1, s.MainIndex("injury_table"), "follow-ups are not top-level")
	assert.Equal(t, -1, s.MainIndex("missing"))

	require.NotNil(t, s.ByID("injury_table"))
	require.NotNil(t, s.ByID("reporter_name"))
	require.NotNil(t, s.ByID("vehicle_make"))
	assert.Nil(t, s.ByID("missing"))

	assert.Equal(t, "injuries", s.FollowUpTrigger("injury_table"))
	assert.Equal(t, "", s.FollowUpTrigger("reporter"))
	assert.Equal(t, "reporter", s.GroupOwner("reporter_name"))
	assert.Equal(t, "vehicles", s.RepeatOwner("vehicle_make"))

	rgs := s.RepeatGroups()
	require.Len(t, rgs, 1)
	assert.Equal(t, "vehicles", rgs[0].ID)
}

func TestParseJSONDocument(t *testing.T) {
	s, err := Parse([]byte(`{
		"title": "Quick Form",
		"questions": [
			{"id": "name", "question": "Your name", "type": "text"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Quick Form", s.Title)
	assert.NotNil(t, s.ByID("name"))
}

func TestInteractiveDegradesTableFollowUp(t *testing.T) {
	s := parseSample(t)

	q := s.Interactive("injury_table")
	require.NotNil(t, q)
	assert.Equal(t, model.KindMultilineText, q.Kind)
	assert.Contains(t, q.Prompt, "separated by commas or semicolons")
	assert.Empty(t, q.Columns)

	// The definition itself is untouched.
	assert.Equal(t, model.KindTable, s.ByID("injury_table").Kind)

	// A top-level question passes through unchanged.
	assert.Equal(t, model.KindGroup, s.Interactive("reporter").Kind)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name, doc string
	}{
		{"empty", `title: T` + "\nquestions: []"},
		{"duplicate id", `
title: T
questions:
  - {id: a, question: "A", type: text}
  - {id: a, question: "A again", type: text}
`},
		{"choice without options", `
title: T
questions:
  - {id: c, question: "Pick", type: single_choice}
`},
		{"duplicate option", `
title: T
questions:
  - {id: c, question: "Pick", type: single_choice, options: ["X", "X"]}
`},
		{"group without fields", `
title: T
questions:
  - {id: g, question: "G", type: group}
`},
		{"followup on non-boolean", `
title: T
questions:
  - id: n
    question: "N"
    type: number
    followup_if_yes: {id: f, question: "F", type: text}
`},
		{"count_from on plain question", `
title: T
questions:
  - {id: n, question: "N", type: number, count_from: n}
`},
		{"count_from unknown id", `
title: T
questions:
  - id: rg
    question: "RG"
    type: repeat_group
    count_from: nowhere
    fields:
      - {id: f, question: "F", type: text}
`},
		{"unknown type", `
title: T
questions:
  - {id: x, question: "X", type: slider}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Accident Report", s.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
