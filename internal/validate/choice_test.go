package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formwoz/internal/model"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Dark – Lit  ", "dark-lit"},
		{"Dark—Lit", "dark-lit"},
		{"Dark - Lit", "dark-lit"},
		{"Wet / Icy", "wet/icy"},
		{"don’t know", "don't know"},
		{"  Multiple   Spaces  ", "multiple spaces"},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
		// Normalizing is idempotent.
		assert.Equal(t, got, Normalize(got), "input %q", tc.in)
	}
}

func singleChoice(options []string, other bool) *model.Question {
	return &model.Question{
		ID:           "c",
		Kind:         model.KindSingleChoice,
		Options:      options,
		OtherSpecify: other,
	}
}

func TestSingleChoiceExactAndFuzzy(t *testing.T) {
	q := singleChoice([]string{"Daylight", "Dark-Lit", "Dark-Unlit"}, false)
	cases := []struct {
		in, want string
	}{
		{"Daylight", "Daylight"},
		{"daylight", "Daylight"},
		{"dark – lit", "Dark-Lit"},   // en dash plus spacing
		{"dark lit", "Dark-Lit"},     // word-set match across separators
		{"Dark / Lit", "Dark-Lit"},   // slash treated as a separator
		{"light", "Daylight"},        // substring containment
		{"Dark-Lit.", "Dark-Lit"},    // trailing period stripped
	}
	for _, tc := range cases {
		v, err := Validate(q, tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, v.Choice, "input %q", tc.in)
	}
}

func TestSingleChoiceRejectsUnknownWithoutOther(t *testing.T) {
	q := singleChoice([]string{"Minor", "Moderate", "Severe"}, false)
	_, err := Validate(q, "catastrophic")
	require.Error(t, err)
	assert.Equal(t, model.NotAnOption, kindOf(t, err))
}

func TestSingleChoicePositionalNumbers(t *testing.T) {
	q := singleChoice([]string{"Minor", "Moderate", "Severe"}, false)
	v, err := Validate(q, "2")
	require.NoError(t, err)
	assert.Equal(t, "Moderate", v.Choice)

	_, err = Validate(q, "9")
	require.Error(t, err)
	assert.Equal(t, model.NotAnOption, kindOf(t, err))
}

func TestNumericOptionsReadDigitsAsValues(t *testing.T) {
	// When the options themselves are numbers, "2" selects the option "2"
	// and an out-of-list "4" becomes the other-detail rather than an index.
	q := singleChoice([]string{"1", "2", "3", "Other"}, true)

	v, err := Validate(q, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", v.Choice)
	assert.Empty(t, v.Other)

	v, err = Validate(q, "4")
	require.NoError(t, err)
	assert.Equal(t, "Other", v.Choice)
	assert.Equal(t, "4", v.Other)
}

func TestOtherHandling(t *testing.T) {
	q := singleChoice([]string{"Rain", "Snow", "Clear"}, true)

	// Bare "other" needs a detail before it can be stored.
	_, err := Validate(q, "other")
	require.Error(t, err)
	assert.Equal(t, model.NeedsSpecification, kindOf(t, err))

	// Compound forms carry the detail inline.
	for _, in := range []string{"other: heavy blizzard", "other heavy blizzard", "other - heavy blizzard"} {
		v, err := Validate(q, in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "Other", v.Choice, "input %q", in)
		assert.Equal(t, "heavy blizzard", v.Other, "input %q", in)
	}

	// An unmatched reply falls back to the escape hatch.
	v, err := Validate(q, "volcanic ash")
	require.NoError(t, err)
	assert.Equal(t, "Other", v.Choice)
	assert.Equal(t, "volcanic ash", v.Other)
}

func TestNoneOption(t *testing.T) {
	q := singleChoice([]string{"Seatbelt", "Airbag", "None"}, false)
	v, err := Validate(q, "none")
	require.NoError(t, err)
	assert.Equal(t, "None", v.Choice)
}

func TestMultiChoice(t *testing.T) {
	q := &model.Question{
		ID:      "m",
		Kind:    model.KindMultiChoice,
		Options: []string{"Rain", "Fog", "Ice", "Wind"},
	}

	v, err := Validate(q, "rain, fog; ICE")
	require.NoError(t, err)
	assert.Equal(t, model.ValueMulti, v.Kind)
	assert.Equal(t, []string{"Rain", "Fog", "Ice"}, v.List)

	_, err = Validate(q, "rain, sleet")
	require.Error(t, err)
	assert.Equal(t, model.NotAnOption, kindOf(t, err))
}

func TestMultiChoiceOtherFallback(t *testing.T) {
	q := &model.Question{
		ID:           "m",
		Kind:         model.KindMultiChoice,
		Options:      []string{"Rain", "Fog"},
		OtherSpecify: true,
	}
	v, err := Validate(q, "rain, sandstorm")
	require.NoError(t, err)
	assert.Equal(t, model.ValueMulti, v.Kind)
	assert.Equal(t, []string{"Rain", "sandstorm"}, v.List)
	assert.Equal(t, "sandstorm", v.Other)
}
