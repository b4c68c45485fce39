package validate

import (
	"regexp"
	"strings"
	"time"

	"formwoz/internal/model"
)

// dateLayouts are tried in order against the separator-normalized input.
// Year-first wins, then month-first (matching the permissive parser the
// questionnaire was written against), then day-first for inputs like
// "13-06-2025" that month-first cannot accept.
var dateLayouts = []string{
	"2006-1-2",
	"1-2-2006",
	"2-1-2006",
	"2006-Jan-2",
	"Jan-2-2006",
	"2-Jan-2006",
	"2006-January-2",
	"January-2-2006",
	"2-January-2006",
}

var dateSeparators = regexp.MustCompile(`[\s/.,]+`)

func parseDate(reply string) (model.Value, error) {
	s := strings.TrimSpace(reply)
	if s == "" {
		return model.Value{}, model.Errf(model.BadFormat, "please enter a date (e.g. 2025-06-12)")
	}
	// Unify every separator style to hyphens so one layout list covers
	// "2025/06/12", "12.06.2025" and "June 12, 2025" alike.
	norm := dateSeparators.ReplaceAllString(s, "-")
	norm = strings.Trim(norm, "-")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return model.Value{Kind: model.ValueDate, Text: t.Format("2006-01-02")}, nil
		}
	}
	return model.Value{}, model.Errf(model.BadFormat, "%q is not a date I recognise (e.g. 2025-06-12)", reply)
}

var bareDigits = regexp.MustCompile(`^\d{1,2}$`)

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04pm",
	"3:04:05pm",
	"3pm",
}

func parseTime(reply string) (model.Value, error) {
	s := strings.TrimSpace(reply)
	// A bare 1-2 digit number ("2") is ambiguous between 02:00 and a
	// malformed reply; force the respondent to be explicit.
	if bareDigits.MatchString(s) {
		return model.Value{}, model.Errf(model.BadFormat, "time format unclear, please use HH:MM (e.g. 14:35 or 02:00)")
	}
	norm := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, norm)
		if err != nil {
			continue
		}
		// A parser defaulting ambiguous text to midnight would slip
		// through unnoticed; only a literal midnight is accepted.
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && s != "00:00" && s != "0:00" {
			return model.Value{}, model.Errf(model.BadFormat, "time format unclear, please use HH:MM (e.g. 14:35 or 02:00)")
		}
		return model.Value{Kind: model.ValueTime, Text: t.Format("15:04")}, nil
	}
	return model.Value{}, model.Errf(model.BadFormat, "%q is not a valid time, please use HH:MM (e.g. 14:35)", reply)
}
