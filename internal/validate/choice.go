package validate

import (
	"regexp"
	"strconv"
	"strings"

	"formwoz/internal/model"
)

var (
	slashSpacing  = regexp.MustCompile(`\s*/\s*`)
	hyphenSpacing = regexp.MustCompile(`\s*-\s*`)
	wordSplit     = regexp.MustCompile(`[-/\s]+`)
	tokenSplit    = regexp.MustCompile(`[,;]`)
	allDigits     = regexp.MustCompile(`^\d+$`)
)

var normalizeReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
)

// Normalize maps a choice token or option onto its comparison form:
// lower-cased, dash and quote variants unified, spacing around slashes and
// hyphens collapsed. Normalizing an already-normalized string is a no-op.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = normalizeReplacer.Replace(text)
	text = slashSpacing.ReplaceAllString(text, "/")
	text = hyphenSpacing.ReplaceAllString(text, "-")
	return strings.Join(strings.Fields(text), " ")
}

// otherPatterns recognise a compound "other" reply carrying its own detail,
// e.g. "other 4", "4 other", "other: heavy blizzard", "other - 4".
var otherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^other\s+(.+)`),
	regexp.MustCompile(`^(.+)\s+other$`),
	regexp.MustCompile(`^other:\s*(.+)`),
	regexp.MustCompile(`^other\s*-\s*(.+)`),
}

// bareOther are replies that name the escape hatch without any detail; they
// trigger a re-prompt for the detail rather than a rejection.
var bareOther = map[string]bool{
	"other": true, "else": true, "different": true,
	"something else": true, "misc": true, "miscellaneous": true,
}

type option struct {
	norm, orig string
}

// parseChoice resolves a reply against a question's option list. Multi-mode
// splits the reply on commas/semicolons and resolves each token
// independently, preserving order and duplicates.
func parseChoice(q *model.Question, reply string, multi bool) (model.Value, error) {
	var parts []string
	if multi {
		for _, p := range tokenSplit.Split(reply, -1) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	} else {
		parts = []string{strings.TrimSpace(reply)}
	}

	opts := make([]option, len(q.Options))
	for i, o := range q.Options {
		opts[i] = option{norm: Normalize(o), orig: o}
	}

	var canonical []string
	for _, part := range parts {
		key := Normalize(strings.TrimRight(part, "."))

		if q.OtherSpecify {
			for _, pat := range otherPatterns {
				if m := pat.FindStringSubmatch(key); m != nil {
					if detail := strings.TrimSpace(m[1]); detail != "" {
						return model.ChoiceValue("Other", detail), nil
					}
				}
			}
			if bareOther[key] {
				return model.Value{}, model.Errf(model.NeedsSpecification,
					"please specify what 'other' option you mean (e.g. '4 vehicles' or 'other: heavy blizzard')")
			}
		}

		// Exact normalized match is the most explicit resolution.
		if orig, ok := exactMatch(opts, key); ok {
			canonical = append(canonical, orig)
			continue
		}

		if allDigits.MatchString(key) {
			resolved, other, ok := resolveNumeric(q, opts, key, part)
			if other {
				return model.ChoiceValue("Other", part), nil
			}
			if ok {
				canonical = append(canonical, resolved)
				continue
			}
		}

		if orig, ok := fuzzyMatch(opts, key); ok {
			canonical = append(canonical, orig)
			continue
		}

		if q.OtherSpecify {
			// Unmatched input becomes the other-detail itself.
			if multi {
				canonical = append(canonical, part)
				return model.Value{Kind: model.ValueMulti, List: canonical, Other: part}, nil
			}
			return model.ChoiceValue("Other", part), nil
		}
		return model.Value{}, model.Errf(model.NotAnOption, "%q is not a valid option", part)
	}

	if multi {
		return model.Value{Kind: model.ValueMulti, List: canonical}, nil
	}
	if len(canonical) == 0 {
		return model.Value{}, model.Errf(model.NotAnOption, "no option given")
	}
	return model.Value{Kind: model.ValueChoice, Choice: canonical[0]}, nil
}

func exactMatch(opts []option, key string) (string, bool) {
	for _, o := range opts {
		if o.norm == key {
			return o.orig, true
		}
	}
	return "", false
}

// resolveNumeric decides whether a purely numeric token selects an option by
// 1-based position or is itself a value for the "Other" escape hatch. A pure
// numeric-options list ("1","2","3","Other") must read "4" as the value four
// rather than an out-of-range index, while a semantic options list must read
// "2" as positional selection.
func resolveNumeric(q *model.Question, opts []option, key, part string) (resolved string, other bool, ok bool) {
	n, _ := strconv.Atoi(key)
	idx := n - 1
	if idx >= 0 && idx < len(q.Options) {
		if q.OtherSpecify && numericOptionsOnly(q.Options) && !hasDigitOption(q.Options, n) {
			return "", true, false
		}
		return q.Options[idx], false, true
	}
	if q.OtherSpecify {
		return "", true, false
	}
	return "", false, false
}

func numericOptionsOnly(options []string) bool {
	for _, opt := range options {
		if !allDigits.MatchString(opt) && opt != "Other" {
			return false
		}
	}
	return true
}

func hasDigitOption(options []string, n int) bool {
	for _, opt := range options {
		if allDigits.MatchString(opt) {
			if v, err := strconv.Atoi(opt); err == nil && v == n {
				return true
			}
		}
	}
	return false
}

// fuzzyMatch is the last resolution attempt before the other-fallback:
// substring containment either way, the literal "none" against a "None"
// option, or identical word sets under flexible separators so that
// "turning left" matches "Turning-Left".
func fuzzyMatch(opts []option, key string) (string, bool) {
	for _, o := range opts {
		if o.norm == "none" && key == "none" {
			return o.orig, true
		}
		if strings.Contains(key, o.norm) || strings.Contains(o.norm, key) {
			return o.orig, true
		}
		if wordSetsEqual(key, o.norm) {
			return o.orig, true
		}
	}
	return "", false
}

func wordSetsEqual(a, b string) bool {
	setOf := func(s string) map[string]bool {
		set := make(map[string]bool)
		for _, w := range wordSplit.Split(s, -1) {
			if w != "" {
				set[w] = true
			}
		}
		return set
	}
	sa, sb := setOf(a), setOf(b)
	if len(sa) != len(sb) {
		return false
	}
	for w := range sa {
		if !sb[w] {
			return false
		}
	}
	return true
}
