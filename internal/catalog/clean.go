package catalog

import (
	"regexp"
	"strings"
)

// Phrases the ordering platform injects into exported menus. They carry no
// catalog meaning and must not survive into the import file.
var unwantedPhrases = []string{
	"Plus small",
	"Thumb up outline",
	"No. 1 most liked",
	"No. 2 most liked",
	"No. 3 most liked",
}

var (
	percentRe    = regexp.MustCompile(`\d+%`)
	countRe      = regexp.MustCompile(`\(\d+\)`)
	dupSemiRe    = regexp.MustCompile(`;\s*;`)
	dupCommaRe   = regexp.MustCompile(`,\s*,`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	emptyParenRe = regexp.MustCompile(`\(\s*\)`)
)

// FieldChange records one scrubbed field for the operator report.
type FieldChange struct {
	Row    int    `json:"row"` // 1-based data row
	Column string `json:"column"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Scrub removes platform marketing noise from every text column of every
// row. Rows are never dropped; the returned changes list what was touched.
func Scrub(rows []Row) ([]Row, []FieldChange) {
	out := make([]Row, len(rows))
	var changes []FieldChange

	for i, row := range rows {
		cleaned := row
		fields := []struct {
			column string
			val    *string
		}{
			{"section", &cleaned.Section},
			{"name", &cleaned.Name},
			{"description", &cleaned.Description},
			{"tags", &cleaned.Tags},
		}
		for _, f := range fields {
			before := *f.val
			after := CleanField(before)
			if after != before {
				*f.val = after
				changes = append(changes, FieldChange{
					Row: i + 1, Column: f.column, Before: before, After: after,
				})
			}
		}
		out[i] = cleaned
	}
	return out, changes
}

// CleanField strips unwanted phrases, percentage badges and like-counts
// from one field, then normalizes separator runs for tag-like values.
func CleanField(value string) string {
	if value == "" {
		return value
	}

	for _, phrase := range unwantedPhrases {
		if strings.TrimSpace(value) == phrase {
			return ""
		}
	}

	cleaned := value
	for _, phrase := range unwantedPhrases {
		cleaned = strings.ReplaceAll(cleaned, phrase, "")
	}
	cleaned = percentRe.ReplaceAllString(cleaned, "")
	cleaned = countRe.ReplaceAllString(cleaned, "")

	// Separator cleanup only makes sense for fields that held list content.
	if strings.Contains(value, TagDelimiter) || containsUnwanted(value) {
		cleaned = dupSemiRe.ReplaceAllString(cleaned, ";")
		cleaned = dupCommaRe.ReplaceAllString(cleaned, ",")
		cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
		cleaned = strings.Trim(cleaned, " ;,")
		cleaned = strings.TrimSpace(emptyParenRe.ReplaceAllString(cleaned, ""))
	} else {
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

func containsUnwanted(value string) bool {
	for _, phrase := range unwantedPhrases {
		if strings.Contains(value, phrase) {
			return true
		}
	}
	return false
}
