// Package catalog defines the flat menu row exchanged between pipeline
// stages and its CSV interchange format.
package catalog

import "strings"

// TagDelimiter separates tags inside the single tags column.
const TagDelimiter = ";"

// Row is one menu entry in the interchange table. The image columns are
// empty in freshly transcribed catalogs and populated by reconciliation.
type Row struct {
	Section       string
	Name          string
	Description   string
	Price         string
	Tags          string
	HasImage      bool
	ImageID       string
	ImageFilename string
	ImageURL      string
}

// SplitTags returns the de-duplicated, order-preserving tag list.
// Empty fragments are dropped.
func (r Row) SplitTags() []string {
	if strings.TrimSpace(r.Tags) == "" {
		return nil
	}

	seen := map[string]bool{}
	var tags []string
	for _, t := range strings.Split(r.Tags, TagDelimiter) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
