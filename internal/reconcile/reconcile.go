// Package reconcile matches freshly transcribed catalog rows to
// previously published image assets by name.
package reconcile

import (
	"log/slog"
	"sort"
	"strings"

	"menuforge/internal/catalog"
	"menuforge/internal/publish"
	"menuforge/internal/slug"
)

// Outcome records how a row's asset reference was resolved.
type Outcome string

const (
	OutcomeExact          Outcome = "exact-match"
	OutcomeFuzzy          Outcome = "fuzzy-match"
	OutcomeNewlyPublished Outcome = "newly-published"
	OutcomeNoAsset        Outcome = "no-asset"
)

type Config struct {
	// FuzzyThreshold is the minimum similarity for a fuzzy pairing.
	FuzzyThreshold float64
}

func DefaultConfig() Config {
	return Config{FuzzyThreshold: 0.8}
}

// RowResult is one reconciled row with its resolution audit trail.
type RowResult struct {
	Row     catalog.Row `json:"row"`
	Outcome Outcome     `json:"outcome"`
	// MatchedName is the old-catalog name a fuzzy pairing reused.
	MatchedName string  `json:"matched_name,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// Result preserves newRows order exactly; Counts summarizes outcomes for
// the operator report.
type Result struct {
	Rows   []RowResult     `json:"rows"`
	Counts map[Outcome]int `json:"counts"`
}

// CatalogRows extracts the reconciled interchange rows in order.
func (r *Result) CatalogRows() []catalog.Row {
	rows := make([]catalog.Row, len(r.Rows))
	for i, rr := range r.Rows {
		rows[i] = rr.Row
	}
	return rows
}

// oldEntry keeps oldCatalog iteration order for deterministic tie-breaks.
type oldEntry struct {
	name string
	row  catalog.Row
}

// Reconcile resolves an asset reference for every row of newRows:
// exact name match against oldRows first, then fuzzy match above the
// threshold, then a freshly published asset whose sanitized stem overlaps
// the row's slug, and finally no asset at all. Rows are never dropped or
// reordered.
func Reconcile(oldRows, newRows []catalog.Row, published map[string]publish.PublishedAsset, cfg Config) *Result {
	// Built once per call: old rows that actually carry an asset.
	var lookup []oldEntry
	byName := make(map[string]catalog.Row)
	for _, row := range oldRows {
		if !row.HasImage || (row.ImageID == "" && row.ImageURL == "") {
			continue
		}
		if _, dup := byName[row.Name]; dup {
			continue // first occurrence wins
		}
		byName[row.Name] = row
		lookup = append(lookup, oldEntry{name: row.Name, row: row})
	}

	// Map iteration order is random; sort once for determinism.
	publishedNames := make([]string, 0, len(published))
	for name := range published {
		publishedNames = append(publishedNames, name)
	}
	sort.Strings(publishedNames)

	result := &Result{
		Rows:   make([]RowResult, 0, len(newRows)),
		Counts: map[Outcome]int{},
	}

	for _, row := range newRows {
		rr := resolve(row, byName, lookup, publishedNames, published, cfg)
		result.Rows = append(result.Rows, rr)
		result.Counts[rr.Outcome]++
	}
	return result
}

func resolve(
	row catalog.Row,
	byName map[string]catalog.Row,
	lookup []oldEntry,
	publishedNames []string,
	published map[string]publish.PublishedAsset,
	cfg Config,
) RowResult {
	// Exact, case-sensitive.
	if old, ok := byName[row.Name]; ok {
		return RowResult{Row: copyAsset(row, old), Outcome: OutcomeExact}
	}

	// Fuzzy: best similarity at or above the threshold; on a tie the
	// entry seen first in the old catalog wins.
	var (
		bestScore float64
		bestEntry *oldEntry
	)
	for i := range lookup {
		score := Similarity(row.Name, lookup[i].name)
		if score > bestScore {
			bestScore = score
			bestEntry = &lookup[i]
		}
	}
	if bestEntry != nil && bestScore >= cfg.FuzzyThreshold {
		slog.Info("fuzzy asset match",
			"new", row.Name, "old", bestEntry.name, "score", bestScore)
		return RowResult{
			Row:         copyAsset(row, bestEntry.row),
			Outcome:     OutcomeFuzzy,
			MatchedName: bestEntry.name,
			Score:       bestScore,
		}
	}

	// Newly published: sanitized stems overlapping in either direction.
	rowSlug := slug.Make(row.Name)
	if rowSlug != "" {
		for _, filename := range publishedNames {
			stem := slug.Stem(filename)
			if stem == "" {
				continue
			}
			if strings.Contains(stem, rowSlug) || strings.Contains(rowSlug, stem) {
				asset := published[filename]
				out := row
				out.HasImage = true
				out.ImageID = asset.ID
				out.ImageFilename = asset.Filename
				out.ImageURL = asset.URL
				return RowResult{Row: out, Outcome: OutcomeNewlyPublished}
			}
		}
	}

	out := row
	out.HasImage = false
	out.ImageID, out.ImageFilename, out.ImageURL = "", "", ""
	return RowResult{Row: out, Outcome: OutcomeNoAsset}
}

func copyAsset(dst, src catalog.Row) catalog.Row {
	dst.HasImage = true
	dst.ImageID = src.ImageID
	dst.ImageFilename = src.ImageFilename
	dst.ImageURL = src.ImageURL
	return dst
}
