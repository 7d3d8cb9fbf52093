package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"menuforge/internal/catalog"
)

// Repository persists one document tree atomically: either every record
// lands or none do.
type Repository interface {
	Save(ctx context.Context, doc *Document) error
}

// ValidationError aborts the whole run before any write; it lists every
// bad row so the operator fixes the input once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog rows: %s", strings.Join(e.Problems, "; "))
}

type Materializer struct {
	repo Repository
}

func New(repo Repository) *Materializer {
	return &Materializer{repo: repo}
}

// Run is the report of one materialization attempt.
type Run struct {
	State    State     `json:"state"`
	Document *Document `json:"-"`
	Sections int       `json:"sections"`
	Entries  int       `json:"entries"`
	Assets   int       `json:"assets"`
	Error    string    `json:"error,omitempty"`
}

// Materialize validates every row, groups them into sections in
// first-seen order and writes the whole tree in one transaction. With
// dryRun set it stops after grouping and issues no writes. There are no
// automatic retries here: a failed run needs corrected input.
func (m *Materializer) Materialize(ctx context.Context, name string, rows []catalog.Row, dryRun bool) (*Run, error) {
	run := &Run{State: StateValidating}

	if len(rows) == 0 {
		run.State = StateFailed
		run.Error = "empty catalog"
		return run, fmt.Errorf("materialize: empty catalog")
	}

	if err := validate(rows); err != nil {
		run.State = StateFailed
		run.Error = err.Error()
		return run, err
	}

	run.State = StateGrouping
	doc := group(name, rows)
	run.Document = doc
	run.Sections = len(doc.Sections)
	for _, s := range doc.Sections {
		run.Entries += len(s.Entries)
		for _, e := range s.Entries {
			if e.Asset != nil {
				run.Assets++
			}
		}
	}

	if dryRun {
		run.State = StateCommitted
		slog.Info("dry run, no writes issued",
			"sections", run.Sections, "entries", run.Entries)
		return run, nil
	}

	run.State = StateWriting
	if err := m.repo.Save(ctx, doc); err != nil {
		run.State = StateFailed
		run.Error = err.Error()
		return run, fmt.Errorf("materialize %q: %w", name, err)
	}

	run.State = StateCommitted
	slog.Info("catalog materialized", "document", doc.ID,
		"sections", run.Sections, "entries", run.Entries, "assets", run.Assets)
	return run, nil
}

func validate(rows []catalog.Row) error {
	var problems []string
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			problems = append(problems, fmt.Sprintf("row %d: empty name", i+1))
		}
		if strings.TrimSpace(row.Section) == "" {
			problems = append(problems, fmt.Sprintf("row %d: empty section", i+1))
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row.Price), 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: price %q does not parse", i+1, row.Price))
		} else if price < 0 {
			problems = append(problems, fmt.Sprintf("row %d: negative price %q", i+1, row.Price))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func group(name string, rows []catalog.Row) *Document {
	doc := &Document{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	index := map[string]int{}
	for _, row := range rows {
		pos, ok := index[row.Section]
		if !ok {
			doc.Sections = append(doc.Sections, Section{
				ID:       uuid.New().String(),
				Name:     row.Section,
				Position: len(doc.Sections) + 1,
			})
			pos = len(doc.Sections) - 1
			index[row.Section] = pos
		}

		price, _ := strconv.ParseFloat(strings.TrimSpace(row.Price), 64)
		entry := Entry{
			ID:          uuid.New().String(),
			Name:        row.Name,
			Description: row.Description,
			Price:       price,
			Tags:        row.SplitTags(),
		}
		if row.HasImage && (row.ImageID != "" || row.ImageURL != "") {
			entry.Asset = &AssetRef{
				ID:       uuid.New().String(),
				AssetID:  row.ImageID,
				Filename: row.ImageFilename,
				URL:      row.ImageURL,
			}
		}
		doc.Sections[pos].Entries = append(doc.Sections[pos].Entries, entry)
	}

	return doc
}
