package materialize

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"menuforge/internal/catalog"
)

// fakeRepository mirrors the all-or-nothing contract: Save either keeps
// the whole document or nothing.
type fakeRepository struct {
	saved  []*Document
	failOn func(doc *Document) error
}

func (f *fakeRepository) Save(ctx context.Context, doc *Document) error {
	if f.failOn != nil {
		if err := f.failOn(doc); err != nil {
			return err
		}
	}
	f.saved = append(f.saved, doc)
	return nil
}

func validRows() []catalog.Row {
	return []catalog.Row{
		{Section: "Starters", Name: "Paneer Tikka", Price: "250", Tags: "Vegetarian;Spicy",
			HasImage: true, ImageID: "img-1", ImageFilename: "paneer-tikka.jpg", ImageURL: "https://cdn/1.jpg"},
		{Section: "Starters", Name: "Veg Spring Rolls", Price: "180"},
		{Section: "Mains", Name: "Dal Makhani", Price: "320.50"},
		{Section: "Starters", Name: "Chilli Paneer", Price: "270"},
	}
}

func TestMaterializeGroupsSectionsInFirstSeenOrder(t *testing.T) {
	repo := &fakeRepository{}
	run, err := New(repo).Materialize(context.Background(), "dinner-menu", validRows(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.State != StateCommitted {
		t.Fatalf("state = %q", run.State)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved %d documents", len(repo.saved))
	}

	doc := repo.saved[0]
	var names []string
	var positions []int
	for _, s := range doc.Sections {
		names = append(names, s.Name)
		positions = append(positions, s.Position)
	}
	if !reflect.DeepEqual(names, []string{"Starters", "Mains"}) {
		t.Errorf("section order = %v", names)
	}
	if !reflect.DeepEqual(positions, []int{1, 2}) {
		t.Errorf("positions = %v, want dense 1-based", positions)
	}

	// Late Starters row lands back in the first section.
	if len(doc.Sections[0].Entries) != 3 {
		t.Errorf("starters entries = %d, want 3", len(doc.Sections[0].Entries))
	}

	entry := doc.Sections[0].Entries[0]
	if entry.Price != 250 {
		t.Errorf("price = %f", entry.Price)
	}
	if !reflect.DeepEqual(entry.Tags, []string{"Vegetarian", "Spicy"}) {
		t.Errorf("tags = %v", entry.Tags)
	}
	if entry.Asset == nil || entry.Asset.AssetID != "img-1" {
		t.Errorf("asset = %+v", entry.Asset)
	}
	if doc.Sections[0].Entries[1].Asset != nil {
		t.Error("imageless entry grew an asset ref")
	}
}

func TestValidationFailureWritesNothing(t *testing.T) {
	rows := validRows()
	rows[2].Price = "market price" // one bad row

	repo := &fakeRepository{}
	run, err := New(repo).Materialize(context.Background(), "doc", rows, false)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if run.State != StateFailed {
		t.Errorf("state = %q", run.State)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("%d documents persisted despite validation failure", len(repo.saved))
	}
}

func TestValidationCollectsAllProblems(t *testing.T) {
	rows := []catalog.Row{
		{Section: "", Name: "", Price: "-5"},
		{Section: "Mains", Name: "Ok Dish", Price: "120"},
	}

	_, err := New(&fakeRepository{}).Materialize(context.Background(), "doc", rows, false)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if len(ve.Problems) != 3 {
		t.Errorf("problems = %v, want 3 entries", ve.Problems)
	}
}

func TestRepositoryFailurePropagates(t *testing.T) {
	boom := errors.New("constraint violation")
	repo := &fakeRepository{failOn: func(*Document) error { return boom }}

	run, err := New(repo).Materialize(context.Background(), "doc", validRows(), false)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if run.State != StateFailed {
		t.Errorf("state = %q", run.State)
	}
	if len(repo.saved) != 0 {
		t.Error("document persisted despite write failure")
	}
}

func TestDryRunIssuesNoWrites(t *testing.T) {
	repo := &fakeRepository{}
	run, err := New(repo).Materialize(context.Background(), "doc", validRows(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.saved) != 0 {
		t.Fatal("dry run wrote to the repository")
	}
	if run.Sections != 2 || run.Entries != 4 || run.Assets != 1 {
		t.Errorf("run = %+v", run)
	}
}

func TestEmptyCatalogFails(t *testing.T) {
	_, err := New(&fakeRepository{}).Materialize(context.Background(), "doc", nil, false)
	if err == nil {
		t.Fatal("expected error for empty catalog")
	}
}
