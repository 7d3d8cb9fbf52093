package cmd

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"menuforge/internal/catalog"
	"menuforge/internal/compress"
	"menuforge/internal/materialize"
	"menuforge/internal/publish"
	"menuforge/internal/reconcile"
	"menuforge/internal/slug"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x*11 + y*17) % 251),
				G: uint8((x*5 + y*23) % 241),
				B: uint8((x + y*3) % 239),
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// TestFullPipeline drives compress, publish, reconcile and materialize
// against in-memory collaborators: three oversized photos, an old catalog
// covering two of the three dish names, and one brand-new dish whose
// image only exists among the freshly published assets.
func TestFullPipeline(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	names := []string{"Paneer Tikka", "Dal Makhani", "Gulab Jamun"}
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, slug.Make(n)+".png")
		writePNG(t, p, 2200, 1400)
		paths = append(paths, p)
	}

	// Stage 1: every output within budget or at the floor.
	cfg := compress.DefaultConfig()
	batch := compress.Batch(ctx, paths, cfg, nil)
	if len(batch.Failures) != 0 {
		t.Fatalf("compression failures: %+v", batch.Failures)
	}
	if len(batch.Results) != 3 {
		t.Fatalf("results = %d", len(batch.Results))
	}
	for _, res := range batch.Results {
		if res.Bytes > cfg.MaxBytes && res.Quality != cfg.QualityFloor {
			t.Fatalf("%s: %d bytes at quality %d violates budget-or-floor", res.Source, res.Bytes, res.Quality)
		}
		if res.Width > cfg.MaxWidth {
			t.Fatalf("%s: width %d over cap", res.Source, res.Width)
		}
	}

	// Stage 2: publish through a store that always succeeds.
	items := make([]publish.Item, 0, len(batch.Results))
	for _, res := range batch.Results {
		base := filepath.Base(res.Source)
		items = append(items, publish.Item{
			OriginalFilename: base,
			DesiredName:      slug.Filename("", slug.Stem(base), base),
			ContentType:      "image/jpeg",
			Data:             res.Data,
		})
	}

	pubCfg := publish.DefaultConfig()
	pubCfg.Pacing = 0
	publisher := publish.New(okStore{}, pubCfg)
	published := publisher.Batch(ctx, items, nil)
	if len(published.Failures) != 0 {
		t.Fatalf("publish failures: %+v", published.Failures)
	}
	if len(published.Assets) != 3 {
		t.Fatalf("assets = %d", len(published.Assets))
	}

	// Stage 3: two exact matches against the old catalog, one new dish
	// resolved from the fresh uploads.
	oldRows := []catalog.Row{
		{Section: "Mains", Name: "Paneer Tikka", Price: "250", HasImage: true,
			ImageID: "old-1", ImageFilename: "paneer-tikka.jpg", ImageURL: "https://cdn/old1.jpg"},
		{Section: "Mains", Name: "Dal Makhani", Price: "320", HasImage: true,
			ImageID: "old-2", ImageFilename: "dal-makhani.jpg", ImageURL: "https://cdn/old2.jpg"},
	}
	newRows := []catalog.Row{
		{Section: "Mains", Name: "Paneer Tikka", Price: "260"},
		{Section: "Mains", Name: "Dal Makhani", Price: "330"},
		{Section: "Mains", Name: "Gulab Jamun", Price: "120"},
	}

	result := reconcile.Reconcile(oldRows, newRows, published.Assets, reconcile.DefaultConfig())

	wantOutcomes := []reconcile.Outcome{
		reconcile.OutcomeExact,
		reconcile.OutcomeExact,
		reconcile.OutcomeNewlyPublished,
	}
	for i, want := range wantOutcomes {
		if result.Rows[i].Outcome != want {
			t.Fatalf("row %d outcome = %q, want %q", i, result.Rows[i].Outcome, want)
		}
	}

	// Stage 4: one document, one section, three entries, three assets.
	repo := &captureRepo{}
	run, err := materialize.New(repo).Materialize(ctx, "dinner", result.CatalogRows(), false)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if run.State != materialize.StateCommitted {
		t.Fatalf("state = %q", run.State)
	}
	if len(repo.docs) != 1 {
		t.Fatalf("documents = %d", len(repo.docs))
	}

	doc := repo.docs[0]
	if len(doc.Sections) != 1 {
		t.Fatalf("sections = %d", len(doc.Sections))
	}
	if len(doc.Sections[0].Entries) != 3 {
		t.Fatalf("entries = %d", len(doc.Sections[0].Entries))
	}
	assets := 0
	for _, e := range doc.Sections[0].Entries {
		if e.Asset != nil {
			assets++
		}
	}
	if assets != 3 {
		t.Fatalf("asset refs = %d, want 3", assets)
	}
}

type okStore struct{}

func (okStore) Submit(ctx context.Context, key string, body io.Reader, contentType string) (*publish.Receipt, error) {
	return &publish.Receipt{ID: "id-" + key, URL: "https://cdn.test/" + key}, nil
}

type captureRepo struct {
	docs []*materialize.Document
}

func (c *captureRepo) Save(ctx context.Context, doc *materialize.Document) error {
	c.docs = append(c.docs, doc)
	return nil
}
