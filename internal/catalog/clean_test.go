package catalog

import "testing"

func TestCleanField(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Slow cooked lentils", "Slow cooked lentils"},
		{"pure noise becomes empty", "Thumb up outline", ""},
		{"percentage stripped", "Paneer Tikka 93%", "Paneer Tikka"},
		{"like count stripped", "Dal Makhani (30)", "Dal Makhani"},
		{"noise inside tags", "Vegetarian;Thumb up outline;Spicy", "Vegetarian;Spicy"},
		{"most liked badge", "No. 1 most liked;Bestseller", "Bestseller"},
		{"duplicate separators collapse", "Spicy;;Vegetarian", "Spicy;Vegetarian"},
		{"empty input", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CleanField(c.in); got != c.want {
				t.Errorf("CleanField(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestScrubPreservesRowCountAndReportsChanges(t *testing.T) {
	rows := []Row{
		{Section: "Starters", Name: "Paneer Tikka 93%", Tags: "Vegetarian;Thumb up outline"},
		{Section: "Mains", Name: "Dal Makhani", Description: "Slow cooked"},
	}

	cleaned, changes := Scrub(rows)

	if len(cleaned) != 2 {
		t.Fatalf("rows = %d, want 2", len(cleaned))
	}
	if cleaned[0].Name != "Paneer Tikka" {
		t.Errorf("name = %q", cleaned[0].Name)
	}
	if cleaned[0].Tags != "Vegetarian" {
		t.Errorf("tags = %q", cleaned[0].Tags)
	}
	if cleaned[1] != rows[1] {
		t.Errorf("clean row mutated: %+v", cleaned[1])
	}

	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}
	for _, ch := range changes {
		if ch.Row != 1 {
			t.Errorf("change on row %d, want 1", ch.Row)
		}
	}
}
