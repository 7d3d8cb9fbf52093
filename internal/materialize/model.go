// Package materialize turns a reconciled catalog into relational
// document/section/entry/asset records inside one transaction.
package materialize

import "time"

// Document is the root of one import run. Everything beneath it is
// created together and never mutated by this pipeline afterwards.
type Document struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Sections  []Section
}

// Section position is a dense 1-based index in first-seen row order.
type Section struct {
	ID       string
	Name     string
	Position int
	Entries  []Entry
}

type Entry struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Tags        []string
	Asset       *AssetRef
}

// AssetRef links an entry to its published image.
type AssetRef struct {
	ID       string
	AssetID  string
	Filename string
	URL      string
}

// State tracks a materialization run for reporting.
type State string

const (
	StateValidating State = "validating"
	StateGrouping   State = "grouping"
	StateWriting    State = "writing"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)
