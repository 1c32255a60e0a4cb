package alumdex

import (
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
)

// Record is one alumnus, job posting or event.
type Record = domrec.Record

// Kind is the entity type a record represents.
type Kind = domrec.Kind

// Record kinds.
const (
	KindAlumni = domrec.KindAlumni
	KindJob    = domrec.KindJob
	KindEvent  = domrec.KindEvent
)

// EmptyPolicy decides what a screen shows when both query and filters are empty.
type EmptyPolicy = screen.EmptyPolicy

// Empty policies.
const (
	ShowNone = screen.ShowNone
	ShowAll  = screen.ShowAll
)

// Built-in screens.
const (
	ScreenDirectory = screen.Directory
	ScreenMap       = screen.Map
	ScreenJobs      = screen.Jobs
	ScreenResults   = screen.Results
	ScreenEvents    = screen.Events
)

// SearchResult is the outcome of a one-shot search.
type SearchResult struct {
	Records []Record
	// Total counts every match before the limit was applied.
	Total int
}

// ImportResult is the outcome of one imported record.
type ImportResult struct {
	ID  string
	OK  bool
	Err error
}

// SessionState is a consistent view of a mounted session.
type SessionState struct {
	ID         string
	Screen     string
	Query      string
	Filters    []string
	Category   string
	Searching  bool
	Generation uint64
	Records    []Record
}
