package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/debounce"
	"github.com/kailas-cloud/alumdex/internal/domain"
	"github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
	"github.com/kailas-cloud/alumdex/internal/usecase/search"
)

// Snapshot is a consistent view of a session's UI state.
type Snapshot struct {
	ID         string
	Screen     string
	Query      string
	Filters    []string
	Category   string
	Searching  bool
	Generation uint64
	Results    []record.Record
}

// Session is the search state of one mounted screen: query, active filters,
// selected category and the last computed result set. Every change schedules
// a debounced recomputation; results are swapped in under the session lock,
// so readers never see a partial update.
type Session struct {
	mu sync.Mutex

	id      string
	scr     screen.Screen
	records []record.Record

	query     string
	filters   filter.Set
	category  string
	results   []record.Record
	searching bool
	gen       uint64
	touched   time.Time
	closed    bool

	deb      *debounce.Debouncer
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func newSession(
	id string, scr screen.Screen, records []record.Record, delay time.Duration,
	recorder Recorder, logger *zap.Logger, now func() time.Time,
) *Session {
	s := &Session{
		id:       id,
		scr:      scr,
		records:  records,
		deb:      debounce.New(delay),
		recorder: recorder,
		logger:   logger,
		now:      now,
		touched:  now(),
	}
	if cats := scr.Categories(); len(cats) > 0 {
		s.category = cats[0].Name
	}
	s.results = search.Compute(s.records, s.scr, s.query, s.filters)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Screen returns the screen the session was mounted for.
func (s *Session) Screen() screen.Screen { return s.scr }

// SetQuery replaces the query and schedules a recomputation.
func (s *Session) SetQuery(q string) error {
	if len(q) > request.MaxQueryLength {
		return fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, request.MaxQueryLength)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.query = q
	s.scheduleLocked()
	return nil
}

// ToggleFilter flips an option in the active set and schedules a
// recomputation. It reports whether the option is now selected.
func (s *Session) ToggleFilter(raw string) (bool, error) {
	o, err := filter.Parse(raw)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, domain.ErrSessionClosed
	}
	on, err := s.filters.Toggle(o)
	if err != nil {
		return false, err
	}
	s.scheduleLocked()
	return on, nil
}

// ClearFilters empties the active set; the next recomputation uses the query only.
func (s *Session) ClearFilters() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.filters.Clear()
	s.scheduleLocked()
	return nil
}

// SelectCategory switches the category whose options the picker lists.
func (s *Session) SelectCategory(name string) error {
	if _, err := s.scr.Category(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.category = name
	s.touched = s.now()
	return nil
}

// Options derives the options of the selected category from the resident
// collection, narrowed by text.
func (s *Session) Options(text string) ([]string, error) {
	s.mu.Lock()
	name := s.category
	closed := s.closed
	s.touched = s.now()
	s.mu.Unlock()

	if closed {
		return nil, domain.ErrSessionClosed
	}
	cat, err := s.scr.Category(name)
	if err != nil {
		return nil, err
	}
	return search.NarrowOptions(search.DeriveOptions(s.records, cat), text), nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	return Snapshot{
		ID:         s.id,
		Screen:     s.scr.Name(),
		Query:      s.query,
		Filters:    s.filters.Strings(),
		Category:   s.category,
		Searching:  s.searching,
		Generation: s.gen,
		Results:    s.results,
	}
}

// Flush runs a pending recomputation immediately.
func (s *Session) Flush() bool {
	return s.deb.Flush()
}

// Close cancels any pending recomputation. Further mutations fail with
// ErrSessionClosed.
func (s *Session) Close() {
	s.deb.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.searching = false
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) scheduleLocked() {
	s.searching = true
	s.touched = s.now()
	if s.deb.Schedule(s.recompute) {
		s.recorder.Superseded(s.scr.Name())
	}
}

// recompute runs on the debounce timer and always reads the latest state.
func (s *Session) recompute() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	results := search.Compute(s.records, s.scr, s.query, s.filters)
	s.results = results
	// An edit that landed while the timer was firing has already rescheduled.
	s.searching = s.deb.Pending()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.recorder.Recomputed(s.scr.Name(), len(results))
	s.logger.Debug("results recomputed",
		zap.String("session_id", s.id),
		zap.Uint64("generation", gen),
		zap.Int("results", len(results)),
	)
}
