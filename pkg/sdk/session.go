package alumdex

import (
	sessionuc "github.com/kailas-cloud/alumdex/internal/usecase/session"
)

// Session is an interactive search over one screen. Changes are applied
// after the debounce delay; State reports Searching until then.
type Session struct {
	inner    *sessionuc.Session
	sessions sessionUseCase
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.inner.ID() }

// SetQuery replaces the query text.
func (s *Session) SetQuery(q string) error { return s.inner.SetQuery(q) }

// Toggle selects or deselects a "key:value" option and reports whether it
// is now selected.
func (s *Session) Toggle(option string) (bool, error) { return s.inner.ToggleFilter(option) }

// ClearFilters deselects every option.
func (s *Session) ClearFilters() error { return s.inner.ClearFilters() }

// SelectCategory switches the category Options lists.
func (s *Session) SelectCategory(name string) error { return s.inner.SelectCategory(name) }

// Options lists the selected category's options, narrowed by text.
func (s *Session) Options(text string) ([]string, error) { return s.inner.Options(text) }

// Flush applies a pending change now. It reports whether one was pending.
func (s *Session) Flush() bool { return s.inner.Flush() }

// State returns the current query, filters and results.
func (s *Session) State() SessionState {
	snap := s.inner.Snapshot()
	return SessionState{
		ID:         snap.ID,
		Screen:     snap.Screen,
		Query:      snap.Query,
		Filters:    snap.Filters,
		Category:   snap.Category,
		Searching:  snap.Searching,
		Generation: snap.Generation,
		Records:    snap.Results,
	}
}

// Close unmounts the session and cancels any pending recomputation.
func (s *Session) Close() error {
	return s.sessions.Unmount(s.inner.ID())
}
