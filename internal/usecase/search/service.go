package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
	"github.com/kailas-cloud/alumdex/internal/domain/search/result"
)

// Service runs stateless one-shot searches: it loads the screen's collection
// and computes the result set in a single call.
type Service struct {
	source   RecordSource
	screens  ScreenResolver
	observer Observer
}

// New creates a search service.
func New(source RecordSource, screens ScreenResolver) *Service {
	return &Service{source: source, screens: screens}
}

// WithObserver sets the result observer (metrics).
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Search computes the result set of a screen for the request.
func (s *Service) Search(ctx context.Context, screenName string, req *request.Request) (result.Result, error) {
	scr, err := s.screens.Get(screenName)
	if err != nil {
		return result.Result{}, err
	}

	records, err := s.source.List(ctx, scr.Kind())
	if err != nil {
		return result.Result{}, fmt.Errorf("list %s records: %w", scr.Kind(), err)
	}

	matched := Compute(records, scr, req.Query(), req.Filters())
	total := len(matched)
	if req.Limit() > 0 && len(matched) > req.Limit() {
		matched = matched[:req.Limit()]
	}

	if s.observer != nil {
		s.observer.ObserveResult(scr.Name(), total)
	}
	return result.New(matched, total), nil
}

// Options derives the filter options of a screen category, narrowed by text.
func (s *Service) Options(ctx context.Context, screenName, category, text string) ([]string, error) {
	scr, err := s.screens.Get(screenName)
	if err != nil {
		return nil, err
	}
	cat, err := scr.Category(category)
	if err != nil {
		return nil, err
	}

	records, err := s.source.List(ctx, scr.Kind())
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", scr.Kind(), err)
	}
	return NarrowOptions(DeriveOptions(records, cat), text), nil
}
