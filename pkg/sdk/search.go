package alumdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
)

// SearchService runs one-shot searches over a screen.
type SearchService struct {
	screen string
	svc    searchUseCase
	obs    *observer
}

// Query starts a search builder with the given query text.
func (s *SearchService) Query(q string) *SearchBuilder {
	return &SearchBuilder{svc: s, query: q}
}

// Filter starts a search builder with the given "key:value" options.
func (s *SearchService) Filter(options ...string) *SearchBuilder {
	return (&SearchBuilder{svc: s}).Filter(options...)
}

// All returns what the screen shows with no query and no filters.
func (s *SearchService) All(ctx context.Context) (SearchResult, error) {
	return (&SearchBuilder{svc: s}).Do(ctx)
}

// Options lists the filter options of a category, narrowed by text.
func (s *SearchService) Options(ctx context.Context, category, text string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.options", start, err) }()

	opts, err := s.svc.Options(ctx, s.screen, category, text)
	if err != nil {
		return nil, fmt.Errorf("options %s/%s: %w", s.screen, category, err)
	}
	return opts, nil
}

// SearchBuilder accumulates search parameters.
type SearchBuilder struct {
	svc     *SearchService
	query   string
	filters []string
	limit   int
}

// Query replaces the query text.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.query = q
	return b
}

// Filter adds "key:value" options. Records matching any of them pass.
func (b *SearchBuilder) Filter(options ...string) *SearchBuilder {
	b.filters = append(b.filters, options...)
	return b
}

// Limit caps the returned records. Zero means all.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Do runs the search.
func (b *SearchBuilder) Do(ctx context.Context) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { b.svc.obs.observe("search.do", start, err) }()

	set, err := filter.ParseSet(b.filters)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %s: %w", b.svc.screen, err)
	}
	req, err := request.New(b.query, set, b.limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %s: %w", b.svc.screen, err)
	}

	res, err := b.svc.svc.Search(ctx, b.svc.screen, &req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %s: %w", b.svc.screen, err)
	}
	return SearchResult{Records: res.Records(), Total: res.Matched()}, nil
}
