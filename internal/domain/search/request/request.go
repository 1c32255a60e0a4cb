package request

import (
	"fmt"

	"github.com/kailas-cloud/alumdex/internal/domain"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 0
	MaxLimit       = 1000
)

// Request is a validated one-shot search over a screen's collection.
type Request struct {
	query   string
	filters filter.Set
	limit   int
}

// New validates search parameters. The query is kept verbatim; trimming
// and case folding happen at match time. limit=0 means unlimited.
func New(query string, filters filter.Set, limit int) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidQuery)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, filters: filters.Clone(), limit: limit}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Filters returns the active filter set.
func (r *Request) Filters() filter.Set { return r.filters }

// Limit returns the maximum results to return (0 = unlimited).
func (r *Request) Limit() int { return r.limit }
