package screen

import (
	"fmt"

	"github.com/kailas-cloud/alumdex/internal/domain"
	"github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
)

// EmptyPolicy decides the result set when both query and filters are empty.
type EmptyPolicy string

// Empty policy constants.
const (
	// ShowNone returns nothing until the user types or selects a filter.
	ShowNone EmptyPolicy = "none"
	// ShowAll returns the whole collection.
	ShowAll EmptyPolicy = "all"
)

// IsValid checks if the policy is one of the supported values.
func (p EmptyPolicy) IsValid() bool {
	return p == ShowNone || p == ShowAll
}

// Screen names.
const (
	Directory = "directory"
	Map       = "map"
	Jobs      = "jobs"
	Results   = "results"
	Events    = "events"
)

// Screen is the search configuration of one call site.
type Screen struct {
	name       string
	kind       record.Kind
	fields     []string
	categories []filter.Category
	policy     EmptyPolicy
}

// New validates and creates a Screen.
func New(
	name string, kind record.Kind, fields []string, categories []filter.Category, policy EmptyPolicy,
) (Screen, error) {
	if name == "" {
		return Screen{}, fmt.Errorf("screen name is required")
	}
	if !kind.IsValid() {
		return Screen{}, fmt.Errorf("screen %q: invalid record kind %q", name, kind)
	}
	if len(fields) == 0 {
		return Screen{}, fmt.Errorf("screen %q: at least one searchable field is required", name)
	}
	for _, f := range fields {
		if !record.IsKnownField(f) {
			return Screen{}, fmt.Errorf("screen %q: unknown searchable field %q", name, f)
		}
	}
	if !policy.IsValid() {
		return Screen{}, fmt.Errorf("screen %q: invalid empty policy %q", name, policy)
	}
	return Screen{
		name:       name,
		kind:       kind,
		fields:     append([]string(nil), fields...),
		categories: append([]filter.Category(nil), categories...),
		policy:     policy,
	}, nil
}

// Name returns the screen name.
func (s Screen) Name() string { return s.name }

// Kind returns the record kind the screen lists.
func (s Screen) Kind() record.Kind { return s.kind }

// Fields returns the ordered searchable fields.
func (s Screen) Fields() []string { return s.fields }

// Categories returns the filter categories offered by the screen.
func (s Screen) Categories() []filter.Category { return s.categories }

// Policy returns the empty query/filter policy.
func (s Screen) Policy() EmptyPolicy { return s.policy }

// Category looks up an offered category by name.
func (s Screen) Category(name string) (filter.Category, error) {
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return filter.Category{}, fmt.Errorf("%w: %q on screen %q", domain.ErrUnknownCategory, name, s.name)
}

// WithPolicy returns a copy with a different empty policy.
func (s Screen) WithPolicy(p EmptyPolicy) (Screen, error) {
	if !p.IsValid() {
		return Screen{}, fmt.Errorf("screen %q: invalid empty policy %q", s.name, p)
	}
	c := s
	c.policy = p
	return c, nil
}
