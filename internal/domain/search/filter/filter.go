package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/alumdex/internal/domain"
)

// MaxActive is the maximum number of simultaneously selected options.
const MaxActive = 32

// Option is a selectable facet value formatted as "<key>:<value>".
type Option struct {
	key   string
	value string
}

// NewOption creates an option, lower-casing and trimming the value.
func NewOption(key, value string) (Option, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Option{}, fmt.Errorf("%w: key is required", domain.ErrInvalidFilter)
	}
	value = NormalizeValue(value)
	if value == "" {
		return Option{}, fmt.Errorf("%w: value is required for key %q", domain.ErrInvalidFilter, key)
	}
	return Option{key: key, value: value}, nil
}

// Parse reads the "<key>:<value>" form. Only the first colon separates key
// from value, so values may themselves contain colons.
func Parse(s string) (Option, error) {
	key, value, ok := strings.Cut(s, ":")
	if !ok {
		return Option{}, fmt.Errorf("%w: %q is not in key:value form", domain.ErrInvalidFilter, s)
	}
	return NewOption(key, value)
}

// NormalizeValue is the canonical comparison form of a facet value.
func NormalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Key returns the facet key.
func (o Option) Key() string { return o.key }

// Value returns the normalized facet value.
func (o Option) Value() string { return o.value }

// String returns the "<key>:<value>" form.
func (o Option) String() string { return o.key + ":" + o.value }

// Set is the active filter set. The zero value is an empty set.
type Set struct {
	items map[Option]struct{}
}

// NewSet builds a set from options, ignoring duplicates.
func NewSet(opts ...Option) (Set, error) {
	var s Set
	for _, o := range opts {
		if s.Contains(o) {
			continue
		}
		if s.Len() >= MaxActive {
			return Set{}, fmt.Errorf("%w: too many filters (max %d)", domain.ErrInvalidFilter, MaxActive)
		}
		s.add(o)
	}
	return s, nil
}

// ParseSet parses raw "<key>:<value>" strings into a set.
func ParseSet(raw []string) (Set, error) {
	opts := make([]Option, 0, len(raw))
	for _, r := range raw {
		o, err := Parse(r)
		if err != nil {
			return Set{}, err
		}
		opts = append(opts, o)
	}
	return NewSet(opts...)
}

// Toggle flips membership of o and reports whether it is now selected.
func (s *Set) Toggle(o Option) (bool, error) {
	if s.Contains(o) {
		delete(s.items, o)
		return false, nil
	}
	if s.Len() >= MaxActive {
		return false, fmt.Errorf("%w: too many filters (max %d)", domain.ErrInvalidFilter, MaxActive)
	}
	s.add(o)
	return true, nil
}

// Clear empties the set.
func (s *Set) Clear() { s.items = nil }

// Contains reports whether o is selected.
func (s Set) Contains(o Option) bool {
	_, ok := s.items[o]
	return ok
}

// Len returns the number of selected options.
func (s Set) Len() int { return len(s.items) }

// IsEmpty reports whether no option is selected.
func (s Set) IsEmpty() bool { return len(s.items) == 0 }

// Options returns the selected options sorted by their string form.
func (s Set) Options() []Option {
	out := make([]Option, 0, len(s.items))
	for o := range s.items {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Strings returns the sorted "<key>:<value>" forms.
func (s Set) Strings() []string {
	opts := s.Options()
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.String()
	}
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	var c Set
	for o := range s.items {
		c.add(o)
	}
	return c
}

func (s *Set) add(o Option) {
	if s.items == nil {
		s.items = make(map[Option]struct{})
	}
	s.items[o] = struct{}{}
}
