package search

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
)

// Extract builds the normalized search string of a record: present fields in
// the given order joined by single spaces, lower-cased.
func Extract(rec *record.Record, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := rec.Field(f)
		if !v.Present() {
			continue
		}
		parts = append(parts, v.String())
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchQuery reports whether the normalized search string s satisfies query.
// A blank query matches everything. Otherwise s must contain the query or
// have a word starting with it.
func MatchQuery(s, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(s, q) {
		return true
	}
	for _, w := range strings.Split(s, " ") {
		if strings.HasPrefix(w, q) {
			return true
		}
	}
	return false
}

// DeriveOptions collects the distinct facet values of a category across the
// collection, sorted ascending. List fields yield one option per element.
func DeriveOptions(records []record.Record, cat filter.Category) []string {
	seen := make(map[string]struct{})
	for i := range records {
		for _, facet := range cat.Facets {
			v := records[i].Field(facet.Field)
			if v.IsList() {
				for _, item := range v.Items() {
					addOption(seen, facet.Key, item)
				}
				continue
			}
			addOption(seen, facet.Key, v.String())
		}
	}

	out := make([]string, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

func addOption(seen map[string]struct{}, key, raw string) {
	val := filter.NormalizeValue(raw)
	if val == "" {
		return
	}
	seen[key+":"+val] = struct{}{}
}

// NarrowOptions keeps the options containing text, case-insensitively.
func NarrowOptions(options []string, text string) []string {
	needle := strings.ToLower(text)
	if needle == "" {
		return options
	}
	out := make([]string, 0, len(options))
	for _, o := range options {
		if strings.Contains(strings.ToLower(o), needle) {
			out = append(out, o)
		}
	}
	return out
}

// MatchesOption reports whether the record's field for the option key equals
// the option value exactly (any element for list fields).
func MatchesOption(rec *record.Record, o filter.Option) bool {
	v := rec.Field(filter.FieldForKey(o.Key()))
	if !v.Present() {
		return false
	}
	if v.IsList() {
		for _, item := range v.Items() {
			if filter.NormalizeValue(item) == o.Value() {
				return true
			}
		}
		return false
	}
	return filter.NormalizeValue(v.String()) == o.Value()
}

// MatchesFilters reports whether the record satisfies at least one selected
// option. An empty set imposes no constraint.
func MatchesFilters(rec *record.Record, set filter.Set) bool {
	if set.IsEmpty() {
		return true
	}
	for _, o := range set.Options() {
		if MatchesOption(rec, o) {
			return true
		}
	}
	return false
}

// Compute returns the records of the collection satisfying both the filter set
// and the query, in collection order. When both are empty the screen policy
// decides between nothing and everything. The input slice is never modified.
func Compute(records []record.Record, scr screen.Screen, query string, set filter.Set) []record.Record {
	if strings.TrimSpace(query) == "" && set.IsEmpty() {
		if scr.Policy() == screen.ShowAll {
			out := make([]record.Record, len(records))
			copy(out, records)
			return out
		}
		return []record.Record{}
	}

	opts := set.Options()
	fields := scr.Fields()
	out := make([]record.Record, 0)
	for i := range records {
		rec := &records[i]
		if len(opts) > 0 && !matchesAny(rec, opts) {
			continue
		}
		if !MatchQuery(Extract(rec, fields), query) {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func matchesAny(rec *record.Record, opts []filter.Option) bool {
	for _, o := range opts {
		if MatchesOption(rec, o) {
			return true
		}
	}
	return false
}
