package screen

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/alumdex/internal/domain"
	"github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
)

var alumniFields = []string{
	record.FieldFullName,
	record.FieldJobTitle,
	record.FieldCompany,
	record.FieldLocation,
	record.FieldIndustry,
	record.FieldInstitution,
	record.FieldDegree,
	record.FieldFieldOfStudy,
	record.FieldGraduationYear,
	record.FieldSkills,
}

// Defaults returns the built-in screen presets. directory hides everything
// until the user searches; the other screens start from the full collection.
func Defaults() []Screen {
	return []Screen{
		mustNew(Directory, record.KindAlumni, alumniFields,
			[]filter.Category{filter.Education, filter.Career, filter.Location}, ShowNone),
		mustNew(Map, record.KindAlumni,
			[]string{record.FieldFullName, record.FieldLocation, record.FieldCompany, record.FieldJobTitle},
			[]filter.Category{filter.Career, filter.Location}, ShowAll),
		mustNew(Jobs, record.KindJob,
			[]string{
				record.FieldTitle, record.FieldCompany, record.FieldLocation,
				record.FieldJobDescription, record.FieldEmploymentType, record.FieldSkills,
			},
			[]filter.Category{filter.Career, filter.Location}, ShowAll),
		mustNew(Results, record.KindAlumni, alumniFields,
			[]filter.Category{filter.Education, filter.Career, filter.Location}, ShowAll),
		mustNew(Events, record.KindEvent,
			[]string{record.FieldTitle, record.FieldOrganizer, record.FieldVenue, record.FieldLocation, record.FieldTags},
			[]filter.Category{filter.Location, filter.Organizer}, ShowAll),
	}
}

func mustNew(name string, kind record.Kind, fields []string, cats []filter.Category, p EmptyPolicy) Screen {
	s, err := New(name, kind, fields, cats, p)
	if err != nil {
		panic(err)
	}
	return s
}

// Registry resolves screens by name.
type Registry struct {
	screens map[string]Screen
}

// NewRegistry creates a registry from the defaults with per-screen empty
// policy overrides applied.
func NewRegistry(policyOverrides map[string]EmptyPolicy) (*Registry, error) {
	r := &Registry{screens: make(map[string]Screen)}
	for _, s := range Defaults() {
		r.screens[s.Name()] = s
	}
	for name, p := range policyOverrides {
		s, ok := r.screens[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScreen, name)
		}
		updated, err := s.WithPolicy(p)
		if err != nil {
			return nil, err
		}
		r.screens[name] = updated
	}
	return r, nil
}

// Get returns the named screen.
func (r *Registry) Get(name string) (Screen, error) {
	s, ok := r.screens[name]
	if !ok {
		return Screen{}, fmt.Errorf("%w: %q", domain.ErrUnknownScreen, name)
	}
	return s, nil
}

// Names returns the registered screen names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.screens))
	for n := range r.screens {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PolicySplit reports whether the registered screens disagree on the empty
// policy, grouped by policy.
func (r *Registry) PolicySplit() (map[EmptyPolicy][]string, bool) {
	groups := make(map[EmptyPolicy][]string)
	for _, n := range r.Names() {
		p := r.screens[n].Policy()
		groups[p] = append(groups[p], n)
	}
	return groups, len(groups) > 1
}
