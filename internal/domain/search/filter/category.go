package filter

import "github.com/kailas-cloud/alumdex/internal/domain/record"

// Facet binds an option key to the record field it reads.
type Facet struct {
	Key   string
	Field string
}

// Category is a named group of facets offered together in the filter picker.
type Category struct {
	Name   string
	Facets []Facet
}

// Category names.
const (
	CategoryEducation = "education"
	CategoryCareer    = "career"
	CategoryLocation  = "location"
	CategoryOrganizer = "organizer"
)

var (
	// Education groups academic attributes.
	Education = Category{Name: CategoryEducation, Facets: []Facet{
		{Key: "institution", Field: record.FieldInstitution},
		{Key: "degree", Field: record.FieldDegree},
		{Key: "fieldOfStudy", Field: record.FieldFieldOfStudy},
		{Key: "graduationYear", Field: record.FieldGraduationYear},
	}}
	// Career groups employment attributes. Skills flatten to one option per skill.
	Career = Category{Name: CategoryCareer, Facets: []Facet{
		{Key: "company", Field: record.FieldCompany},
		{Key: "jobTitle", Field: record.FieldJobTitle},
		{Key: "industry", Field: record.FieldIndustry},
		{Key: "skill", Field: record.FieldSkills},
		{Key: "employmentType", Field: record.FieldEmploymentType},
	}}
	// Location groups place attributes.
	Location = Category{Name: CategoryLocation, Facets: []Facet{
		{Key: "location", Field: record.FieldLocation},
		{Key: "venue", Field: record.FieldVenue},
	}}
	// Organizer groups event host attributes.
	Organizer = Category{Name: CategoryOrganizer, Facets: []Facet{
		{Key: "organizer", Field: record.FieldOrganizer},
		{Key: "tag", Field: record.FieldTags},
	}}
)

var facetsByKey = func() map[string]string {
	m := make(map[string]string)
	for _, c := range []Category{Education, Career, Location, Organizer} {
		for _, f := range c.Facets {
			m[f.Key] = f.Field
		}
	}
	return m
}()

// FieldForKey resolves an option key to the record field it reads. Keys that
// name no facet are treated as raw field names.
func FieldForKey(key string) string {
	if f, ok := facetsByKey[key]; ok {
		return f
	}
	return key
}
