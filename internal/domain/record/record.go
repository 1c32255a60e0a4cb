package record

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/alumdex/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxIDLength is the maximum record ID length.
const MaxIDLength = 256

// Kind is the entity type a record represents.
type Kind string

// Record kinds.
const (
	KindAlumni Kind = "alumni"
	KindJob    Kind = "job"
	KindEvent  Kind = "event"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindAlumni || k == KindJob || k == KindEvent
}

// Kinds returns all record kinds.
func Kinds() []Kind {
	return []Kind{KindAlumni, KindJob, KindEvent}
}

// Record is one alumnus, job posting or event. Every attribute except ID and
// Kind is optional; legacy documents may omit any of them.
type Record struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	FullName       string   `json:"fullName,omitempty"`
	Email          string   `json:"email,omitempty"`
	Location       string   `json:"location,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	GraduationYear int      `json:"graduationYear,omitempty"`
	Company        string   `json:"company,omitempty"`
	JobTitle       string   `json:"jobTitle,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Institution    string   `json:"institution,omitempty"`
	Degree         string   `json:"degree,omitempty"`
	FieldOfStudy   string   `json:"fieldOfStudy,omitempty"`
	Bio            string   `json:"bio,omitempty"`

	Title          string `json:"title,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	EmploymentType string `json:"employmentType,omitempty"`

	Organizer string   `json:"organizer,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Field names addressable through Record.Field.
const (
	FieldFullName       = "fullName"
	FieldEmail          = "email"
	FieldLocation       = "location"
	FieldIndustry       = "industry"
	FieldGraduationYear = "graduationYear"
	FieldCompany        = "company"
	FieldJobTitle       = "jobTitle"
	FieldSkills         = "skills"
	FieldInstitution    = "institution"
	FieldDegree         = "degree"
	FieldFieldOfStudy   = "fieldOfStudy"
	FieldBio            = "bio"
	FieldTitle          = "title"
	FieldJobDescription = "jobDescription"
	FieldEmploymentType = "employmentType"
	FieldOrganizer      = "organizer"
	FieldVenue          = "venue"
	FieldTags           = "tags"
)

var accessors = map[string]func(*Record) Value{
	FieldFullName:       func(r *Record) Value { return Scalar(r.FullName) },
	FieldEmail:          func(r *Record) Value { return Scalar(r.Email) },
	FieldLocation:       func(r *Record) Value { return Scalar(r.Location) },
	FieldIndustry:       func(r *Record) Value { return Scalar(r.Industry) },
	FieldGraduationYear: func(r *Record) Value { return yearValue(r.GraduationYear) },
	FieldCompany:        func(r *Record) Value { return Scalar(r.Company) },
	FieldJobTitle:       func(r *Record) Value { return Scalar(r.JobTitle) },
	FieldSkills:         func(r *Record) Value { return List(r.Skills) },
	FieldInstitution:    func(r *Record) Value { return Scalar(r.Institution) },
	FieldDegree:         func(r *Record) Value { return Scalar(r.Degree) },
	FieldFieldOfStudy:   func(r *Record) Value { return Scalar(r.FieldOfStudy) },
	FieldBio:            func(r *Record) Value { return Scalar(r.Bio) },
	FieldTitle:          func(r *Record) Value { return Scalar(r.Title) },
	FieldJobDescription: func(r *Record) Value { return Scalar(r.JobDescription) },
	FieldEmploymentType: func(r *Record) Value { return Scalar(r.EmploymentType) },
	FieldOrganizer:      func(r *Record) Value { return Scalar(r.Organizer) },
	FieldVenue:          func(r *Record) Value { return Scalar(r.Venue) },
	FieldTags:           func(r *Record) Value { return List(r.Tags) },
}

// Field returns the named attribute. Unknown names and absent attributes
// yield the zero Value.
func (r *Record) Field(name string) Value {
	get, ok := accessors[name]
	if !ok {
		return Value{}
	}
	return get(r)
}

// IsKnownField reports whether name addresses a record attribute.
func IsKnownField(name string) bool {
	_, ok := accessors[name]
	return ok
}

// Validate checks the boundary contract: a well-formed ID and a known kind.
func (r *Record) Validate() error {
	if r.ID == "" {
		return domain.NewRecordError("", "id is required")
	}
	if len(r.ID) > MaxIDLength {
		return domain.NewRecordError(r.ID, "id too long (max 256)")
	}
	if !idRegex.MatchString(r.ID) {
		return domain.NewRecordError(r.ID, "id must be alphanumeric with underscores and hyphens")
	}
	if !r.Kind.IsValid() {
		return domain.NewRecordError(r.ID, "unknown kind "+strconv.Quote(string(r.Kind)))
	}
	if r.GraduationYear < 0 {
		return domain.NewRecordError(r.ID, "graduationYear must not be negative")
	}
	return nil
}

// Normalize returns a copy with scalar attributes trimmed and list attributes
// stripped of blank and case-insensitively duplicated elements.
func (r *Record) Normalize() Record {
	n := *r
	n.ID = strings.TrimSpace(r.ID)
	n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	for _, s := range []*string{
		&n.FullName, &n.Email, &n.Location, &n.Industry, &n.Company, &n.JobTitle,
		&n.Institution, &n.Degree, &n.FieldOfStudy, &n.Bio, &n.Title,
		&n.JobDescription, &n.EmploymentType, &n.Organizer, &n.Venue,
	} {
		*s = strings.TrimSpace(*s)
	}
	n.Skills = normalizeList(r.Skills)
	n.Tags = normalizeList(r.Tags)
	return n
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func yearValue(y int) Value {
	if y == 0 {
		return Value{}
	}
	return Scalar(strconv.Itoa(y))
}
