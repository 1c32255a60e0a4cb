package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Decode parses one JSON record. id and kind must be strings when present;
// any other attribute whose JSON type does not fit is left zero and its name
// is returned in skipped. Unknown attributes are ignored.
func Decode(data []byte) (rec Record, skipped []string, err error) {
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(data, &attrs); err != nil {
		return Record{}, nil, fmt.Errorf("decode record: %w", err)
	}

	if err := decodeStrict(attrs, "id", &rec.ID); err != nil {
		return Record{}, nil, err
	}
	if err := decodeStrict(attrs, "kind", &rec.Kind); err != nil {
		return Record{}, nil, err
	}

	for name, dst := range rec.attributes() {
		raw, ok := attrs[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			skipped = append(skipped, name)
		}
	}
	sort.Strings(skipped)

	// A partially applied list (["a", 1]) must not survive.
	for _, name := range skipped {
		rec.clear(name)
	}
	return rec, skipped, nil
}

// UnmarshalJSON decodes leniently, see Decode.
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	rec, _, err := Decode(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func decodeStrict(attrs map[string]json.RawMessage, name string, dst any) error {
	raw, ok := attrs[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode record %s: %w", name, err)
	}
	return nil
}

func (r *Record) attributes() map[string]any {
	return map[string]any{
		FieldFullName:       &r.FullName,
		FieldEmail:          &r.Email,
		FieldLocation:       &r.Location,
		FieldIndustry:       &r.Industry,
		FieldGraduationYear: &r.GraduationYear,
		FieldCompany:        &r.Company,
		FieldJobTitle:       &r.JobTitle,
		FieldSkills:         &r.Skills,
		FieldInstitution:    &r.Institution,
		FieldDegree:         &r.Degree,
		FieldFieldOfStudy:   &r.FieldOfStudy,
		FieldBio:            &r.Bio,
		FieldTitle:          &r.Title,
		FieldJobDescription: &r.JobDescription,
		FieldEmploymentType: &r.EmploymentType,
		FieldOrganizer:      &r.Organizer,
		FieldVenue:          &r.Venue,
		FieldTags:           &r.Tags,
	}
}

func (r *Record) clear(name string) {
	switch dst := r.attributes()[name].(type) {
	case *string:
		*dst = ""
	case *int:
		*dst = 0
	case *[]string:
		*dst = nil
	}
}
