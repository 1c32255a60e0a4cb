package record

import "strings"

// Value is a record attribute: a scalar string, a string list, or absent.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// Scalar wraps a scalar attribute.
func Scalar(s string) Value { return Value{scalar: s} }

// List wraps a list attribute.
func List(items []string) Value { return Value{list: items, isList: true} }

// IsList reports whether the attribute is list-valued.
func (v Value) IsList() bool { return v.isList }

// String returns the scalar form; list elements are joined by a single space.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, " ")
	}
	return v.scalar
}

// Items returns the list elements (nil for scalars).
func (v Value) Items() []string { return v.list }

// Present reports whether the attribute carries any non-blank content.
func (v Value) Present() bool {
	if v.isList {
		for _, item := range v.list {
			if strings.TrimSpace(item) != "" {
				return true
			}
		}
		return false
	}
	return strings.TrimSpace(v.scalar) != ""
}
