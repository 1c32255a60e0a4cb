package filter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/alumdex/internal/domain"
)

// --- Option tests ---

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		in        string
		key, val  string
		formatted string
	}{
		{"skill:go", "skill", "go", "skill:go"},
		{"company:  Alphabet Inc ", "company", "alphabet inc", "company:alphabet inc"},
		{"location:San Francisco", "location", "san francisco", "location:san francisco"},
		{"title:ratio 1:2", "title", "ratio 1:2", "title:ratio 1:2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			o, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if o.Key() != tt.key {
				t.Errorf("Key() = %q, want %q", o.Key(), tt.key)
			}
			if o.Value() != tt.val {
				t.Errorf("Value() = %q, want %q", o.Value(), tt.val)
			}
			if o.String() != tt.formatted {
				t.Errorf("String() = %q, want %q", o.String(), tt.formatted)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no colon", "skillgo", "key:value"},
		{"empty key", ":go", "key is required"},
		{"blank value", "skill:   ", "value is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidFilter) {
				t.Errorf("expected ErrInvalidFilter, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestOption_Equality(t *testing.T) {
	a, _ := NewOption("skill", "Go")
	b, _ := Parse("skill: go ")
	if a != b {
		t.Errorf("options %q and %q should be equal", a, b)
	}
}

// --- Set tests ---

func TestSet_ZeroValueEmpty(t *testing.T) {
	var s Set
	if !s.IsEmpty() || s.Len() != 0 {
		t.Fatalf("zero Set should be empty, len=%d", s.Len())
	}
	if len(s.Options()) != 0 {
		t.Errorf("Options() = %v", s.Options())
	}
}

func TestSet_Toggle(t *testing.T) {
	var s Set
	o, _ := Parse("skill:go")

	on, err := s.Toggle(o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !on || !s.Contains(o) {
		t.Fatal("first toggle should select the option")
	}

	on, err = s.Toggle(o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if on || s.Contains(o) {
		t.Fatal("second toggle should deselect the option")
	}
	if !s.IsEmpty() {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestSet_Clear(t *testing.T) {
	s, err := ParseSet([]string{"skill:go", "company:globex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}
	s.Clear()
	if !s.IsEmpty() {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
}

func TestSet_StringsSorted(t *testing.T) {
	s, _ := ParseSet([]string{"skill:python", "company:globex", "skill:go"})
	got := strings.Join(s.Strings(), ",")
	want := "company:globex,skill:go,skill:python"
	if got != want {
		t.Errorf("Strings() = %q, want %q", got, want)
	}
}

func TestSet_DuplicatesCollapsed(t *testing.T) {
	s, err := ParseSet([]string{"skill:go", "skill:Go", " skill: GO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSet_TooMany(t *testing.T) {
	raw := make([]string, MaxActive+1)
	for i := range raw {
		raw[i] = fmt.Sprintf("skill:s%d", i)
	}
	if _, err := ParseSet(raw); err == nil {
		t.Fatal("expected error for too many filters")
	}

	s, err := ParseSet(raw[:MaxActive])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	extra, _ := Parse(raw[MaxActive])
	if _, err := s.Toggle(extra); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Errorf("Toggle past max: err = %v", err)
	}
}

func TestSet_CloneIndependent(t *testing.T) {
	s, _ := ParseSet([]string{"skill:go"})
	c := s.Clone()
	o, _ := Parse("skill:rust")
	if _, err := c.Toggle(o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Contains(o) {
		t.Error("clone mutation leaked into original")
	}
}

// --- Category tests ---

func TestFieldForKey(t *testing.T) {
	tests := []struct {
		key, want string
	}{
		{"skill", "skills"},
		{"tag", "tags"},
		{"company", "company"},
		{"graduationYear", "graduationYear"},
		{"bio", "bio"},
	}
	for _, tc := range tests {
		if got := FieldForKey(tc.key); got != tc.want {
			t.Errorf("FieldForKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}
