package request

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("hello", filter.Set{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "hello" {
		t.Errorf("Query() = %q", r.Query())
	}
	if !r.Filters().IsEmpty() {
		t.Errorf("Filters() = %v", r.Filters().Strings())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d", r.Limit())
	}
}

func TestNew_EmptyQueryAllowed(t *testing.T) {
	if _, err := New("", filter.Set{}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxQueryLength+1), filter.Set{}, 0)
	if err == nil {
		t.Fatal("expected error for long query")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_NegativeLimit(t *testing.T) {
	if _, err := New("q", filter.Set{}, -1); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New("q", filter.Set{}, MaxLimit+50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
}

func TestNew_FiltersCloned(t *testing.T) {
	o, _ := filter.Parse("skill:go")
	set, _ := filter.NewSet(o)

	r, err := New("", set, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set.Clear()
	if r.Filters().Len() != 1 {
		t.Errorf("request filters changed with caller set: %v", r.Filters().Strings())
	}
}
