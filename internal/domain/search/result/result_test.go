package result

import (
	"testing"

	"github.com/kailas-cloud/alumdex/internal/domain/record"
)

func TestNew(t *testing.T) {
	recs := []record.Record{{ID: "1"}, {ID: "2"}}

	r := New(recs, 5)

	if r.Len() != 2 {
		t.Errorf("Len() = %d", r.Len())
	}
	if r.Matched() != 5 {
		t.Errorf("Matched() = %d", r.Matched())
	}
	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestEmpty(t *testing.T) {
	r := Empty()
	if r.Len() != 0 || r.Matched() != 0 {
		t.Errorf("Empty() = %d/%d", r.Len(), r.Matched())
	}
	if r.IDs() == nil {
		t.Error("IDs() should be non-nil")
	}
}
