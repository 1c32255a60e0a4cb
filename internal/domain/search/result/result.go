package result

import "github.com/kailas-cloud/alumdex/internal/domain/record"

// Result is a computed result set: matching records in collection order.
type Result struct {
	records []record.Record
	matched int
}

// New creates a result. matched is the count before any limit was applied.
func New(records []record.Record, matched int) Result {
	return Result{records: records, matched: matched}
}

// Empty returns a result with no records.
func Empty() Result { return Result{} }

// Records returns the matching records.
func (r *Result) Records() []record.Record { return r.records }

// Len returns the number of returned records.
func (r *Result) Len() int { return len(r.records) }

// Matched returns the number of matching records before limiting.
func (r *Result) Matched() int { return r.matched }

// IDs returns the record identifiers in order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.records))
	for i := range r.records {
		ids[i] = r.records[i].ID
	}
	return ids
}
