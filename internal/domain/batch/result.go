package batch

import (
	"errors"

	"github.com/kailas-cloud/alumdex/internal/domain"
)

// ItemStatus is the processing outcome of a single import item.
type ItemStatus string

// Import item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusInvalid ItemStatus = "invalid"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of processing one record in an import.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed result. Validation failures are reported as
// StatusInvalid, everything else as StatusError.
func NewError(id string, err error) Result {
	status := StatusError
	if errors.Is(err, domain.ErrInvalidRecord) {
		status = StatusInvalid
	}
	return Result{id: id, status: status, err: err}
}

// ID returns the record identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts results per status.
type Summary struct {
	OK      int
	Invalid int
	Failed  int
}

// Summarize tallies a result list.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.OK++
		case StatusInvalid:
			s.Invalid++
		default:
			s.Failed++
		}
	}
	return s
}

// Total returns the number of tallied results.
func (s Summary) Total() int { return s.OK + s.Invalid + s.Failed }
