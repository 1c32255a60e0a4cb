package importer

import (
	"context"

	"github.com/kailas-cloud/alumdex/internal/domain/record"
)

// BulkUpserter stores a batch of already validated records.
type BulkUpserter interface {
	UpsertMany(ctx context.Context, recs []record.Record) error
}

// Recorder receives per-status import counts.
type Recorder interface {
	Imported(status string, n int)
}

type nopRecorder struct{}

func (nopRecorder) Imported(string, int) {}
