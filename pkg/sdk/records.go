package alumdex

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/alumdex/internal/domain/batch"
)

// RecordService manages stored records.
type RecordService struct {
	records  recordUseCase
	importer importUseCase
	obs      *observer
}

// Import normalizes, validates and stores records, replacing existing ones
// with the same kind and ID. Results follow input order.
func (s *RecordService) Import(ctx context.Context, recs []Record) (_ []ImportResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("record.import", start, err) }()

	results := s.importer.Import(ctx, recs)
	out := make([]ImportResult, len(results))
	for i, r := range results {
		out[i] = ImportResult{ID: r.ID(), OK: r.Status() == dombatch.StatusOK, Err: r.Err()}
	}
	if sum := dombatch.Summarize(results); sum.Failed > 0 {
		return out, fmt.Errorf("import: %d of %d records failed to store", sum.Failed, sum.Total())
	}
	return out, nil
}

// Upsert stores a single record.
func (s *RecordService) Upsert(ctx context.Context, rec Record) error {
	res, err := s.Import(ctx, []Record{rec})
	if err != nil {
		return err
	}
	if len(res) == 1 && res[0].Err != nil {
		return fmt.Errorf("upsert %s: %w", rec.ID, res[0].Err)
	}
	return nil
}

// Get returns one record.
func (s *RecordService) Get(ctx context.Context, kind Kind, id string) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("record.get", start, err) }()

	rec, err := s.records.Get(ctx, kind, id)
	if err != nil {
		return Record{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return rec, nil
}

// List returns every record of a kind in storage order.
func (s *RecordService) List(ctx context.Context, kind Kind) (_ []Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("record.list", start, err) }()

	recs, err := s.records.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return recs, nil
}

// Delete removes one record.
func (s *RecordService) Delete(ctx context.Context, kind Kind, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("record.delete", start, err) }()

	if err = s.records.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}
