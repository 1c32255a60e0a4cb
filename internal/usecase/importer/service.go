package importer

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/domain"
	dombatch "github.com/kailas-cloud/alumdex/internal/domain/batch"
	"github.com/kailas-cloud/alumdex/internal/domain/record"
)

// DefaultChunkSize is the number of records written per pipelined upsert.
const DefaultChunkSize = 100

// Service normalizes, validates and stores records with a bounded worker pool.
type Service struct {
	store     BulkUpserter
	pool      *ants.Pool
	chunkSize int
	recorder  Recorder
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithChunkSize sets how many records go into one upsert call.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an import service. workers <= 0 selects runtime.NumCPU()/2.
func New(store BulkUpserter, workers int, opts ...Option) (*Service, error) {
	if workers <= 0 {
		workers = max(runtime.NumCPU()/2, 1)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	s := &Service{
		store:     store,
		pool:      pool,
		chunkSize: DefaultChunkSize,
		recorder:  nopRecorder{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Release stops the worker pool. The service must not be used afterwards.
func (s *Service) Release() {
	s.pool.Release()
}

// Import normalizes and validates every record, then writes the valid ones
// in chunks across the pool. Results are index-aligned with recs. A record
// whose kind and ID repeat an earlier one in the same import is rejected.
func (s *Service) Import(ctx context.Context, recs []record.Record) []dombatch.Result {
	results := make([]dombatch.Result, len(recs))

	valid := make([]record.Record, 0, len(recs))
	validIdx := make([]int, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))

	for i := range recs {
		rec := recs[i].Normalize()
		if err := rec.Validate(); err != nil {
			results[i] = dombatch.NewError(rec.ID, err)
			continue
		}
		identity := string(rec.Kind) + ":" + rec.ID
		if _, dup := seen[identity]; dup {
			results[i] = dombatch.NewError(rec.ID, domain.NewRecordError(rec.ID, "duplicate id in import"))
			continue
		}
		seen[identity] = struct{}{}
		valid = append(valid, rec)
		validIdx = append(validIdx, i)
	}

	var wg sync.WaitGroup
	for start := 0; start < len(valid); start += s.chunkSize {
		end := min(start+s.chunkSize, len(valid))
		chunk, idx := valid[start:end], validIdx[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			s.writeChunk(ctx, chunk, idx, recs, results)
		}
		if err := s.pool.Submit(task); err != nil {
			wg.Done()
			for _, i := range idx {
				results[i] = dombatch.NewError(recs[i].ID, fmt.Errorf("submit: %w", err))
			}
		}
	}
	wg.Wait()

	sum := dombatch.Summarize(results)
	s.recorder.Imported(string(dombatch.StatusOK), sum.OK)
	s.recorder.Imported(string(dombatch.StatusInvalid), sum.Invalid)
	s.recorder.Imported(string(dombatch.StatusError), sum.Failed)
	s.logger.Info("import finished",
		zap.Int("total", sum.Total()),
		zap.Int("ok", sum.OK),
		zap.Int("invalid", sum.Invalid),
		zap.Int("failed", sum.Failed),
	)
	return results
}

// writeChunk stores one chunk. Each task writes a disjoint set of result slots.
func (s *Service) writeChunk(
	ctx context.Context, chunk []record.Record, idx []int,
	recs []record.Record, results []dombatch.Result,
) {
	err := ctx.Err()
	if err == nil {
		err = s.store.UpsertMany(ctx, chunk)
	}
	if err != nil {
		s.logger.Warn("import chunk failed", zap.Int("records", len(chunk)), zap.Error(err))
		for _, i := range idx {
			results[i] = dombatch.NewError(recs[i].ID, fmt.Errorf("upsert: %w", err))
		}
		return
	}
	for j, i := range idx {
		results[i] = dombatch.NewOK(chunk[j].ID)
	}
}
