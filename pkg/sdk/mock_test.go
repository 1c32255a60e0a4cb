package alumdex

import (
	"context"

	dombatch "github.com/kailas-cloud/alumdex/internal/domain/batch"
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
	"github.com/kailas-cloud/alumdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/alumdex/internal/usecase/health"
)

// --- recordUseCase mock ---

type mockRecordUC struct {
	getFn    func(ctx context.Context, kind domrec.Kind, id string) (domrec.Record, error)
	listFn   func(ctx context.Context, kind domrec.Kind) ([]domrec.Record, error)
	deleteFn func(ctx context.Context, kind domrec.Kind, id string) error
}

func (m *mockRecordUC) Get(ctx context.Context, kind domrec.Kind, id string) (domrec.Record, error) {
	return m.getFn(ctx, kind, id)
}

func (m *mockRecordUC) List(ctx context.Context, kind domrec.Kind) ([]domrec.Record, error) {
	return m.listFn(ctx, kind)
}

func (m *mockRecordUC) Delete(ctx context.Context, kind domrec.Kind, id string) error {
	return m.deleteFn(ctx, kind, id)
}

// --- importUseCase mock ---

type mockImportUC struct {
	importFn func(ctx context.Context, recs []domrec.Record) []dombatch.Result
}

func (m *mockImportUC) Import(ctx context.Context, recs []domrec.Record) []dombatch.Result {
	return m.importFn(ctx, recs)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, screen string, req *request.Request) (result.Result, error)
	optionsFn func(ctx context.Context, screen, category, text string) ([]string, error)
}

func (m *mockSearchUC) Search(ctx context.Context, screen string, req *request.Request) (result.Result, error) {
	return m.searchFn(ctx, screen, req)
}

func (m *mockSearchUC) Options(ctx context.Context, screen, category, text string) ([]string, error) {
	return m.optionsFn(ctx, screen, category, text)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
