package search

import (
	"context"

	"github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
)

// RecordSource materializes the record collection of one kind.
type RecordSource interface {
	List(ctx context.Context, kind record.Kind) ([]record.Record, error)
}

// ScreenResolver resolves screen presets by name.
type ScreenResolver interface {
	Get(name string) (screen.Screen, error)
}

// Observer receives one notification per computed result set.
type Observer interface {
	ObserveResult(screenName string, size int)
}
