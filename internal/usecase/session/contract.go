package session

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

// Recorder receives session lifecycle and recomputation events.
type Recorder interface {
	Recomputed(screenName string, size int)
	Superseded(screenName string)
	SessionsActive(n int)
}

type nopRecorder struct{}

func (nopRecorder) Recomputed(string, int) {}
func (nopRecorder) Superseded(string)      {}
func (nopRecorder) SessionsActive(int)     {}
