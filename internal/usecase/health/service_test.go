package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockSessionCounter struct {
	n, limit int
}

func (m *mockSessionCounter) Len() int      { return m.n }
func (m *mockSessionCounter) Capacity() int { return m.limit }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockSessionCounter{n: 3, limit: 10})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["sessions"] != CheckOK {
		t.Errorf("expected sessions %q, got %q", CheckOK, r.Checks["sessions"])
	}
	if r.Sessions != 3 {
		t.Errorf("expected 3 sessions, got %d", r.Sessions)
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockSessionCounter{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_SessionsSaturated(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockSessionCounter{n: 5, limit: 5})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["sessions"] != CheckError {
		t.Errorf("expected sessions %q, got %q", CheckError, r.Checks["sessions"])
	}
}

func TestCheck_UnlimitedSessions(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockSessionCounter{n: 1000})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
}

func TestCheck_DBErrorWinsOverSaturation(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("down")}, &mockSessionCounter{n: 2, limit: 2})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoSessionCounter(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["sessions"]; ok {
		t.Error("sessions check should be absent without a counter")
	}
}
