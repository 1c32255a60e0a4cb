package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/debounce"
	"github.com/kailas-cloud/alumdex/internal/domain"
)

// Manager mounts and unmounts search sessions.
type Manager struct {
	source  RecordSource
	screens ScreenResolver
	logger  *zap.Logger

	delay       time.Duration
	idleTTL     time.Duration
	maxSessions int
	recorder    Recorder
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager with the default debounce delay and
// no session limit or idle expiry.
func NewManager(source RecordSource, screens ScreenResolver, logger *zap.Logger) *Manager {
	return &Manager{
		source:   source,
		screens:  screens,
		logger:   logger,
		delay:    debounce.DefaultDelay,
		recorder: nopRecorder{},
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// WithDelay sets the recomputation debounce delay.
func (m *Manager) WithDelay(d time.Duration) *Manager {
	m.delay = d
	return m
}

// WithIdleTTL sets the idle time after which ReapIdle unmounts a session.
// Zero disables expiry.
func (m *Manager) WithIdleTTL(ttl time.Duration) *Manager {
	m.idleTTL = ttl
	return m
}

// WithMaxSessions caps concurrently mounted sessions. Zero means unlimited.
func (m *Manager) WithMaxSessions(n int) *Manager {
	m.maxSessions = n
	return m
}

// WithRecorder sets the metrics recorder.
func (m *Manager) WithRecorder(r Recorder) *Manager {
	if r == nil {
		r = nopRecorder{}
	}
	m.recorder = r
	return m
}

// Mount loads the screen's collection and creates a session whose initial
// result set follows the screen's empty policy.
func (m *Manager) Mount(ctx context.Context, screenName string) (*Session, error) {
	scr, err := m.screens.Get(screenName)
	if err != nil {
		return nil, err
	}

	if m.maxSessions > 0 && m.Len() >= m.maxSessions {
		return nil, fmt.Errorf("%w (max %d)", domain.ErrSessionLimit, m.maxSessions)
	}

	records, err := m.source.List(ctx, scr.Kind())
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", scr.Kind(), err)
	}

	id := uuid.NewString()
	s := newSession(id, scr, records, m.delay, m.recorder, m.logger, m.now)

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		s.Close()
		return nil, fmt.Errorf("%w (max %d)", domain.ErrSessionLimit, m.maxSessions)
	}
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.recorder.SessionsActive(n)
	m.logger.Debug("session mounted",
		zap.String("session_id", id),
		zap.String("screen", scr.Name()),
		zap.Int("records", len(records)),
	)
	return s, nil
}

// Get returns a mounted session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Unmount closes the session, cancelling any pending recomputation.
func (m *Manager) Unmount(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Close()
	m.recorder.SessionsActive(n)
	m.logger.Debug("session unmounted", zap.String("session_id", id))
	return nil
}

// Len returns the number of mounted sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Capacity returns the session limit, zero when unlimited.
func (m *Manager) Capacity() int { return m.maxSessions }

// ReapIdle unmounts sessions untouched for longer than the idle TTL and
// returns how many were removed.
func (m *Manager) ReapIdle() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.recorder.SessionsActive(n)
		m.logger.Info("idle sessions reaped", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run reaps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ReapIdle()
		}
	}
}

// Close unmounts every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	m.recorder.SessionsActive(0)
}
