package alumdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/config"
	"github.com/kailas-cloud/alumdex/internal/db"
	"github.com/kailas-cloud/alumdex/internal/db/driver"
	dombatch "github.com/kailas-cloud/alumdex/internal/domain/batch"
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
	"github.com/kailas-cloud/alumdex/internal/domain/search/result"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
	recordrepo "github.com/kailas-cloud/alumdex/internal/repository/record"
	healthuc "github.com/kailas-cloud/alumdex/internal/usecase/health"
	importeruc "github.com/kailas-cloud/alumdex/internal/usecase/importer"
	searchuc "github.com/kailas-cloud/alumdex/internal/usecase/search"
	sessionuc "github.com/kailas-cloud/alumdex/internal/usecase/session"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type recordUseCase interface {
	Get(ctx context.Context, kind domrec.Kind, id string) (domrec.Record, error)
	List(ctx context.Context, kind domrec.Kind) ([]domrec.Record, error)
	Delete(ctx context.Context, kind domrec.Kind, id string) error
}

type importUseCase interface {
	Import(ctx context.Context, recs []domrec.Record) []dombatch.Result
}

type searchUseCase interface {
	Search(ctx context.Context, screen string, req *request.Request) (result.Result, error)
	Options(ctx context.Context, screen, category, text string) ([]string, error)
}

type sessionUseCase interface {
	Mount(ctx context.Context, screen string) (*sessionuc.Session, error)
	Unmount(id string) error
}

// Client is the alumdex SDK entry point.
type Client struct {
	store     db.Store
	records   recordUseCase
	importer  importUseCase
	searchSvc searchUseCase
	sessions  sessionUseCase
	healthSvc healthUseCase
	obs       *observer

	closers []func()
}

// New creates a Client and connects to the record store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: recordrepo.DefaultKeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("alumdex: storage required (use WithValkey, WithRedis, WithBadger or WithInMemory)")
	}

	store, err := driver.Open(config.DatabaseConfig{
		Driver:   cfg.driver,
		Addrs:    cfg.addrs,
		Password: cfg.password,
		Path:     cfg.path,
		InMemory: cfg.inMemory,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("alumdex: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("alumdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	screens, err := screen.NewRegistry(cfg.policies)
	if err != nil {
		return nil, fmt.Errorf("alumdex: %w", err)
	}

	repo := recordrepo.New(store, cfg.keyPrefix)

	imp, err := importeruc.New(repo, cfg.importWorkers)
	if err != nil {
		return nil, fmt.Errorf("alumdex: %w", err)
	}

	mgr := sessionuc.NewManager(repo, screens, zap.NewNop()).
		WithMaxSessions(cfg.maxSessions).
		WithRecorder(obs)
	if cfg.debounce > 0 {
		mgr = mgr.WithDelay(cfg.debounce)
	}

	return &Client{
		store:     store,
		records:   repo,
		importer:  imp,
		searchSvc: searchuc.New(repo, screens),
		sessions:  mgr,
		healthSvc: healthuc.New(store, mgr),
		obs:       obs,
		closers:   []func(){mgr.Close, imp.Release},
	}, nil
}

// Close unmounts every session and releases all resources.
func (c *Client) Close() {
	for _, fn := range c.closers {
		fn()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Records returns the record management service.
func (c *Client) Records() *RecordService {
	return &RecordService{records: c.records, importer: c.importer, obs: c.obs}
}

// Search returns the one-shot search service for a screen.
func (c *Client) Search(screen string) *SearchService {
	return &SearchService{screen: screen, svc: c.searchSvc, obs: c.obs}
}

// Mount starts an interactive session on a screen. Close the session when
// the screen goes away so its pending recomputation is cancelled.
func (c *Client) Mount(ctx context.Context, screen string) (_ *Session, err error) {
	start := time.Now()
	defer func() { c.obs.observe("session.mount", start, err) }()

	s, err := c.sessions.Mount(ctx, screen)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", screen, err)
	}
	return &Session{inner: s, sessions: c.sessions}, nil
}
