package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/db"
	"github.com/kailas-cloud/alumdex/internal/domain"
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/logger"
)

// DefaultKeyPrefix namespaces all keys written by the repository.
const DefaultKeyPrefix = "alumdex:"

// store is the consumer interface for records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores records as JSON documents under <prefix>record:<kind>:<id>.
// It implements the record source of the search and session use cases.
type Repo struct {
	store  store
	prefix string
}

// New creates a record repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// List returns every stored record of the given kind ordered by ID.
// Documents that fail to decode or validate are skipped and logged so one
// bad entry cannot take a screen down.
func (r *Repo) List(ctx context.Context, kind domrec.Kind) ([]domrec.Record, error) {
	if !kind.IsValid() {
		return nil, domain.NewRecordError("", fmt.Sprintf("unknown kind %q", kind))
	}

	keys, err := r.store.Scan(ctx, r.kindPattern(kind))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	if len(keys) == 0 {
		return []domrec.Record{}, nil
	}
	sort.Strings(keys)

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.get %s records: %w", kind, err)
	}

	log := logger.FromContext(ctx)
	out := make([]domrec.Record, 0, len(docs))
	for i, raw := range docs {
		if raw == nil {
			continue
		}
		rec, err := decode(log, keys[i], raw)
		if err != nil {
			log.Warn("skipping stored record", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		if rec.Kind != kind {
			log.Warn("skipping record with mismatched kind",
				zap.String("key", keys[i]), zap.String("kind", string(rec.Kind)))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get returns a record by kind and ID.
func (r *Repo) Get(ctx context.Context, kind domrec.Kind, id string) (domrec.Record, error) {
	key := r.key(kind, id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Record{}, domain.ErrNotFound
		}
		return domrec.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	rec, err := decode(logger.FromContext(ctx), key, raw)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec, nil
}

// Upsert validates and stores a record. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, rec domrec.Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	key := r.key(rec.Kind, rec.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// UpsertMany validates every record, then stores them in one pipelined call.
// Nothing is written when any record is invalid.
func (r *Repo) UpsertMany(ctx context.Context, recs []domrec.Record) error {
	if len(recs) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, 0, len(recs))
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(recs[i])
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", recs[i].ID, err)
		}
		items = append(items, db.JSONSetItem{
			Key:  r.key(recs[i].Kind, recs[i].ID),
			Path: "$",
			Data: data,
		})
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set %d records: %w", len(items), err)
	}
	return nil
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, kind domrec.Kind, id string) error {
	key := r.key(kind, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(kind domrec.Kind, id string) string {
	return fmt.Sprintf("%srecord:%s:%s", r.prefix, kind, id)
}

func (r *Repo) kindPattern(kind domrec.Kind) string {
	return fmt.Sprintf("%srecord:%s:*", escapeGlob(r.prefix), kind)
}

// escapeGlob quotes SCAN MATCH metacharacters in a literal prefix.
func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	for _, c := range s {
		if strings.ContainsRune(`*?[]\`, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// decode keeps a legacy document whose attributes have drifted in type; only
// the mistyped attributes are dropped.
func decode(log *zap.Logger, key string, raw []byte) (domrec.Record, error) {
	rec, skipped, err := domrec.Decode(raw)
	if err != nil {
		return domrec.Record{}, err
	}
	if len(skipped) > 0 {
		log.Debug("ignoring mistyped record attributes",
			zap.String("key", key), zap.Strings("attributes", skipped))
	}
	if err := rec.Validate(); err != nil {
		return domrec.Record{}, err
	}
	return rec, nil
}
