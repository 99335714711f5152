package replay

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/swordfishtr/replay-server/internal/store"
)

// Query limits
const (
	DefaultLimit = 100
	MaxLimit     = 200
)

// Query filters the metadata index.
type Query struct {
	MinDate int64  // inclusive lower bound on uploadtime; 0 = none
	MaxDate int64  // inclusive upper bound on uploadtime; 0 = none
	Limit   int    // clamped to [1, MaxLimit]; <= 0 means DefaultLimit
	Format  string // exact formatid match; "" = any
}

// Index maps replay ids to their public metadata.
//
// Entries are added or replaced when files change and are never removed:
// a replay deleted from disk stays listed until the process restarts.
type Index struct {
	store       store.Store
	concurrency int
	logger      *slog.Logger

	mu      sync.RWMutex
	entries map[string]*Metadata
}

func newIndex(st store.Store, concurrency int, logger *slog.Logger) *Index {
	return &Index{
		store:       st,
		concurrency: concurrency,
		logger:      logger,
		entries:     make(map[string]*Metadata),
	}
}

// Scan loads every stored record not yet indexed.
// Files that fail to read or parse are logged and skipped.
func (i *Index) Scan(ctx context.Context) error {
	ids, err := i.store.List(ctx)
	if err != nil {
		return fmt.Errorf("scan index: %w", err)
	}

	i.mu.RLock()
	missing := slices.DeleteFunc(ids, func(id string) bool {
		_, ok := i.entries[id]
		return ok
	})
	i.mu.RUnlock()

	if len(missing) == 0 {
		return nil
	}

	var mu sync.Mutex
	loaded := make(map[string]*Metadata, len(missing))

	p := pool.New().WithMaxGoroutines(i.concurrency).WithContext(ctx)
	for _, id := range missing {
		p.Go(func(ctx context.Context) error {
			meta, err := i.load(ctx, id)
			if err != nil {
				i.logger.Warn("skipping replay", slog.String("id", id), slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			loaded[id] = meta
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("scan index: %w", err)
	}

	i.mu.Lock()
	for id, meta := range loaded {
		// A concurrent Refresh may have stored a newer copy.
		if _, ok := i.entries[id]; !ok {
			i.entries[id] = meta
		}
	}
	i.mu.Unlock()

	if len(loaded) > 0 {
		i.logger.Debug("indexed replays", slog.Int("added", len(loaded)), slog.Int("total", i.Len()))
	}
	return nil
}

// Refresh handles a change notification for filename: the named record is
// re-read and replaced, then the directory is rescanned for ids that were
// created without a usable event. Safe to call repeatedly.
func (i *Index) Refresh(ctx context.Context, filename string) error {
	var errs []error

	if id, ok := store.IDFromFilename(filename); ok {
		meta, err := i.load(ctx, id)
		if err != nil {
			errs = append(errs, err)
		} else {
			i.mu.Lock()
			i.entries[id] = meta
			i.mu.Unlock()
		}
	}

	if err := i.Scan(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Query returns matching metadata, newest upload first.
func (i *Index) Query(q Query) []Metadata {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	i.mu.RLock()
	results := make([]Metadata, 0, len(i.entries))
	for _, meta := range i.entries {
		if q.MinDate != 0 && meta.UploadTime < q.MinDate {
			continue
		}
		if q.MaxDate != 0 && meta.UploadTime > q.MaxDate {
			continue
		}
		if q.Format != "" && meta.FormatID != q.Format {
			continue
		}
		results = append(results, *meta)
	}
	i.mu.RUnlock()

	slices.SortFunc(results, func(a, b Metadata) int {
		if c := cmp.Compare(b.UploadTime, a.UploadTime); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Len returns the number of indexed replays.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

func (i *Index) load(ctx context.Context, id string) (*Metadata, error) {
	data, err := i.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(id, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return rec.Metadata(id), nil
}
