package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/swordfishtr/replay-server/internal/store"
)

// Server owns the record cache, the metadata index and the watcher that
// keeps the index current. It is safe for concurrent use.
type Server struct {
	opts     *OpenOptions
	store    store.Store
	cache    store.Cache[*Record]
	index    *Index
	renderer *Renderer
	metrics  *metrics
	logger   *slog.Logger

	loads   singleflight.Group
	watcher *watcher
	cancel  context.CancelFunc
}

// Open builds a Server over the replays in dir: the directory is scanned
// once into the index, and, unless disabled with WithWatch(false), watched
// for changes until Close.
func Open(dir string, opts ...OpenOption) (*Server, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	st, err := store.NewLocalStore(expandPath(dir))
	if err != nil {
		return nil, err
	}

	renderer, err := NewRenderer(expandPath(options.TemplatePath))
	if err != nil {
		return nil, err
	}

	reg := options.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		opts:     options,
		store:    st,
		index:    newIndex(st, options.ScanConcurrency, options.Logger),
		renderer: renderer,
		logger:   options.Logger,
	}
	s.metrics = newMetrics(reg, func() int { return s.cache.Len() }, s.index.Len)

	cache, err := store.NewLRUCache[*Record](options.CacheSize, func(string) {
		s.metrics.cacheEvictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("create record cache: %w", err)
	}
	s.cache = cache

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.index.Scan(ctx); err != nil {
		cancel()
		return nil, err
	}
	s.logger.Info("replay index loaded", slog.String("dir", st.Dir()), slog.Int("replays", s.index.Len()))

	if options.Watch {
		s.watcher, err = startWatcher(ctx, st.Dir(), s.index, s.logger)
		if err != nil {
			cancel()
			return nil, err
		}
	}

	return s, nil
}

// Replay resolves id to its record and checks the supplied credential.
// It returns ErrNotFound when the record is missing or unreadable and
// ErrForbidden when the credential does not match.
func (s *Server) Replay(ctx context.Context, id Identifier) (*Record, error) {
	rec, err := s.lookup(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if !Authorize(rec, id.Password) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, id.ID)
	}
	return rec, nil
}

// Render produces the representation of rec requested by id.
func (s *Server) Render(rec *Record, id Identifier) (*Response, error) {
	return s.renderer.Render(rec, id.Password, id.Mode)
}

// Query lists indexed metadata.
func (s *Server) Query(q Query) []Metadata {
	return s.index.Query(q)
}

// Index returns the metadata index.
func (s *Server) Index() *Index { return s.index }

// Close stops watching the replays directory.
func (s *Server) Close() error {
	s.cancel()
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// lookup serves a record from the cache, loading it from the store on a miss.
// Concurrent misses for one id share a single read, which is not canceled
// when the caller that started it goes away.
func (s *Server) lookup(ctx context.Context, id string) (*Record, error) {
	if rec, ok := s.cache.Get(id); ok {
		s.metrics.cacheHits.Inc()
		return rec, nil
	}
	s.metrics.cacheMisses.Inc()

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(id, func() (any, error) {
		data, err := s.store.Get(loadCtx, id)
		if err != nil {
			return nil, err
		}
		rec, err := decodeRecord(id, data)
		if err != nil {
			return nil, err
		}
		s.cache.Add(id, rec)
		return rec, nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("replay unreadable", slog.String("id", id), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
	}
	return v.(*Record), nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
