package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swordfishtr/replay-server/internal/compression"
)

type ctxKey int

const loggerKey ctxKey = 0

// Handler returns the HTTP surface of the server.
func (s *Server) Handler() (http.Handler, error) {
	r := mux.NewRouter()
	r.Use(s.observe)

	get := []string{http.MethodGet, http.MethodHead}

	r.HandleFunc("/", s.handleList).Methods(get...).Name("list")
	r.HandleFunc("/api", s.handleAPI).Methods(get...).Name("api")
	r.HandleFunc("/healthz", s.handleHealth).Methods(get...).Name("healthz")
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(get...).Name("metrics")
	r.HandleFunc("/favicon.ico", s.handleFavicon).Methods(get...).Name("favicon")
	r.HandleFunc("/images/{img}", s.handleImage).Methods(get...).Name("images")
	r.PathPrefix("/portal/").Handler(s.portalHandler()).Methods(get...).Name("portal")
	r.HandleFunc("/{replay}", s.handleReplay).Methods(get...).Name("replay")

	compress, err := compression.New(s.opts.CompressionLevel, s.opts.CompressionEnabled)
	if err != nil {
		return nil, fmt.Errorf("configure compression: %w", err)
	}
	return compress(r), nil
}

// ---------- GET /{replay} ----------

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r.Context())
	segment := mux.Vars(r)["replay"]

	id, err := ParseIdentifier(segment)
	if err != nil {
		logger.Debug("malformed replay id", slog.String("replay", segment))
		w.WriteHeader(http.StatusNotFound)
		return
	}

	rec, err := s.Replay(r.Context(), id)
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, accessDeniedMessage(s.accessURL(r), id.ID), http.StatusForbidden)
		return
	case errors.Is(err, ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		return
	case err != nil:
		logger.Error("replay lookup", slog.String("id", id.ID), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp, err := s.Render(rec, id)
	if err != nil {
		if errors.Is(err, ErrBadRequest) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		logger.Error("render replay", slog.String("id", id.ID), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Write(resp.Body)
}

func accessDeniedMessage(base, id string) string {
	return fmt.Sprintf("Password incorrect. If you lost it, login on the server and send /accessreplay %s/%s", base, id)
}

func (s *Server) accessURL(r *http.Request) string {
	if s.opts.AccessURL != "" {
		return strings.TrimSuffix(s.opts.AccessURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// ---------- GET /api ----------

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := Query{
		MinDate: parseInt(params.Get("minDate"), 0),
		MaxDate: parseInt(params.Get("maxDate"), 0),
		Limit:   int(parseInt(params.Get("limit"), DefaultLimit)),
		Format:  params.Get("format"),
	}

	requestLogger(r.Context()).Debug("metadata query",
		slog.Int64("min_date", q.MinDate),
		slog.Int64("max_date", q.MaxDate),
		slog.Int("limit", q.Limit),
		slog.String("format", q.Format),
	)

	writeJSON(w, http.StatusOK, s.Query(q))
}

// parseInt reads a decimal integer, falling back to def when s is empty or not a number.
func parseInt(s string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return def
	}
	return n
}

// ---------- GET /healthz ----------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	result := map[string]any{
		"status":  "ok",
		"replays": s.index.Len(),
		"cached":  s.cache.Len(),
	}
	status := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		result["status"] = "degraded"
		result["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, result)
}

// ---------- static assets ----------

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, webFS, "web/list.html")
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img := strings.ReplaceAll(mux.Vars(r)["img"], "..", "")
	if s.opts.PortalDir == "" || img == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(expandPath(s.opts.PortalDir), "replay.pokemonshowdown.com", "images", img))
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if s.opts.PortalDir == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(expandPath(s.opts.PortalDir), "play.pokemonshowdown.com", "favicon-32.png"))
}

func (s *Server) portalHandler() http.Handler {
	if s.opts.PortalDir == "" {
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/portal/", http.FileServer(http.Dir(expandPath(s.opts.PortalDir))))
}

// ---------- middleware ----------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observe tags each request with a request_id, logs it and counts it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		logger := s.logger.With(slog.String("request_id", requestID))

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
			route = cur.GetName()
		}

		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey, logger)))

		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func requestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
