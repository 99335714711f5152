// Package compression wraps HTTP handlers with gzip response compression.
package compression

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"
)

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// New returns a Middleware compressing responses for clients that accept gzip.
// level selects speed (1), default (2) or size (3). Bodies below
// gzhttp.DefaultMinSize are sent as is.
func New(level int, enabled bool) (Middleware, error) {
	if !enabled {
		return func(h http.Handler) http.Handler { return h }, nil
	}

	var gzipLevel int
	switch level {
	case 1:
		gzipLevel = gzip.BestSpeed
	case 2:
		gzipLevel = gzip.DefaultCompression
	case 3:
		gzipLevel = gzip.BestCompression
	default:
		gzipLevel = gzip.DefaultCompression
	}

	wrap, err := gzhttp.NewWrapper(
		gzhttp.CompressionLevel(gzipLevel),
		gzhttp.MinSize(gzhttp.DefaultMinSize),
	)
	if err != nil {
		return nil, err
	}

	return func(h http.Handler) http.Handler { return wrap(h) }, nil
}
