package replay

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Defaults
const (
	DefaultCacheSize       = 1000
	DefaultScanConcurrency = 8
	DefaultCompression     = 2
)

// OpenOptions configures a Server.
type OpenOptions struct {
	CacheSize          int
	ScanConcurrency    int
	PortalDir          string
	TemplatePath       string
	AccessURL          string
	Watch              bool
	CompressionEnabled bool
	CompressionLevel   int
	Logger             *slog.Logger
	Registry           *prometheus.Registry
}

// OpenOption is a functional option for configuring Open.
type OpenOption func(*OpenOptions)

func defaultOptions() *OpenOptions {
	return &OpenOptions{
		CacheSize:          DefaultCacheSize,
		ScanConcurrency:    DefaultScanConcurrency,
		Watch:              true,
		CompressionEnabled: true,
		CompressionLevel:   DefaultCompression,
		Logger:             slog.New(slog.DiscardHandler),
	}
}

// WithCacheSize sets how many full records are kept in memory.
func WithCacheSize(n int) OpenOption {
	return func(o *OpenOptions) {
		if n > 0 {
			o.CacheSize = n
		}
	}
}

// WithScanConcurrency sets the number of files parsed in parallel during index scans.
func WithScanConcurrency(n int) OpenOption {
	return func(o *OpenOptions) {
		if n > 0 {
			o.ScanConcurrency = n
		}
	}
}

// WithPortalDir sets the directory of static client assets served under /portal.
func WithPortalDir(dir string) OpenOption {
	return func(o *OpenOptions) { o.PortalDir = dir }
}

// WithTemplate replaces the embedded replay page template.
func WithTemplate(path string) OpenOption {
	return func(o *OpenOptions) { o.TemplatePath = path }
}

// WithAccessURL sets the public base URL quoted in access-denied messages.
// When empty, the URL is derived from the request.
func WithAccessURL(url string) OpenOption {
	return func(o *OpenOptions) { o.AccessURL = url }
}

// WithWatch enables or disables filesystem change notifications.
func WithWatch(enabled bool) OpenOption {
	return func(o *OpenOptions) { o.Watch = enabled }
}

// WithCompression configures gzip response compression.
func WithCompression(enabled bool, level int) OpenOption {
	return func(o *OpenOptions) {
		o.CompressionEnabled = enabled
		o.CompressionLevel = level
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) OpenOption {
	return func(o *OpenOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) OpenOption {
	return func(o *OpenOptions) { o.Registry = reg }
}
