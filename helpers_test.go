package replay

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func strPtr(s string) *string { return &s }

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// writeReplay stores fields as <dir>/<name>.json, writing to a temp file
// first so watchers never see a partial record.
func writeReplay(t *testing.T, dir, name string, fields map[string]any) {
	t.Helper()

	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}

	tmp := filepath.Join(dir, name+".json.tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name+".json")); err != nil {
		t.Fatalf("rename %s: %v", name, err)
	}
}

func sampleReplay(id string, uploadtime int64, password any) map[string]any {
	return map[string]any{
		"id":         id,
		"password":   password,
		"uploadtime": uploadtime,
		"players":    []string{"A", "B"},
		"log":        "|init|battle\n|player|p1|A\n|player|p2|B\n|win|A",
		"inputlog":   ">start",
	}
}

// openTestServer opens a server over dir without a watcher unless opts enable it.
func openTestServer(t *testing.T, dir string, opts ...OpenOption) *Server {
	t.Helper()

	s, err := Open(dir, append([]OpenOption{WithWatch(false)}, opts...)...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
