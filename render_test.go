package replay

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testRecord() *Record {
	return &Record{
		ID:         "gen9ou-123",
		UploadTime: 1700000000,
		Players:    []string{"Alice", "", "Bob<3"},
		FormatID:   "gen9ou",
		Log:        "|init|battle\n|raw|</script><b>hi</b>\n|win|Alice",
	}
}

func TestRender(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	t.Run("json", func(t *testing.T) {
		resp, err := r.Render(testRecord(), nil, ModeJSON)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if !strings.HasPrefix(resp.ContentType, "application/json") {
			t.Errorf("ContentType = %q", resp.ContentType)
		}
		var got map[string]any
		if err := json.Unmarshal(resp.Body, &got); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if got["id"] != "gen9ou-123" || got["formatid"] != "gen9ou" || got["log"] != testRecord().Log {
			t.Errorf("decoded = %v", got)
		}
	})

	t.Run("json keeps stored fields", func(t *testing.T) {
		rec, err := decodeRecord("gen9ou-7", []byte(`{"id":"gen9ou-7","password":null,"uploadtime":10,"players":["A","B"],"log":"|win|A","private":1,"hidden":true,"p1id":"a"}`))
		if err != nil {
			t.Fatalf("decodeRecord() error = %v", err)
		}
		resp, err := r.Render(rec, nil, ModeJSON)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		want := `{"id":"gen9ou-7","password":null,"uploadtime":10,"players":["A","B"],"log":"|win|A","private":1,"hidden":true,"p1id":"a","formatid":"gen9ou","views":0}`
		if got := string(resp.Body); got != want {
			t.Errorf("Body = %s, want %s", got, want)
		}
	})

	t.Run("log", func(t *testing.T) {
		resp, err := r.Render(testRecord(), nil, ModeLog)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if !strings.HasPrefix(resp.ContentType, "text/plain") {
			t.Errorf("ContentType = %q", resp.ContentType)
		}
		if string(resp.Body) != testRecord().Log {
			t.Errorf("Body = %q, want raw log", resp.Body)
		}
	})

	t.Run("html", func(t *testing.T) {
		resp, err := r.Render(testRecord(), strPtr("pw"), ModeHTML)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if !strings.HasPrefix(resp.ContentType, "text/html") {
			t.Errorf("ContentType = %q", resp.ContentType)
		}
		body := string(resp.Body)

		for _, want := range []string{
			"<title>gen9ou: Alice vs. Bob&lt;3 - Replays</title>",
			`id="log-gen9ou-123-pwpw"`,
			`id="data-gen9ou-123-pwpw"`,
			`<\/script><b>hi<\/b>`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("page missing %q", want)
			}
		}
		if !strings.Contains(body, `\u003c/script\u003e`) {
			t.Error("embedded JSON not HTML-escaped")
		}
		if strings.Count(body, "</script>") != 3 {
			t.Errorf("log escaped its script element:\n%s", body)
		}
	})

	t.Run("unsupported mode", func(t *testing.T) {
		_, err := r.Render(testRecord(), nil, Mode("xml"))
		if !errors.Is(err, ErrBadRequest) {
			t.Errorf("Render() error = %v, want ErrBadRequest", err)
		}
	})
}

func TestNewRendererCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.tmpl")
	if err := os.WriteFile(path, []byte("{{.ElementID}}|{{.Players}}"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRenderer(path)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	resp, err := r.Render(&Record{ID: "gen1ou-5", Players: []string{"A", "B"}}, nil, ModeHTML)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := string(resp.Body); got != "gen1ou-5|A vs. B" {
		t.Errorf("Body = %q", got)
	}

	if _, err := NewRenderer(filepath.Join(t.TempDir(), "missing.tmpl")); err == nil {
		t.Error("NewRenderer() expected error for missing template")
	}
}
