package replay

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

//go:embed web
var webFS embed.FS

const defaultTemplate = "web/replay.html.tmpl"

// Response is a rendered replay body.
type Response struct {
	ContentType string
	Body        []byte
}

// Renderer produces the representations of a replay.
type Renderer struct {
	page *template.Template
}

type pageData struct {
	Title     string
	FormatID  string
	Players   string
	ElementID string
	Log       string
	JSON      string
}

// NewRenderer loads the replay page template from path, or the embedded
// page when path is empty. The template is executed with text/template;
// fields are escaped with the builtin html function where needed.
func NewRenderer(path string) (*Renderer, error) {
	var (
		page *template.Template
		err  error
	)
	if path == "" {
		page, err = template.ParseFS(webFS, defaultTemplate)
	} else {
		page, err = template.ParseFiles(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load replay template: %w", err)
	}
	return &Renderer{page: page}, nil
}

// Render serializes rec in the requested mode. credential is the password
// the record was unlocked with and only shapes embedded element ids.
func (r *Renderer) Render(rec *Record, credential *string, mode Mode) (*Response, error) {
	switch mode {
	case ModeJSON:
		body, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		return &Response{ContentType: "application/json; charset=utf-8", Body: body}, nil

	case ModeLog:
		return &Response{ContentType: "text/plain; charset=utf-8", Body: []byte(rec.Log)}, nil

	case ModeHTML:
		return r.renderPage(rec, credential)

	default:
		return nil, fmt.Errorf("%w: %q", ErrBadRequest, string(mode))
	}
}

func (r *Renderer) renderPage(rec *Record, credential *string) (*Response, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	players := make([]string, 0, len(rec.Players))
	for _, p := range rec.Players {
		if p != "" {
			players = append(players, p)
		}
	}
	vs := strings.Join(players, " vs. ")

	var buf bytes.Buffer
	err = r.page.Execute(&buf, pageData{
		Title:     rec.FormatID + ": " + vs,
		FormatID:  rec.FormatID,
		Players:   vs,
		ElementID: ElementID(rec.ID, credential),
		Log:       escapeScriptText(rec.Log),
		JSON:      string(data),
	})
	if err != nil {
		return nil, fmt.Errorf("render replay page: %w", err)
	}
	return &Response{ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

// escapeScriptText keeps s from closing the <script> element it is embedded in.
func escapeScriptText(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}
