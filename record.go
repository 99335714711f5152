package replay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a full replay as stored on disk.
//
// The typed fields are the ones the server reads. Every stored field,
// known or not, is kept in the underlying document and is what gets
// served, so records round-trip without losing data.
type Record struct {
	ID         string
	Password   *string
	UploadTime int64
	Players    []string
	FormatID   string
	Log        string

	doc *document
}

// Metadata is the part of a stored replay that is safe to list publicly:
// every field except password, log and inputlog, keyed by id.
type Metadata struct {
	ID         string
	UploadTime int64
	Players    []string
	FormatID   string
	Private    bool

	doc *document
}

// Fields never copied into Metadata.
var privateFields = []string{"id", "password", "log", "inputlog"}

// decodeRecord parses a stored record and fills display defaults: formatid
// from the id prefix and views = 0 when absent or null. id is the key the
// record is stored under and stands in for a missing "id" field.
//
// Only the password is decoded strictly. Display fields of an unexpected
// type are passed through as stored and read as zero values.
func decodeRecord(id string, data []byte) (*Record, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}

	rec := &Record{doc: doc}
	if !doc.decode("id", &rec.ID) || rec.ID == "" {
		rec.ID = id
	}
	if doc.has("password") {
		var pw string
		if err := json.Unmarshal(doc.fields["password"], &pw); err != nil {
			return nil, fmt.Errorf("parse record: password: %w", err)
		}
		rec.Password = &pw
	}

	var uploaded float64
	if doc.decode("uploadtime", &uploaded) {
		rec.UploadTime = int64(uploaded)
	}
	rec.Players = decodePlayers(doc)
	doc.decode("log", &rec.Log)

	if !doc.has("formatid") {
		prefix, _, _ := strings.Cut(rec.ID, "-")
		doc.set("formatid", marshalString(prefix))
	}
	doc.decode("formatid", &rec.FormatID)

	if !doc.has("views") {
		doc.set("views", json.RawMessage("0"))
	}
	return rec, nil
}

// decodePlayers reads the players array; entries that are not strings become "".
func decodePlayers(doc *document) []string {
	players := []string{}

	var items []json.RawMessage
	if !doc.decode("players", &items) {
		return players
	}
	for _, item := range items {
		var name string
		json.Unmarshal(item, &name)
		players = append(players, name)
	}
	return players
}

// MarshalJSON encodes every stored field, defaults included.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.document().MarshalJSON()
}

// document returns the stored fields, or builds them from the typed fields
// for a Record that was not decoded from disk.
func (r *Record) document() *document {
	if r.doc != nil {
		return r.doc
	}

	d := newDocument()
	d.set("id", marshalString(r.ID))
	if r.Password != nil {
		d.set("password", marshalString(*r.Password))
	} else {
		d.set("password", json.RawMessage("null"))
	}
	d.set("uploadtime", marshalValue(r.UploadTime))
	d.set("players", marshalValue(r.Players))
	d.set("formatid", marshalString(r.FormatID))
	d.set("log", marshalString(r.Log))
	return d
}

// Metadata strips the password and transcripts. id is the key the record is
// indexed under, which is its file name rather than rec.ID. A stored
// "private" field is kept as is; otherwise it is derived from the password.
func (r *Record) Metadata(id string) *Metadata {
	src := r.document()

	doc := newDocument()
	doc.set("id", marshalString(id))
	for _, key := range src.keys {
		if !isPrivateField(key) {
			doc.set(key, src.fields[key])
		}
	}

	private := r.Password != nil
	if doc.has("private") {
		private = truthy(doc.fields["private"])
	} else {
		doc.set("private", marshalValue(private))
	}

	return &Metadata{
		ID:         id,
		UploadTime: r.UploadTime,
		Players:    r.Players,
		FormatID:   r.FormatID,
		Private:    private,
		doc:        doc,
	}
}

// MarshalJSON encodes the listed fields with id first.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.doc != nil {
		return m.doc.MarshalJSON()
	}

	d := newDocument()
	d.set("id", marshalString(m.ID))
	d.set("uploadtime", marshalValue(m.UploadTime))
	d.set("players", marshalValue(m.Players))
	d.set("formatid", marshalString(m.FormatID))
	d.set("private", marshalValue(m.Private))
	return d.MarshalJSON()
}

func isPrivateField(key string) bool {
	for _, f := range privateFields {
		if key == f {
			return true
		}
	}
	return false
}

// truthy follows the uploader's loose flags: false, 0, "" and null are false.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

func marshalString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func marshalValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
