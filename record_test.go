package replay

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeRecord(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rec, err := decodeRecord("gen9ou-123", []byte(`{"id":"gen9ou-123","password":null,"uploadtime":1700000000,"log":"|init|battle"}`))
		if err != nil {
			t.Fatalf("decodeRecord() error = %v", err)
		}
		if rec.FormatID != "gen9ou" {
			t.Errorf("FormatID = %q, want %q", rec.FormatID, "gen9ou")
		}
		if rec.Players == nil || len(rec.Players) != 0 {
			t.Errorf("Players = %#v, want empty slice", rec.Players)
		}
		if rec.Password != nil {
			t.Errorf("Password = %q, want nil", *rec.Password)
		}
		if rec.UploadTime != 1700000000 {
			t.Errorf("UploadTime = %d, want 1700000000", rec.UploadTime)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		want := `{"id":"gen9ou-123","password":null,"uploadtime":1700000000,"log":"|init|battle","formatid":"gen9ou","views":0}`
		if string(data) != want {
			t.Errorf("json = %s, want %s", data, want)
		}
	})

	t.Run("null display fields are defaulted", func(t *testing.T) {
		rec, err := decodeRecord("gen9ou-1", []byte(`{"id":"gen9ou-1","formatid":null,"views":null}`))
		if err != nil {
			t.Fatalf("decodeRecord() error = %v", err)
		}
		data, _ := json.Marshal(rec)
		if want := `{"id":"gen9ou-1","formatid":"gen9ou","views":0}`; string(data) != want {
			t.Errorf("json = %s, want %s", data, want)
		}
	})

	t.Run("stored display fields kept", func(t *testing.T) {
		rec, err := decodeRecord("gen9ou-123", []byte(`{"id":"gen9ou-123","formatid":"gen9ubers","players":["A","B"],"rating":1500,"views":7}`))
		if err != nil {
			t.Fatalf("decodeRecord() error = %v", err)
		}
		if rec.FormatID != "gen9ubers" {
			t.Errorf("FormatID = %q, want %q", rec.FormatID, "gen9ubers")
		}
		data, _ := json.Marshal(rec)
		for _, want := range []string{`"rating":1500`, `"views":7`, `"formatid":"gen9ubers"`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("json %s missing %s", data, want)
			}
		}
	})

	t.Run("display fields of unexpected type", func(t *testing.T) {
		rec, err := decodeRecord("gen9ou-5", []byte(`{"id":"gen9ou-5","uploadtime":"soon","players":["A",7,null],"rating":"","views":"many","log":3}`))
		if err != nil {
			t.Fatalf("decodeRecord() error = %v", err)
		}
		if rec.UploadTime != 0 || rec.Log != "" {
			t.Errorf("UploadTime = %d, Log = %q, want zero values", rec.UploadTime, rec.Log)
		}
		if got := strings.Join(rec.Players, ","); got != "A,," {
			t.Errorf("Players = %q, want %q", rec.Players, []string{"A", "", ""})
		}
		data, _ := json.Marshal(rec)
		for _, want := range []string{`"rating":""`, `"views":"many"`, `"uploadtime":"soon"`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("json %s missing %s", data, want)
			}
		}
	})

	t.Run("missing id uses file id", func(t *testing.T) {
		rec, err := decodeRecord("gen8ou-9", []byte(`{"uploadtime":5}`))
		if err != nil {
			t.Fatalf("decodeRecord() error = %v", err)
		}
		if rec.ID != "gen8ou-9" || rec.FormatID != "gen8ou" {
			t.Errorf("ID = %q, FormatID = %q", rec.ID, rec.FormatID)
		}
	})

	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{"id":`},
		{name: "not an object", data: `["gen9ou-1"]`},
		{name: "trailing data", data: `{"id":"gen9ou-1"} {}`},
		{name: "password not a string", data: `{"id":"gen9ou-1","password":123}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeRecord("gen9ou-1", []byte(tt.data)); err == nil {
				t.Fatal("decodeRecord() expected error")
			}
		})
	}
}

func TestRecordMetadata(t *testing.T) {
	rec, err := decodeRecord("gen9ou-123", []byte(`{"id":"gen9ou-123","password":"secret","uploadtime":42,"players":["A","B"],"log":"|win|A","inputlog":">start","rating":1500,"hidden":true}`))
	if err != nil {
		t.Fatalf("decodeRecord() error = %v", err)
	}

	meta := rec.Metadata("gen9ou-123")
	if !meta.Private {
		t.Error("Private = false, want true")
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"gen9ou-123","uploadtime":42,"players":["A","B"],"rating":1500,"hidden":true,"formatid":"gen9ou","views":0,"private":true}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	if rec.Metadata("other").ID != "other" {
		t.Error("Metadata should be keyed by the supplied id")
	}
}

func TestRecordMetadataPrivateFlag(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		want     bool
		wantJSON string
	}{
		{name: "derived public", data: `{"id":"gen9ou-1"}`, want: false, wantJSON: `"private":false`},
		{name: "derived from password", data: `{"id":"gen9ou-1","password":"pw"}`, want: true, wantJSON: `"private":true`},
		{name: "stored flag without password", data: `{"id":"gen9ou-1","private":1}`, want: true, wantJSON: `"private":1`},
		{name: "stored zero with password", data: `{"id":"gen9ou-1","password":"pw","private":0}`, want: false, wantJSON: `"private":0`},
		{name: "stored null is derived", data: `{"id":"gen9ou-1","password":"pw","private":null}`, want: true, wantJSON: `"private":true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := decodeRecord("gen9ou-1", []byte(tt.data))
			if err != nil {
				t.Fatalf("decodeRecord() error = %v", err)
			}
			meta := rec.Metadata("gen9ou-1")
			if meta.Private != tt.want {
				t.Errorf("Private = %v, want %v", meta.Private, tt.want)
			}
			data, _ := json.Marshal(meta)
			if !strings.Contains(string(data), tt.wantJSON) {
				t.Errorf("json %s missing %s", data, tt.wantJSON)
			}
		})
	}
}
