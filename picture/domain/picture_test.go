package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "canonical uuid",
			in:   "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name: "uppercase uuid",
			in:   "6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
			want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name: "urn uuid",
			in:   "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			want: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name: "plain string",
			in:   "A",
			want: "A",
		},
		{
			name: "surrounding whitespace",
			in:   "  B ",
			want: "B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalID(tt.in); got != tt.want {
				t.Errorf("CanonicalID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDocumentJSONKeepsExtraFields(t *testing.T) {
	raw := `{"_id":"abc","_rev":"1-00","type":"picture","snap_id":"s1","camera":"x100","width":640}`

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if doc.ID != "abc" || doc.Revision != "1-00" || doc.Type != PictureType || doc.SnapID != "s1" {
		t.Errorf("typed fields = %+v", doc)
	}
	if doc.Extra["camera"] != "x100" {
		t.Errorf("camera = %v, want x100", doc.Extra["camera"])
	}
	if doc.Extra["width"] != float64(640) {
		t.Errorf("width = %v, want 640", doc.Extra["width"])
	}
	if _, ok := doc.Extra[FieldID]; ok {
		t.Error("reserved field leaked into Extra")
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != 6 {
		t.Errorf("marshalled %d keys, want 6: %s", len(back), out)
	}
}

func TestDocumentJSONOmitsEmptyReservedFields(t *testing.T) {
	out, err := json.Marshal(&Document{ID: "abc"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"_id":"abc"}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestDocumentJSONRejectsNonStringReservedField(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"_id":"abc","type":3}`), &doc)
	if err == nil {
		t.Fatal("expected error for numeric type field")
	}
	if !strings.Contains(err.Error(), "type") {
		t.Errorf("error = %v, want mention of type", err)
	}
}

func TestDocumentMatches(t *testing.T) {
	doc := &Document{
		ID:     "a",
		Type:   PictureType,
		SnapID: "s1",
		Extra:  map[string]any{"camera": "x100", "width": float64(10)},
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"snap id", Filter{FieldSnapID: "s1"}, true},
		{"other snap id", Filter{FieldSnapID: "s2"}, false},
		{"snap id and type", Filter{FieldSnapID: "s1", FieldType: PictureType}, true},
		{"extra string", Filter{"camera": "x100"}, true},
		{"extra non string", Filter{"width": "10"}, false},
		{"missing field", Filter{"lens": "35mm"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doc.Matches(tt.filter); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := &Document{ID: "a", Type: PictureType, Extra: map[string]any{"camera": "x100"}}
	c, err := doc.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	c.Extra["camera"] = "changed"

	if doc.Extra["camera"] != "x100" {
		t.Error("Clone() shares Extra with the original")
	}
}

func TestDocumentRejectsReservedExtraFields(t *testing.T) {
	for _, name := range []string{FieldID, FieldRevision, FieldType, FieldSnapID} {
		t.Run(name, func(t *testing.T) {
			doc := &Document{ID: "a", Type: PictureType, Extra: map[string]any{name: 5, "camera": "x100"}}

			if _, err := json.Marshal(doc); !errors.Is(err, ErrDocumentConfiguration) {
				t.Errorf("Marshal() error = %v, want ErrDocumentConfiguration", err)
			}
			if _, err := doc.Clone(); !errors.Is(err, ErrDocumentConfiguration) {
				t.Errorf("Clone() error = %v, want ErrDocumentConfiguration", err)
			}
		})
	}
}

func TestNewRevision(t *testing.T) {
	rev := NewRevision(1)
	if !strings.HasPrefix(rev, "1-") {
		t.Errorf("NewRevision(1) = %q, want 1- prefix", rev)
	}
	if len(rev) != len("1-")+32 {
		t.Errorf("NewRevision(1) length = %d", len(rev))
	}
	if rev == NewRevision(1) {
		t.Error("NewRevision() returned the same stamp twice")
	}
}
