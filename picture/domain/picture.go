package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PictureType is the document type accepted by the picture service
const PictureType = "picture"

// Reserved document keys
const (
	FieldID       = "_id"
	FieldRevision = "_rev"
	FieldType     = "type"
	FieldSnapID   = "snap_id"
)

// IsReservedField reports whether name is one of the typed document keys
func IsReservedField(name string) bool {
	switch name {
	case FieldID, FieldRevision, FieldType, FieldSnapID:
		return true
	}
	return false
}

// Document represents a picture metadata document as held by the document store.
// Known fields are typed; anything else the caller submits is carried in Extra
// so that a document round-trips through the store unchanged.
type Document struct {
	ID       string
	Type     string
	SnapID   string
	Revision string
	Extra    map[string]any
}

// Filter is a set of field equality constraints. A document matches when every
// field is present and equal to the given value.
type Filter map[string]string

// DocumentStore is the persistence collaborator the picture service sits on.
type DocumentStore interface {
	// Get returns the document stored under id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Create stores a new document and returns its revision. It fails with
	// ErrConflict if a document already exists under the same id.
	Create(ctx context.Context, doc *Document) (string, error)

	// Query returns every document matching all constraints in filter.
	Query(ctx context.Context, filter Filter) ([]*Document, error)
}

// TxFunc runs fn as a single unit of work against the store backing it.
// Backends without transactions simply call fn.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// Filesystem creates directories and builds paths for picture files
type Filesystem interface {
	EnsureDir(path string) error
	Join(elem ...string) string
}

// CanonicalID normalises an identifier. UUIDs are rendered in their canonical
// lowercase hyphenated form, anything else is returned trimmed but otherwise as-is.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

// IsPicture reports whether the document carries the picture type
func (d *Document) IsPicture() bool {
	return d != nil && d.Type == PictureType
}

// Field returns the value of a named field, reserved or extra
func (d *Document) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return d.ID, d.ID != ""
	case FieldRevision:
		return d.Revision, d.Revision != ""
	case FieldType:
		return d.Type, d.Type != ""
	case FieldSnapID:
		return d.SnapID, d.SnapID != ""
	}
	v, ok := d.Extra[name]
	return v, ok
}

// Matches reports whether every constraint in filter holds for the document.
// Extra fields only match when they hold a string equal to the wanted value.
func (d *Document) Matches(filter Filter) bool {
	for name, want := range filter {
		got, ok := d.Field(name)
		if !ok {
			return false
		}
		s, isString := got.(string)
		if !isString || s != want {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the document
func (d *Document) Clone() (*Document, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to copy document %s: %w", d.ID, err)
	}
	var c Document
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to copy document %s: %w", d.ID, err)
	}
	return &c, nil
}

// MarshalJSON flattens the typed fields and Extra into a single JSON object.
// Reserved keys inside Extra are refused rather than silently shadowed.
func (d Document) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Extra)+4)
	for k, v := range d.Extra {
		if IsReservedField(k) {
			return nil, fmt.Errorf("%w: reserved field %q set as an extra field", ErrDocumentConfiguration, k)
		}
		m[k] = v
	}
	if d.ID != "" {
		m[FieldID] = d.ID
	}
	if d.Revision != "" {
		m[FieldRevision] = d.Revision
	}
	if d.Type != "" {
		m[FieldType] = d.Type
	}
	if d.SnapID != "" {
		m[FieldSnapID] = d.SnapID
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits a JSON object into typed fields and Extra
func (d *Document) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*d = Document{}
	var err error
	if d.ID, err = takeString(m, FieldID); err != nil {
		return err
	}
	if d.Revision, err = takeString(m, FieldRevision); err != nil {
		return err
	}
	if d.Type, err = takeString(m, FieldType); err != nil {
		return err
	}
	if d.SnapID, err = takeString(m, FieldSnapID); err != nil {
		return err
	}
	if len(m) > 0 {
		d.Extra = m
	}
	return nil
}

func takeString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", nil
	}
	delete(m, key)
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("document field %q must be a string, got %T", key, v)
	}
	return s, nil
}
