package contentful

import (
	"encoding/json"
	"time"
)

// DefaultLocale is the single locale this space publishes in.
const DefaultLocale = "en-US"

// Fields is a raw management-API field map: field name → locale → value.
// The locale nesting is the management API's wire shape; everything
// outside this package works with typed structs and Loc/lookup helpers.
type Fields map[string]map[string]any

// Loc wraps a value in the default-locale map expected by the management API.
func Loc(v any) map[string]any {
	return map[string]any{DefaultLocale: v}
}

// Set assigns a field value under the default locale.
func (f Fields) Set(name string, v any) {
	f[name] = Loc(v)
}

// Get returns the default-locale value of a field, or nil.
func (f Fields) Get(name string) any {
	loc, ok := f[name]
	if !ok {
		return nil
	}
	return loc[DefaultLocale]
}

// String returns the field as a string, or "" when absent or mistyped.
func (f Fields) String(name string) string {
	s, _ := f.Get(name).(string)
	return s
}

// Float returns the field as a float64, or 0 when absent or mistyped.
func (f Fields) Float(name string) float64 {
	switch v := f.Get(name).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		n, _ := v.Float64()
		return n
	}
	return 0
}

// Bool returns the field as a bool, or false when absent or mistyped.
func (f Fields) Bool(name string) bool {
	b, _ := f.Get(name).(bool)
	return b
}

// Link is a sys link to another resource (content type, space, ...).
type Link struct {
	Sys struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		LinkType string `json:"linkType"`
	} `json:"sys"`
}

// Sys carries a managed entry's identity and version counters. Version
// advances on every write; a write sent with a stale version is rejected
// with 409 by the repository.
type Sys struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Version          int       `json:"version,omitempty"`
	PublishedVersion int       `json:"publishedVersion,omitempty"`
	ContentType      *Link     `json:"contentType,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

// Entry is one versioned record in the content repository (management view).
type Entry struct {
	Sys    Sys    `json:"sys"`
	Fields Fields `json:"fields"`
}

// Collection is a paged management query result.
type Collection struct {
	Total int     `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
	Items []Entry `json:"items"`
}

// DeliveryEntry is a published entry as served by the delivery API:
// fields arrive locale-flattened, so they decode straight into typed
// structs via Decode.
type DeliveryEntry struct {
	Sys    Sys             `json:"sys"`
	Fields json.RawMessage `json:"fields"`
}

// Decode unmarshals the entry's fields into a schema-mirroring struct.
func (e DeliveryEntry) Decode(dst any) error {
	if len(e.Fields) == 0 {
		return nil
	}
	return json.Unmarshal(e.Fields, dst)
}

// DeliveryCollection is a paged delivery query result.
type DeliveryCollection struct {
	Total int             `json:"total"`
	Skip  int             `json:"skip"`
	Limit int             `json:"limit"`
	Items []DeliveryEntry `json:"items"`
}
