// Package models holds the server-side data types shared by repositories,
// services and the HTTP layer.
package models

import "encoding/json"

// Kind names one of the owned-entity collections.
type Kind string

const (
	KindProject  Kind = "projects"
	KindEvent    Kind = "events"
	KindTask     Kind = "tasks"
	KindNote     Kind = "notes"
	KindDocument Kind = "documents"
)

// Record is one owned entity in wire form. Fields is keyed by the field
// name used on the wire (and as the column name); parent references appear
// as "<parent>_external_id" entries holding a string or nil.
type Record struct {
	ExternalID string
	Fields     map[string]any
}

// MarshalJSON flattens the record into a single object.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["external_id"] = r.ExternalID
	return json.Marshal(out)
}

// String returns the named field as a string, or "" when it is absent or
// not a string.
func (r *Record) String(name string) string {
	s, _ := r.Fields[name].(string)
	return s
}
