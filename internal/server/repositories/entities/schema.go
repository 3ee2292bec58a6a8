package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

// FieldType drives input coercion and scanning of a scalar column.
type FieldType int

const (
	Text FieldType = iota
	Timestamp
	Float
	Bool
)

// Field is a scalar column. The wire name and the column name are the same.
type Field struct {
	Name     string
	Type     FieldType
	Default  any
	ReadOnly bool // listed, never written by clients
}

// Parent is a reference to a row of another kind owned by the same user,
// exchanged on the wire by that row's external id.
type Parent struct {
	Field  string // wire name, e.g. "project_external_id"
	Column string // foreign key column, e.g. "project_id"
	Table  string // referenced table
}

// Schema describes one owned-entity kind.
type Schema struct {
	Kind    models.Kind
	Table   string
	Fields  []Field
	Parents []Parent
}

var (
	projectParent = Parent{Field: "project_external_id", Column: "project_id", Table: "projects"}
	eventParent   = Parent{Field: "event_external_id", Column: "event_id", Table: "events"}
)

var (
	Projects = &Schema{
		Kind:  models.KindProject,
		Table: "projects",
		Fields: []Field{
			{Name: "title", Type: Text},
			{Name: "description_project", Type: Text},
			{Name: "status", Type: Text, Default: "on"},
			{Name: "last_opened_date", Type: Timestamp, ReadOnly: true},
		},
	}

	Events = &Schema{
		Kind:  models.KindEvent,
		Table: "events",
		Fields: []Field{
			{Name: "title", Type: Text},
			{Name: "end_date", Type: Timestamp},
			{Name: "status", Type: Text, Default: "on"},
			{Name: "description_event", Type: Text},
			{Name: "address", Type: Text},
			{Name: "latitude", Type: Float},
			{Name: "longitude", Type: Float},
		},
		Parents: []Parent{projectParent},
	}

	Tasks = &Schema{
		Kind:  models.KindTask,
		Table: "task_items",
		Fields: []Field{
			{Name: "title", Type: Text},
			{Name: "end_date", Type: Timestamp},
			{Name: "complete_date", Type: Timestamp},
			{Name: "status", Type: Text, Default: "on"},
			{Name: "description_task", Type: Text},
		},
		Parents: []Parent{projectParent, eventParent},
	}

	Notes = &Schema{
		Kind:  models.KindNote,
		Table: "notes",
		Fields: []Field{
			{Name: "title", Type: Text},
			{Name: "content", Type: Text},
			{Name: "created_at", Type: Timestamp},
			{Name: "updated_at", Type: Timestamp},
			{Name: "is_favorite", Type: Bool},
			{Name: "is_archived", Type: Bool},
		},
		Parents: []Parent{projectParent, eventParent},
	}

	Documents = &Schema{
		Kind:  models.KindDocument,
		Table: "uploaded_documents",
		Fields: []Field{
			{Name: "title", Type: Text},
			{Name: "local_url", Type: Text},
			{Name: "upload_date", Type: Timestamp, ReadOnly: true},
		},
		Parents: []Parent{eventParent},
	}
)

// All returns the schemas in registration order.
func All() []*Schema {
	return []*Schema{Projects, Events, Tasks, Notes, Documents}
}

// Lookup finds the schema for a kind.
func Lookup(kind models.Kind) (*Schema, bool) {
	for _, s := range All() {
		if s.Kind == kind {
			return s, true
		}
	}
	return nil, false
}

func (s *Schema) writable() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.ReadOnly {
			out = append(out, f)
		}
	}
	return out
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Normalize builds a Record from a decoded JSON object. Only external_id is
// required; writable fields are coerced to their column type, defaults are
// applied to absent keys (an explicit null stays null) and unknown keys are
// dropped. Parent references
// keep the given external id (or nil); resolution happens at write time.
func (s *Schema) Normalize(in map[string]any) (*models.Record, error) {
	externalID, _ := in["external_id"].(string)
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: external_id is required", common.ErrorValidation)
	}

	rec := &models.Record{ExternalID: externalID, Fields: make(map[string]any, len(s.Fields)+len(s.Parents))}

	for _, f := range s.writable() {
		raw, present := in[f.Name]
		if !present {
			rec.Fields[f.Name] = f.Default
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		rec.Fields[f.Name] = v
	}

	for _, p := range s.Parents {
		switch v := in[p.Field].(type) {
		case nil:
			rec.Fields[p.Field] = nil
		case string:
			if v == "" {
				rec.Fields[p.Field] = nil
			} else {
				rec.Fields[p.Field] = v
			}
		default:
			return nil, fmt.Errorf("%w: %s must be a string", common.ErrorValidation, p.Field)
		}
	}

	return rec, nil
}

func coerce(f Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch f.Type {
	case Text:
		switch s := v.(type) {
		case string:
			return s, nil
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(s), nil
		}
	case Timestamp:
		if s, ok := v.(string); ok {
			if s == "" {
				return nil, nil
			}
			for _, layout := range timestampLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t, nil
				}
			}
		}
	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed, nil
			}
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}

	return nil, fmt.Errorf("%w: invalid value for %s", common.ErrorValidation, f.Name)
}
