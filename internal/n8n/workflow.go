package n8n

import (
	"encoding/json"
)

// WritableFields are the workflow fields the public API accepts on update.
// Everything else on a fetched workflow, pinData included, is rejected by
// the update schema and never sent.
var WritableFields = []string{"name", "nodes", "connections", "settings", "staticData"}

// required fields get an empty value when the server omitted them.
var requiredDefaults = map[string]json.RawMessage{
	"nodes":       json.RawMessage(`[]`),
	"connections": json.RawMessage(`{}`),
	"settings":    json.RawMessage(`{}`),
}

// Tag is an n8n tag.
type Tag struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	UsageCount *int   `json:"usageCount,omitempty" yaml:"usageCount,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// TagRef references a tag by id in an update payload.
type TagRef struct {
	ID string `json:"id"`
}

// Workflow is a fetched workflow document. Every top-level field is kept
// as the raw JSON the server sent so writes can echo it back untouched.
type Workflow struct {
	ID     string
	Name   string
	Tags   []Tag
	fields map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	w.fields = fields
	w.ID, w.Name, w.Tags = "", "", nil

	if raw, ok := fields["id"]; ok {
		var id any
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}
		switch v := id.(type) {
		case string:
			w.ID = v
		case float64:
			w.ID = string(raw)
		}
	}
	if raw, ok := fields["name"]; ok {
		_ = json.Unmarshal(raw, &w.Name)
	}
	if raw, ok := fields["tags"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &w.Tags); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler and returns the document as fetched.
func (w *Workflow) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.fields)
}

// Field returns a top-level field as raw JSON.
func (w *Workflow) Field(name string) (json.RawMessage, bool) {
	raw, ok := w.fields[name]
	return raw, ok
}

// TagIDs returns the ids of the tags currently on the workflow.
func (w *Workflow) TagIDs() []string {
	ids := make([]string, 0, len(w.Tags))
	for _, t := range w.Tags {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// UpdatePayload builds a full-record update body carrying the given tag ids.
// Writable fields are copied byte-for-byte from the fetched document.
func (w *Workflow) UpdatePayload(tagIDs []string) map[string]any {
	payload := make(map[string]any, len(WritableFields)+1)
	for _, name := range WritableFields {
		if raw, ok := w.fields[name]; ok && string(raw) != "null" {
			payload[name] = raw
			continue
		}
		if def, ok := requiredDefaults[name]; ok {
			payload[name] = def
		}
	}

	refs := make([]TagRef, len(tagIDs))
	for i, id := range tagIDs {
		refs[i] = TagRef{ID: id}
	}
	payload["tags"] = refs
	return payload
}
