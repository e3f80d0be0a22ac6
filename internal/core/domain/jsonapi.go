package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// IndexKey is the cache key of the top-level index document.
const IndexKey = "index"

// ItemCacheKey returns the cache key of the document an index item lists.
// Item keys are prefixed so that no index item can collide with IndexKey.
func ItemCacheKey(indexKey string) string {
	return "item:" + indexKey
}

// ListLinkKey is the link name an index item uses to point at its
// institution list.
const ListLinkKey = "list"

// Document is a decoded JSON:API payload.
type Document struct {
	// Data holds the records in document order.
	Data []Record `json:"data"`
}

// Record is one typed, identified entry of a Document.
type Record struct {
	// Type is the JSON:API resource type (e.g., "index-item", "hei").
	Type string `json:"type"`

	// ID uniquely identifies the record within its document.
	ID string `json:"id"`

	// Attributes holds the record's remote fields.
	Attributes Attributes `json:"attributes,omitempty"`

	// Links holds named links; each is either a bare URL or an object with href.
	Links Links `json:"links,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
// A numeric or boolean type or id is kept in its JSON text form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type       json.RawMessage `json:"type"`
		ID         json.RawMessage `json:"id"`
		Attributes Attributes      `json:"attributes"`
		Links      Links           `json:"links"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Type:       scalarText(raw.Type),
		ID:         scalarText(raw.ID),
		Attributes: raw.Attributes,
		Links:      raw.Links,
	}
	return nil
}

// scalarText renders a JSON string, number or boolean as text.
// Anything else is "".
func scalarText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// isObject reports whether data holds a JSON object.
func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

// Label returns attributes.label, else attributes.title, else the id.
func (r *Record) Label() string {
	if label := r.Attributes.Text("label"); label != "" {
		return label
	}
	if title := r.Attributes.Text("title"); title != "" {
		return title
	}
	return r.ID
}

// Links maps link names to links.
type Links map[string]Link

// UnmarshalJSON implements json.Unmarshaler. Anything but an object
// decodes as no links.
func (l *Links) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*l = nil
		return nil
	}
	var links map[string]Link
	if err := json.Unmarshal(data, &links); err != nil {
		return err
	}
	*l = links
	return nil
}

// Link is a JSON:API link.
// It decodes from either a bare URL string or an object carrying href.
// Any other shape decodes with an empty href.
type Link struct {
	Href string
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Link) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		l.Href = ""
	case string:
		l.Href = t
	case map[string]any:
		href, _ := t["href"].(string)
		l.Href = href
	default:
		l.Href = ""
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Links are written in object form.
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"href": l.Href})
}

// IDLabel pairs a record id with its display label.
type IDLabel struct {
	ID    string
	Label string
}
