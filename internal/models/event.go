// Package models defines the domain types for the gigs exporter.
package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// FileKey is the JSON key holding the source path of an event.
const FileKey = "file"

// Event is one content file's frontmatter plus the path it came from.
// File is fixed; every other frontmatter key lives in Fields.
type Event struct {
	File   string
	Fields map[string]any
}

// NewEvent builds an Event from a root-relative path and parsed frontmatter.
// A "file" key in fields is dropped: the computed path always wins.
func NewEvent(file string, fields map[string]any) Event {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == FileKey {
			continue
		}
		out[k] = v
	}
	return Event{File: file, Fields: out}
}

// Start returns the event's date.start value. Strings count when non-empty;
// time values (TOML datetimes) are rendered as RFC 3339. Anything else
// reports false.
func (e Event) Start() (string, bool) {
	date, ok := e.Fields["date"].(map[string]any)
	if !ok {
		return "", false
	}
	switch v := date["start"].(type) {
	case string:
		return v, v != ""
	case time.Time:
		return v.Format(time.RFC3339), true
	default:
		return "", false
	}
}

// MarshalJSON writes "file" first and the remaining keys in sorted order.
func (e Event) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, FileKey, e.File); err != nil {
		return nil, err
	}
	for _, k := range keys {
		buf.WriteByte(',')
		if err := writeMember(&buf, k, e.Fields[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshalRaw(key)
	if err != nil {
		return err
	}
	v, err := marshalRaw(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshalRaw encodes v without HTML escaping.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
