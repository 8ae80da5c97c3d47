// Package parser extracts frontmatter from content files.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// formats lists the recognised frontmatter delimiters.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", unmarshalYAML),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	frontmatter.NewFormat(";;;", ";;;", json.Unmarshal),
}

// Parse returns the frontmatter of data as a key-value mapping.
//
// A block must open on the very first line. Content without one yields an
// empty map and no error. A block that is never closed runs to the end of
// the file. A malformed block is an error.
func Parse(data []byte) (map[string]any, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	format, closed := detect(data)
	if format == nil {
		return map[string]any{}, nil
	}
	if !closed {
		data = append(data, '\n')
		data = append(data, format.End+"\n"...)
	}

	var fm map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(data), &fm, format); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fm == nil {
		return map[string]any{}, nil
	}
	for k, v := range fm {
		fm[k] = normalize(v)
	}
	return fm, nil
}

// detect returns the format whose start delimiter is the first line of data
// and whether a matching end delimiter line follows.
func detect(data []byte) (*frontmatter.Format, bool) {
	lines := bytes.Split(data, []byte("\n"))
	first := string(lines[0])
	for _, f := range formats {
		if first != f.Start {
			continue
		}
		for _, line := range lines[1:] {
			if string(line) == f.End {
				return f, true
			}
		}
		return f, false
	}
	return nil, false
}

// unmarshalYAML decodes YAML like yaml.Unmarshal but keeps timestamp-looking
// scalars as the strings the author wrote.
func unmarshalYAML(data []byte, v any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return nil
	}
	retagTimestamps(&doc)
	return doc.Decode(v)
}

func retagTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		retagTimestamps(c)
	}
}

// normalize makes a decoded value JSON-encodable: map[any]any values (YAML
// mappings with non-string keys) become map[string]any, and non-finite
// floats become nil.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil
		}
		return t
	default:
		return v
	}
}
