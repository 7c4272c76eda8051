// Package settings reads the ordered key/value pairs a classify.Config is compiled from. YAML,
// TOML and JSON (with comments and trailing commas) files are accepted; in each, the pairs may
// sit at the top level or inside a named section.
package settings

import (
	"errors"
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/p7r0x7/chathash/classify"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// DefaultSection is the section a settings file conventionally keeps its pairs under.
const DefaultSection = "chatEvent"

var (
	ErrFormat = errors.New("unsupported settings format")
	ErrValue  = errors.New("settings value must be a string or integer")
)

// Load reads path, choosing a decoder by its extension.
func Load(path, section string) ([]classify.Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	out, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."), section)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Parse decodes data as format ("yaml", "yml", "toml", "json" or "jsonc"). When section names a
// table of data, only that table's pairs are returned; otherwise the top-level scalar pairs are.
func Parse(data []byte, format, section string) ([]classify.Setting, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return parseYAML(data, section)
	case "json", "jsonc":
		/* JSON is YAML; going through the node decoder keeps key order. */
		return parseYAML(jsonc.ToJSON(data), section)
	case "toml":
		return parseTOML(data, section)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

func parseYAML(data []byte, section string) ([]classify.Setting, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing settings: line %d: expected a mapping", m.Line)
	}
	if section != "" {
		for i := 0; i+1 < len(m.Content); i += 2 {
			if k, v := m.Content[i], m.Content[i+1]; v.Kind == yaml.MappingNode && strings.EqualFold(k.Value, section) {
				m = v
				break
			}
		}
	}

	out := make([]classify.Setting, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		switch {
		case v.Kind == yaml.MappingNode:
			continue /* some other section */
		case v.Kind != yaml.ScalarNode || (v.Tag != "!!int" && v.Tag != "!!str"):
			return nil, fmt.Errorf("%w: line %d: %q", ErrValue, v.Line, k.Value)
		}
		out = append(out, classify.Setting{Key: k.Value, Value: v.Value})
	}
	return out, nil
}

func parseTOML(data []byte, section string) ([]classify.Setting, error) {
	var tree map[string]interface{}
	md, err := toml.Decode(string(data), &tree)
	if err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	var table []string
	if section != "" {
		for k, v := range tree {
			if t, ok := v.(map[string]interface{}); ok && strings.EqualFold(k, section) {
				table, tree = []string{k}, t
				break
			}
		}
	}

	var out []classify.Setting
	for _, key := range md.Keys() {
		if len(key) != len(table)+1 || (len(table) > 0 && key[0] != table[0]) {
			continue
		}
		name := key[len(key)-1]
		switch v := tree[name].(type) {
		case map[string]interface{}:
			continue
		case int64:
			out = append(out, classify.Setting{Key: name, Value: strconv.FormatInt(v, 10)})
		case string:
			out = append(out, classify.Setting{Key: name, Value: v})
		default:
			return nil, fmt.Errorf("%w: %q", ErrValue, key.String())
		}
	}
	return out, nil
}
