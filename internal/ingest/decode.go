package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// Format names a document syntax.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want auto, json or yaml)", s)
	}
}

// DetectFormat picks a syntax for data read from name.
// Files are judged by extension; standard input and unknown extensions by
// the first non-blank byte.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses data into a generic tree of map[string]any, []any and
// scalars.
func Decode(data []byte, format Format) (any, error) {
	switch format {
	case FormatJSON:
		v, err := oj.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return v, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return normalizeYAML(v, "$")
	default:
		return nil, fmt.Errorf("cannot decode format %q", format)
	}
}

// normalizeYAML rewrites mappings to map[string]any so the tree has the same
// shape as a decoded JSON document.
func normalizeYAML(v any, path string) (any, error) {
	switch n := v.(type) {
	case map[string]any:
		for k, child := range n {
			c, err := normalizeYAML(child, path+"."+k)
			if err != nil {
				return nil, err
			}
			n[k] = c
		}
		return n, nil
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, child := range n {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v at %s", ErrMalformed, k, path)
			}
			c, err := normalizeYAML(child, path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = c
		}
		return out, nil
	case []any:
		for i, child := range n {
			c, err := normalizeYAML(child, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			n[i] = c
		}
		return n, nil
	default:
		return v, nil
	}
}
