package ingest

import (
	"fmt"

	"github.com/agentic-research/margoviz/api"
)

// Selectors for the sections the resolver reads. Stream-relative selectors
// are evaluated against a single xstreams entry.
const (
	PoolsSelector          = "$.margo.argobots.pools"
	StreamsSelector        = "$.margo.argobots.xstreams"
	SchedulerPoolsSelector = "$.scheduler.pools"
)

// Document is a read-only view over a decoded margo configuration.
type Document struct {
	root   map[string]any
	walker Walker
}

// NewDocument wraps a decoded tree. The tree must be an object carrying the
// margo root key.
func NewDocument(root any) (*Document, error) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, not an object", ErrMalformed, kindOf(root))
	}
	if _, ok := obj[api.RootKey]; !ok {
		return nil, ErrMissingRoot
	}
	return &Document{root: obj, walker: NewJSONWalker()}, nil
}

// Root returns the top-level object.
func (d *Document) Root() map[string]any {
	return d.root
}

// Query returns the first non-null value selected from the document root.
func (d *Document) Query(selector string) (any, bool) {
	return d.QueryIn(d.root, selector)
}

// QueryIn returns the first non-null value selected from v.
// Selectors are package constants; one that fails to parse selects nothing.
func (d *Document) QueryIn(v any, selector string) (any, bool) {
	matches, err := d.walker.Query(v, selector)
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	first := matches[0].Value()
	return first, first != nil
}

// List returns the list selected from the document root, or nil when the
// selector matches nothing or something that is not a list.
func (d *Document) List(selector string) []any {
	v, ok := d.Query(selector)
	if !ok {
		return nil
	}
	list, _ := AsList(v)
	return list
}

// Section returns the top-level section called name.
func (d *Document) Section(name string) (any, bool) {
	v, ok := d.root[name]
	return v, ok && v != nil
}

// AsList returns v as a list.
func AsList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// AsObject returns v as an object.
func AsObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// StringField returns obj[key] when obj is an object and the field is a string.
func StringField(v any, key string) (string, bool) {
	obj, ok := AsObject(v)
	if !ok {
		return "", false
	}
	s, ok := obj[key].(string)
	return s, ok
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "empty"
	case []any:
		return "a list"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case map[string]any:
		return "an object"
	default:
		return "a number"
	}
}
