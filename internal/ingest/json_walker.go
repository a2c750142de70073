package ingest

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// JSONWalker implements Walker with JSONPath expressions.
// Parsed expressions are cached per selector; a walker is not safe for
// concurrent use.
type JSONWalker struct {
	exprs map[string]jp.Expr
}

// NewJSONWalker returns a walker with an empty expression cache.
func NewJSONWalker() *JSONWalker {
	return &JSONWalker{exprs: make(map[string]jp.Expr)}
}

// Query implements Walker.
func (w *JSONWalker) Query(root any, selector string) ([]Match, error) {
	x, ok := w.exprs[selector]
	if !ok {
		var err error
		x, err = jp.ParseString(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
		}
		w.exprs[selector] = x
	}

	results := x.Get(root)

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, &jsonMatch{value: r})
	}
	return matches, nil
}

type jsonMatch struct {
	value any
}

// Value implements Match.
func (m *jsonMatch) Value() any {
	return m.value
}
