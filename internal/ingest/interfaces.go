package ingest

// Walker abstracts over the path language used to select sections of a
// decoded configuration document.
type Walker interface {
	// Query executes a selector against root and returns every match.
	// The root is a generic tree of map[string]any, []any and scalars.
	Query(root any, selector string) ([]Match, error)
}

// Match represents a single result from a query.
type Match interface {
	// Value returns the matched value as decoded (object, list or scalar).
	Value() any
}
