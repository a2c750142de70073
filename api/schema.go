package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RootKey is the top-level key every margo configuration document must carry.
const RootKey = "margo"

// PrimaryName is the reserved identity of the default pool and the default
// execution stream. Margo creates both when no stream is declared with it.
const PrimaryName = "__primary__"

// ServiceSections lists the top-level sections whose instances may bind to a
// pool, in the order they are rendered.
var ServiceSections = []string{"bedrock", "abt_io", "ssg", "clients", "providers"}

// StreamPlaceholder returns the identity given to an unnamed execution stream
// at position i of the streams section.
func StreamPlaceholder(i int) string {
	return "__stream_" + strconv.Itoa(i) + "__"
}

// PoolPlaceholder returns the identity given to an unnamed pool at position i
// of the pools section.
func PoolPlaceholder(i int) string {
	return "__pool_" + strconv.Itoa(i) + "__"
}

// BindingKind tells which addressing scheme a Binding uses.
type BindingKind uint8

const (
	// Unbound is the zero value: no pool binding was declared.
	Unbound BindingKind = iota
	// ByName addresses a pool by its identity.
	ByName
	// ByIndex addresses a pool by its zero-based position.
	ByIndex
)

// Binding is a reference to a pool, either by name or by position.
type Binding struct {
	Kind  BindingKind
	Name  string // set when Kind == ByName
	Index int    // set when Kind == ByIndex
}

// NameBinding returns a Binding that addresses a pool by identity.
func NameBinding(name string) Binding {
	return Binding{Kind: ByName, Name: name}
}

// IndexBinding returns a Binding that addresses a pool by position.
func IndexBinding(i int) Binding {
	return Binding{Kind: ByIndex, Index: i}
}

// IsSet reports whether the binding references a pool at all.
func (b Binding) IsSet() bool {
	return b.Kind != Unbound
}

func (b Binding) String() string {
	switch b.Kind {
	case ByName:
		return strconv.Quote(b.Name)
	case ByIndex:
		return "#" + strconv.Itoa(b.Index)
	default:
		return "<unbound>"
	}
}

// ParseBinding converts a decoded document value into a Binding.
// Strings become name bindings. Numbers become index bindings when they are
// non-negative integral values that fit in an int. Anything else is rejected.
func ParseBinding(v any) (Binding, bool) {
	switch n := v.(type) {
	case string:
		return NameBinding(n), true
	case int:
		return indexFromInt64(int64(n))
	case int64:
		return indexFromInt64(n)
	case int32:
		return indexFromInt64(int64(n))
	case uint64:
		if n > math.MaxInt32 {
			return Binding{}, false
		}
		return IndexBinding(int(n)), true
	case uint:
		return ParseBinding(uint64(n))
	case float64:
		if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
			return Binding{}, false
		}
		return IndexBinding(int(n)), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return Binding{}, false
		}
		return indexFromInt64(i)
	default:
		return Binding{}, false
	}
}

func indexFromInt64(n int64) (Binding, bool) {
	if n < 0 || n > math.MaxInt32 {
		return Binding{}, false
	}
	return IndexBinding(int(n)), true
}

// PoolRecord is one pool and the execution streams that draw work from it,
// in discovery order. Duplicates are kept.
type PoolRecord struct {
	Name    string
	Members []string
}

// PoolTable is the ordered set of pools resolved from a document.
// Position in Pools matches declaration order in the document, with the
// synthesized default pool (if any) last.
type PoolTable struct {
	Pools []PoolRecord
}

// Len returns the number of pools.
func (t *PoolTable) Len() int {
	return len(t.Pools)
}

// At returns the pool at position i.
func (t *PoolTable) At(i int) (PoolRecord, bool) {
	if i < 0 || i >= len(t.Pools) {
		return PoolRecord{}, false
	}
	return t.Pools[i], true
}

// IndexOf returns the position of the first pool named name, or -1.
func (t *PoolTable) IndexOf(name string) int {
	for i := range t.Pools {
		if t.Pools[i].Name == name {
			return i
		}
	}
	return -1
}

// Names returns pool identities in table order.
func (t *PoolTable) Names() []string {
	names := make([]string, len(t.Pools))
	for i, p := range t.Pools {
		names[i] = p.Name
	}
	return names
}

// Target returns the pool identity a service binding points at.
// Name bindings are returned as-is without an existence check; index
// bindings are looked up by position and fail when out of range.
func (t *PoolTable) Target(b Binding) (string, bool) {
	switch b.Kind {
	case ByName:
		return b.Name, true
	case ByIndex:
		p, ok := t.At(b.Index)
		return p.Name, ok
	default:
		return "", false
	}
}

// StreamRef is an execution stream as scanned from the streams section.
type StreamRef struct {
	// Name is the declared name, or a StreamPlaceholder when none is declared.
	Name     string
	Position int
	Pools    []Binding
}

// ServiceInstance is a provider, client or other component that may bind to
// a pool.
type ServiceInstance struct {
	Section string
	Name    string
	Pool    Binding
}

func (s ServiceInstance) String() string {
	return fmt.Sprintf("%s/%s", s.Section, s.Name)
}
