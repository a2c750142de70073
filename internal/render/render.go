// Package render writes a resolved pool table and the service instances of a
// margo configuration as a Graphviz digraph.
//
// Pools become clusters inside one outer "Margo" cluster. Graphviz only treats
// a subgraph as a cluster when its name starts with "cluster", so every
// subgraph id carries that prefix. Each pool cluster holds an invisible
// anchor node named after the pool, which is where service edges point.
package render

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentic-research/margoviz/api"
	"github.com/agentic-research/margoviz/internal/ingest"
)

// Stock layout values used by DefaultOptions.
const (
	DefaultMaxMembers   = 5
	DefaultHeadMembers  = 2
	DefaultClusterLabel = "Margo"
)

// Options control the shape of the emitted graph.
type Options struct {
	// MaxMembers is the largest member list drawn in full. Longer lists are
	// cut to HeadMembers entries, an ellipsis node and the last member.
	MaxMembers   int
	HeadMembers  int
	ClusterLabel string
}

// DefaultOptions returns the stock layout: pools of more than five streams
// show the first two, an ellipsis and the last one.
func DefaultOptions() Options {
	return Options{
		MaxMembers:   DefaultMaxMembers,
		HeadMembers:  DefaultHeadMembers,
		ClusterLabel: DefaultClusterLabel,
	}
}

// Validate checks that truncation still leaves a visible tail.
func (o Options) Validate() error {
	if o.HeadMembers < 0 {
		return fmt.Errorf("head members must not be negative, got %d", o.HeadMembers)
	}
	if o.MaxMembers < o.HeadMembers+1 {
		return fmt.Errorf("max members (%d) must exceed head members (%d)", o.MaxMembers, o.HeadMembers)
	}
	return nil
}

// Renderer emits DOT text.
type Renderer struct {
	opts   Options
	logger *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOptions replaces the layout options.
func WithOptions(o Options) Option {
	return func(r *Renderer) {
		r.opts = o
	}
}

// WithLogger sets the logger used to report skipped instances.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Renderer with DefaultOptions and a no-op logger.
func New(opts ...Option) *Renderer {
	r := &Renderer{opts: DefaultOptions(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render is a convenience wrapper around New().Render.
func Render(doc *ingest.Document, table *api.PoolTable) []byte {
	return New().Render(doc, table)
}

// Render returns the digraph for table and the service sections of doc.
// The whole graph is built in memory; nothing is written on the way.
func (r *Renderer) Render(doc *ingest.Document, table *api.PoolTable) []byte {
	var buf bytes.Buffer

	buf.WriteString("digraph pools {\n")
	buf.WriteString("   subgraph cluster_margo {\n")
	fmt.Fprintf(&buf, "   label=%s;\n", quote(r.opts.ClusterLabel))

	for i, pool := range table.Pools {
		r.writePool(&buf, i, pool)
	}

	for _, section := range api.ServiceSections {
		for _, inst := range r.Instances(doc, section) {
			if !inst.Pool.IsSet() {
				continue
			}
			target, ok := table.Target(inst.Pool)
			if !ok {
				r.logger.Debug("dangling service pool binding",
					zap.Stringer("instance", inst), zap.Stringer("binding", inst.Pool))
				continue
			}
			fmt.Fprintf(&buf, "   %s -> %s;\n", dotID(inst.Name), dotID(target))
		}
	}

	buf.WriteString("}\n") // margo cluster
	buf.WriteString("}\n") // digraph
	return buf.Bytes()
}

func (r *Renderer) writePool(buf *bytes.Buffer, i int, pool api.PoolRecord) {
	fmt.Fprintf(buf, "       subgraph cluster_pool%d {\n", i)
	fmt.Fprintf(buf, "           label = %s;\n", quote(fmt.Sprintf("%s (%d)", pool.Name, len(pool.Members))))
	fmt.Fprintf(buf, "           %s [shape=point style=invis];\n", dotID(pool.Name))

	members := pool.Members
	if len(members) > r.opts.MaxMembers {
		head := min(r.opts.HeadMembers, len(members)-1)
		for _, m := range members[:head] {
			fmt.Fprintf(buf, "              %s;\n", dotID(m))
		}
		fmt.Fprintf(buf, "              ellipsis_pool%d [label=\"...\"];\n", i)
		members = members[len(members)-1:]
	}
	for _, m := range members {
		fmt.Fprintf(buf, "              %s;\n", dotID(m))
	}
	buf.WriteString("       }\n")
}

// Instances reads the service instances of one top-level section.
// A section holding a single object is one instance named after its "name"
// field, or after the section when it has none. A section holding a list
// yields one instance per named object; unnamed entries are skipped.
func (r *Renderer) Instances(doc *ingest.Document, section string) []api.ServiceInstance {
	v, ok := doc.Section(section)
	if !ok {
		return nil
	}

	if obj, ok := ingest.AsObject(v); ok {
		name, ok := ingest.StringField(obj, "name")
		if !ok {
			name = section
		}
		return []api.ServiceInstance{r.instance(section, name, obj)}
	}

	list, ok := ingest.AsList(v)
	if !ok {
		r.logger.Debug("service section is neither object nor list", zap.String("section", section))
		return nil
	}
	instances := make([]api.ServiceInstance, 0, len(list))
	for i, entry := range list {
		name, ok := ingest.StringField(entry, "name")
		if !ok {
			r.logger.Debug("skipping unnamed service instance",
				zap.String("section", section), zap.Int("position", i))
			continue
		}
		obj, _ := ingest.AsObject(entry)
		instances = append(instances, r.instance(section, name, obj))
	}
	return instances
}

func (r *Renderer) instance(section, name string, obj map[string]any) api.ServiceInstance {
	inst := api.ServiceInstance{Section: section, Name: name}
	raw, ok := obj["pool"]
	if !ok || raw == nil {
		return inst
	}
	b, ok := api.ParseBinding(raw)
	if !ok {
		r.logger.Debug("ignoring service pool binding",
			zap.Stringer("instance", inst), zap.Any("pool", raw))
		return inst
	}
	inst.Pool = b
	return inst
}
