// Package resolve reconstructs which execution streams draw work from which
// pools in a margo configuration.
//
// Pools are declared in margo.argobots.pools. Each entry of
// margo.argobots.xstreams names the pools its scheduler pulls from, either
// by pool name or by position in the pools list. When no stream is called
// __primary__, margo adds a __primary__ stream bound to a __primary__ pool;
// the resolver mirrors that by appending the default pool last, so positional
// references keep pointing at the pools they were written against.
package resolve

import (
	"go.uber.org/zap"

	"github.com/agentic-research/margoviz/api"
	"github.com/agentic-research/margoviz/internal/ingest"
)

// Resolver builds PoolTables from documents.
type Resolver struct {
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report skipped bindings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Resolver that logs nowhere unless WithLogger is given.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a convenience wrapper around New().Resolve.
func Resolve(doc *ingest.Document) *api.PoolTable {
	return New().Resolve(doc)
}

// Resolve returns the pool table for doc. Missing sections and dangling
// bindings are skipped; Resolve never fails.
func (r *Resolver) Resolve(doc *ingest.Document) *api.PoolTable {
	table := &api.PoolTable{}
	for i, entry := range doc.List(ingest.PoolsSelector) {
		name, ok := ingest.StringField(entry, "name")
		if !ok || name == "" {
			name = api.PoolPlaceholder(i)
			r.logger.Debug("pool has no name, using placeholder",
				zap.Int("position", i), zap.String("pool", name))
		}
		table.Pools = append(table.Pools, api.PoolRecord{Name: name})
	}

	// Index bindings address pools as declared, before any default pool is added.
	declared := len(table.Pools)

	foundPrimary := false
	for _, stream := range r.Streams(doc) {
		if stream.Name == api.PrimaryName {
			foundPrimary = true
		}
		for _, b := range stream.Pools {
			i := r.poolPosition(table, declared, stream, b)
			if i < 0 {
				continue
			}
			table.Pools[i].Members = append(table.Pools[i].Members, stream.Name)
		}
	}

	if !foundPrimary {
		table.Pools = append(table.Pools, api.PoolRecord{
			Name:    api.PrimaryName,
			Members: []string{api.PrimaryName},
		})
	}

	r.logger.Debug("resolved pools",
		zap.Int("declared", declared),
		zap.Bool("primary_added", !foundPrimary),
		zap.Strings("pools", table.Names()))
	return table
}

// Streams scans the xstreams section in document order.
// Bindings that are neither strings nor non-negative integers are dropped.
func (r *Resolver) Streams(doc *ingest.Document) []api.StreamRef {
	entries := doc.List(ingest.StreamsSelector)
	streams := make([]api.StreamRef, 0, len(entries))
	for i, entry := range entries {
		name, ok := ingest.StringField(entry, "name")
		if !ok {
			name = api.StreamPlaceholder(i)
		}
		stream := api.StreamRef{Name: name, Position: i}

		raw, _ := doc.QueryIn(entry, ingest.SchedulerPoolsSelector)
		list, _ := ingest.AsList(raw)
		for _, v := range list {
			b, ok := api.ParseBinding(v)
			if !ok {
				r.logger.Debug("ignoring pool binding",
					zap.String("xstream", name), zap.Any("binding", v))
				continue
			}
			stream.Pools = append(stream.Pools, b)
		}
		streams = append(streams, stream)
	}
	return streams
}

// poolPosition returns where a stream binding lands in table, or -1.
func (r *Resolver) poolPosition(table *api.PoolTable, declared int, stream api.StreamRef, b api.Binding) int {
	switch b.Kind {
	case api.ByName:
		if i := table.IndexOf(b.Name); i >= 0 {
			return i
		}
	case api.ByIndex:
		if b.Index < declared {
			return b.Index
		}
	}
	r.logger.Debug("dangling pool binding",
		zap.String("xstream", stream.Name), zap.Stringer("binding", b))
	return -1
}
