package bappa

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// QueryNode is one node of a composable filter tree over archetype
// component sets (spec.md §4.6). Evaluate reports whether an archetype
// satisfies this node.
type QueryNode interface {
	Evaluate(arch *Archetype) bool
}

// Query builds a filter tree out of AND/OR/NOT groups of component ids
// or nested nodes (spec.md §4.6). Each And/Or/Not call returns the node
// it built; compose a tree by passing one call's result as an item into
// another (q.And(posId, q.Not(velId))) and pass the outermost returned
// node to NewQueryCache - not the Query value itself.
type Query interface {
	QueryNode
	And(items ...any) QueryNode
	Or(items ...any) QueryNode
	Not(items ...any) QueryNode
}

// QueryOperation names the boolean combinator a compositeNode applies.
type QueryOperation int

const (
	OpAnd QueryOperation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op       QueryOperation
	children []QueryNode
	ids      []ComponentId
}

type leafNode struct {
	ids []ComponentId
}

type query struct {
	root QueryNode
}

// NewQuery returns an empty, reusable Query builder.
func NewQuery() Query { return &query{} }

func newCompositeNode(op QueryOperation, ids []ComponentId) *compositeNode {
	return &compositeNode{op: op, ids: ids}
}

func idsMask(ids []ComponentId) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}

func (n *compositeNode) Evaluate(arch *Archetype) bool {
	nodeMask := idsMask(n.ids)
	archMask := arch.Mask()

	switch n.op {
	case OpAnd:
		if !archMask.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(arch) {
				return false
			}
		}
		return true
	case OpOr:
		if len(n.ids) > 0 && archMask.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(arch) {
				return true
			}
		}
		return false
	case OpNot:
		if len(n.ids) > 0 && !archMask.ContainsNone(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(arch) {
				return false
			}
		}
		return true
	}
	return false
}

func (n *leafNode) Evaluate(arch *Archetype) bool {
	return arch.Mask().ContainsAll(idsMask(n.ids))
}

func (q *query) And(items ...any) QueryNode {
	ids, children := processQueryItems(items...)
	node := newCompositeNode(OpAnd, ids)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...any) QueryNode {
	ids, children := processQueryItems(items...)
	node := newCompositeNode(OpOr, ids)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...any) QueryNode {
	ids, children := processQueryItems(items...)
	node := newCompositeNode(OpNot, ids)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Evaluate(arch *Archetype) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(arch)
}

func validateQueryItems(items ...any) error {
	for _, item := range items {
		switch item.(type) {
		case ComponentId, []ComponentId, QueryNode, Query:
			continue
		default:
			return fmt.Errorf("invalid query item type: %T. Only ComponentId, []ComponentId, or QueryNode are allowed", item)
		}
	}
	return nil
}

// processQueryItems splits a variadic And/Or/Not argument list into the
// leaf ComponentIds and nested QueryNodes it names. Items of an
// unsupported type are a caller bug: panics, wrapped with bark.AddTrace
// the same way the teacher's query.go does for the same condition.
func processQueryItems(items ...any) ([]ComponentId, []QueryNode) {
	if err := validateQueryItems(items...); err != nil {
		panic(bark.AddTrace(err))
	}
	var ids []ComponentId
	var children []QueryNode
	for _, item := range items {
		switch v := item.(type) {
		case ComponentId:
			ids = append(ids, v)
		case []ComponentId:
			ids = append(ids, v...)
		case QueryNode:
			children = append(children, v)
		}
	}
	return ids, children
}

// QueryCache memoizes a Query's matching archetype list against a
// World's archetype-graph version, so repeated-per-frame queries (the
// common case for a system) pay the O(archetype count) scan only when
// the World has actually created a new archetype since the last call
// (spec.md §4.6, "cached archetype match list invalidated on new
// archetype creation").
type QueryCache struct {
	q           QueryNode
	lastVersion int
	matches     []*Archetype
}

// NewQueryCache wraps the root QueryNode of a composed query (typically
// the value returned by a Query's And/Or/Not call, not the Query itself
// - see Query's doc comment) with per-World memoization.
func NewQueryCache(q QueryNode) *QueryCache {
	return &QueryCache{q: q, lastVersion: -1}
}

// Matches returns every archetype in w currently satisfying the cached
// query, recomputing only if w has grown new archetypes since the last
// call.
func (qc *QueryCache) Matches(w *World) []*Archetype {
	version := w.graph.version
	if version == qc.lastVersion {
		return qc.matches
	}
	qc.matches = qc.matches[:0]
	for _, arch := range w.graph.All() {
		if qc.q.Evaluate(arch) {
			qc.matches = append(qc.matches, arch)
		}
	}
	qc.lastVersion = version
	return qc.matches
}
