// Package graph maintains the command dependency DAG of a capture session.
//
// Edges are inferred heuristically from command categories and stages as
// each command is added. Every edge is stored in both directions.
package graph

import (
	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/design"
)

// Entry is what the graph needs to know about a command to place it.
type Entry struct {
	ID       string
	Sequence int
	Kind     design.CommandKind
	Category design.Category
	Stage    design.Stage
}

// NewEntry builds an Entry for a named command, classifying it.
func NewEntry(name string, sequence int) Entry {
	k := design.ParseKind(name)
	c, s := design.Classify(k)
	return Entry{ID: design.NodeID(name, sequence), Sequence: sequence, Kind: k, Category: c, Stage: s}
}

// Node is a read-only view of one graph node.
type Node struct {
	ID           string
	Sequence     int
	Dependencies []string
	Dependents   []string
}

type node struct {
	entry        Entry
	index        int
	dependencies []string
	dependents   []string
}

// Graph is the dependency graph. It is not safe for concurrent use.
type Graph struct {
	nodes map[string]*node
	order []*node
	log   *zap.Logger
}

// New returns an empty graph. A nil logger disables logging.
func New(log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	return &Graph{nodes: make(map[string]*node), log: log}
}

// Add infers the dependencies of e from the commands already present,
// inserts it, and returns the dependency ids that were recorded.
func (g *Graph) Add(e Entry) []string {
	return g.insert(e, g.infer(e))
}

// infer applies the dependency rules. The first matching rule wins.
func (g *Graph) infer(e Entry) []string {
	switch {
	case e.Category == design.CategoryBoolean:
		return g.recent(2, func(n *node) bool {
			return n.entry.Stage == design.StageCreation || n.entry.Stage == design.StageModification
		})
	case e.Kind == design.CmdLoft || e.Kind == design.CmdSweep1:
		return g.recent(2, func(n *node) bool { return n.entry.Category == design.CategoryCurve })
	case e.Stage == design.StageModification:
		return g.recent(1, func(n *node) bool { return n.entry.Stage == design.StageCreation })
	case e.Stage == design.StageFinishing:
		return g.recent(1, func(n *node) bool {
			return n.entry.Stage == design.StageCreation || n.entry.Stage == design.StageModification
		})
	}
	return nil
}

// recent returns up to limit node ids matching keep, most recent first.
func (g *Graph) recent(limit int, keep func(*node) bool) []string {
	var out []string
	for i := len(g.order) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(g.order[i]) {
			out = append(out, g.order[i].entry.ID)
		}
	}
	return out
}

// insert registers e with the given dependencies and writes the matching
// back-references. Unknown dependency ids are skipped with a warning.
func (g *Graph) insert(e Entry, deps []string) []string {
	if existing, ok := g.nodes[e.ID]; ok {
		g.log.Warn("duplicate node ignored", zap.String("node", e.ID))
		return append([]string(nil), existing.dependencies...)
	}
	n := &node{entry: e, index: len(g.order)}
	g.nodes[e.ID] = n
	g.order = append(g.order, n)

	n.dependencies = make([]string, 0, len(deps))
	for _, dep := range deps {
		target, ok := g.nodes[dep]
		if !ok {
			g.log.Warn("dependency references unknown node",
				zap.String("node", e.ID), zap.String("dependency", dep))
			continue
		}
		n.dependencies = append(n.dependencies, dep)
		target.dependents = append(target.dependents, e.ID)
	}
	return append([]string{}, n.dependencies...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.view(), true
}

// Nodes returns copies of every node in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, n := range g.order {
		out[i] = n.view()
	}
	return out
}

func (n *node) view() Node {
	return Node{
		ID:           n.entry.ID,
		Sequence:     n.entry.Sequence,
		Dependencies: append([]string(nil), n.dependencies...),
		Dependents:   append([]string(nil), n.dependents...),
	}
}

// LongestChain returns the longest path that follows dependency edges,
// starting at the dependent end. Ties go to the earliest starting node
// and then to the first dependency in list order. Edges that do not point
// to an earlier node are ignored, so the result is always acyclic.
func (g *Graph) LongestChain() []string {
	if len(g.order) == 0 {
		return []string{}
	}
	length := make([]int, len(g.order))
	next := make([]int, len(g.order))
	best := 0
	for i, n := range g.order {
		length[i], next[i] = 1, -1
		for _, dep := range n.dependencies {
			d := g.nodes[dep]
			if d.index >= i {
				continue
			}
			if length[d.index]+1 > length[i] {
				length[i], next[i] = length[d.index]+1, d.index
			}
		}
		if length[i] > length[best] {
			best = i
		}
	}

	chain := make([]string, 0, length[best])
	for i := best; i >= 0; i = next[i] {
		chain = append(chain, g.order[i].entry.ID)
	}
	return chain
}
