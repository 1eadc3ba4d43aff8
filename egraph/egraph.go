// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package egraph is component C: the hash-consed e-node store, union-find
// over e-classes, and the rebuild operation that restores the hash-cons
// and congruence-closure invariants after a batch of unions.
package egraph

import (
	"slices"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/unionfind"
)

// Parent is a back-reference from a child e-class to a node that uses it,
// and the e-class that node belongs to.
type Parent struct {
	Node  ENode
	Class Id
}

// EClass is a set of e-nodes believed equivalent, plus the analysis value
// merged across all of them and the back-references needed to repair
// congruence after a union touching one of its children.
type EClass struct {
	Nodes    []ENode
	Parents  []Parent
	Analysis analysis.Value
}

// EGraph is the hash-consed e-node store and union-find over e-classes.
// The zero value is not ready to use; call New.
type EGraph struct {
	uf       unionfind.UnionFind
	classes  map[Id]*EClass
	hashcons map[string]Id
	worklist []Id
}

// New returns an empty e-graph.
func New() *EGraph {
	return &EGraph{
		classes:  make(map[Id]*EClass),
		hashcons: make(map[string]Id),
	}
}

// Find returns the canonical e-class id for id.
func (g *EGraph) Find(id Id) Id { return g.uf.Find(id) }

// AnalysisOf returns the analysis value attached to id's e-class.
func (g *EGraph) AnalysisOf(id Id) analysis.Value {
	return g.classes[g.Find(id)].Analysis
}

// NodesOf returns the e-nodes currently believed equivalent in id's class.
func (g *EGraph) NodesOf(id Id) []ENode {
	return g.classes[g.Find(id)].Nodes
}

// Classes calls f once per live e-class id. Iteration order is the order
// classes were allocated, filtered to surviving roots, which is stable
// for a given sequence of Add/Union calls.
func (g *EGraph) Classes(f func(Id)) {
	ids := make([]Id, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		f(id)
	}
}

// NumClasses returns the number of live e-classes.
func (g *EGraph) NumClasses() int { return len(g.classes) }

// NumNodes returns the total number of e-nodes across all live e-classes.
func (g *EGraph) NumNodes() int {
	n := 0
	for _, c := range g.classes {
		n += len(c.Nodes)
	}
	return n
}

// Add canonicalises node's children and looks it up in the hash-cons. On a
// hit, it returns the existing class. On a miss, it allocates a new class,
// computes its initial analysis value from the children's analyses via
// ir.Make, registers parent links, and returns the new id. A TypeError
// from ir.Make is returned to the caller unchanged, per the error taxonomy
// in which TypeError is surfaced at construction time.
func (g *EGraph) Add(data ir.Data, children []Id) (Id, error) {
	canon := make([]Id, len(children))
	for i, c := range children {
		canon[i] = g.Find(c)
	}
	node := ENode{Data: data, Children: canon}
	key := node.key()
	if id, ok := g.hashcons[key]; ok {
		return id, nil
	}
	childValues := make([]analysis.Value, len(canon))
	for i, c := range canon {
		childValues[i] = g.classes[c].Analysis
	}
	value, err := ir.Make(data, childValues)
	if err != nil {
		return 0, err
	}
	id := g.uf.MakeSet()
	g.classes[id] = &EClass{Nodes: []ENode{node}, Analysis: value}
	g.hashcons[key] = id
	for _, c := range canon {
		cls := g.classes[c]
		cls.Parents = append(cls.Parents, Parent{Node: node, Class: id})
	}
	return id, nil
}

// AddTerm recursively adds every subterm of t, bottom-up, and returns the
// e-class id of the root.
func (g *EGraph) AddTerm(t *ir.Term) (Id, error) {
	children := make([]Id, len(t.Children))
	for i, c := range t.Children {
		id, err := g.AddTerm(c)
		if err != nil {
			return 0, err
		}
		children[i] = id
	}
	return g.Add(t.Data, children)
}

// Union merges the e-classes containing a and b. It returns the surviving
// root id and whether a and b were previously distinct. The analyses of
// the two classes are joined into the surviving class; the losing class's
// nodes and parents are absorbed into it, and its parents are scheduled
// for repair on the next Rebuild.
func (g *EGraph) Union(a, b Id) (Id, bool) {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return ra, false
	}
	merged, _ := analysis.Merge(g.classes[ra].Analysis, g.classes[rb].Analysis)
	root, _ := g.uf.Union(ra, rb)
	loser := ra
	if root == ra {
		loser = rb
	}
	rootCls, loserCls := g.classes[root], g.classes[loser]
	rootCls.Nodes = append(rootCls.Nodes, loserCls.Nodes...)
	rootCls.Parents = append(rootCls.Parents, loserCls.Parents...)
	rootCls.Analysis = merged
	delete(g.classes, loser)
	g.worklist = append(g.worklist, root)
	return root, true
}

// Rebuild drains the repair worklist built up by Union calls: it
// re-canonicalises every affected class's parent nodes, collapsing any
// that now collide in the hash-cons (issuing a further Union), and
// re-runs the analysis make+merge over every class whose node set or
// children changed, re-enqueueing parents whenever a class's analysis
// strictly changes. It terminates because the analysis lattice has finite
// height per class and each pass either shrinks the partition (a Union)
// or leaves it fixed. After Rebuild returns the e-graph is
// congruence-closed and the hash-cons is a bijection.
func (g *EGraph) Rebuild() {
	for len(g.worklist) > 0 {
		todo := g.worklist
		g.worklist = nil
		seen := make(map[Id]bool)
		for _, id := range todo {
			r := g.Find(id)
			if seen[r] {
				continue
			}
			seen[r] = true
			g.repair(r)
		}
	}
	for _, cls := range g.classes {
		seen := make(map[string]bool, len(cls.Nodes))
		var nodes []ENode
		for _, n := range cls.Nodes {
			canon := ENode{Data: n.Data, Children: make([]Id, len(n.Children))}
			for i, c := range n.Children {
				canon.Children[i] = g.Find(c)
			}
			if k := canon.key(); !seen[k] {
				seen[k] = true
				nodes = append(nodes, canon)
			}
		}
		cls.Nodes = nodes
	}
}

func (g *EGraph) repair(id Id) {
	cls := g.classes[id]
	newParents := make([]Parent, 0, len(cls.Parents))
	for _, p := range cls.Parents {
		delete(g.hashcons, p.Node.key())
		children := make([]Id, len(p.Node.Children))
		for i, c := range p.Node.Children {
			children[i] = g.Find(c)
		}
		node := ENode{Data: p.Node.Data, Children: children}
		key := node.key()
		pClass := g.Find(p.Class)
		if existing, ok := g.hashcons[key]; ok {
			if g.Find(existing) != pClass {
				newRoot, _ := g.Union(existing, pClass)
				pClass = newRoot
			}
		} else {
			g.hashcons[key] = pClass
		}
		newParents = append(newParents, Parent{Node: node, Class: pClass})
	}

	id = g.Find(id)
	cls = g.classes[id]
	cls.Parents = dedupeParents(newParents)
	g.refreshAnalysis(id)
}

func (g *EGraph) refreshAnalysis(id Id) {
	cls := g.classes[id]
	value := cls.Analysis
	strictAny := false
	for _, n := range cls.Nodes {
		childValues := make([]analysis.Value, len(n.Children))
		for i, c := range n.Children {
			childValues[i] = g.classes[g.Find(c)].Analysis
		}
		v, err := ir.Make(n.Data, childValues)
		if err != nil {
			v = analysis.Value{Type: analysis.NotAType{}}
		}
		merged, strict := analysis.Merge(value, v)
		value = merged
		strictAny = strictAny || strict
	}
	cls.Analysis = value
	if strictAny {
		for _, p := range cls.Parents {
			g.worklist = append(g.worklist, p.Class)
		}
	}
}

func dedupeParents(ps []Parent) []Parent {
	seen := make(map[string]bool, len(ps))
	out := make([]Parent, 0, len(ps))
	for _, p := range ps {
		k := p.Node.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
