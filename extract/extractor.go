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

package extract

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/errs"
	"github.com/erkska/glenside/ir"
)

// Extractor computes, for every e-class, the minimum-cost e-node under a
// CostFn by relaxing to a fixed point, then reconstructs a term tree from
// the chosen e-nodes. Classes whose analysis is analysis.NotAType are
// never assigned a finite cost, so they (and anything that transitively
// depends on one) are excluded from extraction, per §4.D/§4.H.
type Extractor[T constraints.Float] struct {
	g      *egraph.EGraph
	costFn CostFn[T]
	cost   map[egraph.Id]T
	chosen map[egraph.Id]egraph.ENode
}

// New builds an Extractor over g using costFn, and runs the relaxation to
// a fixed point immediately.
func New[T constraints.Float](g *egraph.EGraph, costFn CostFn[T]) *Extractor[T] {
	e := &Extractor[T]{
		g:      g,
		costFn: costFn,
		cost:   make(map[egraph.Id]T),
		chosen: make(map[egraph.Id]egraph.ENode),
	}
	e.relax()
	return e
}

func (e *Extractor[T]) relax() {
	inf := T(math.Inf(1))
	e.g.Classes(func(id egraph.Id) { e.cost[id] = inf })

	for changed := true; changed; {
		changed = false
		e.g.Classes(func(id egraph.Id) {
			if e.g.AnalysisOf(id).Type.Kind() == analysis.NotATypeKind {
				return
			}
			for _, n := range e.g.NodesOf(id) {
				childCosts, ok := e.childCosts(n)
				if !ok {
					continue
				}
				c := e.costFn.Cost(n.Data, childCosts)
				if c < e.cost[id] {
					e.cost[id] = c
					e.chosen[id] = n
					changed = true
				}
			}
		})
	}
}

func (e *Extractor[T]) childCosts(n egraph.ENode) ([]T, bool) {
	inf := T(math.Inf(1))
	costs := make([]T, len(n.Children))
	for i, c := range n.Children {
		cc, ok := e.cost[e.g.Find(c)]
		if !ok || cc == inf {
			return nil, false
		}
		costs[i] = cc
	}
	return costs, true
}

// Extract reconstructs the minimum-cost term rooted at root's e-class.
func (e *Extractor[T]) Extract(root egraph.Id) (*ir.Term, error) {
	id := e.g.Find(root)
	if _, ok := e.chosen[id]; !ok {
		return nil, errs.NewExtractFailure(uint32(id), errs.NoTypedRepresentative)
	}
	return e.build(id), nil
}

// ExtractAll extracts the minimum-cost term for every live e-class that
// has one, keyed by canonical class id. Classes with no finite-cost
// representative (NotAType, or only reachable through one) are omitted
// rather than erroring, since asking for "every class" inherently
// includes classes the caller may not care about.
func (e *Extractor[T]) ExtractAll() map[egraph.Id]*ir.Term {
	out := make(map[egraph.Id]*ir.Term, len(e.chosen))
	for id := range e.chosen {
		out[id] = e.build(id)
	}
	return out
}

func (e *Extractor[T]) build(id egraph.Id) *ir.Term {
	n := e.chosen[id]
	children := make([]*ir.Term, len(n.Children))
	for i, c := range n.Children {
		children[i] = e.build(e.g.Find(c))
	}
	return &ir.Term{Data: n.Data, Children: children}
}
