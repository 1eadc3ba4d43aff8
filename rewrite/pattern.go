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

// Package rewrite is component E: rewrite rules over the tensor IR, as
// pattern/applier pairs with optional guards. Patterns are plain data (so
// they can be shared by reference across runner invocations, per §5);
// compiling a Pattern into an executable matcher is package match's job.
package rewrite

import (
	"fmt"

	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
)

// Pattern is a tree of either pattern variables or literal e-node shapes.
// Pattern is sealed to this package: PatVar, PatLit and PatNode are its
// only variants.
type Pattern interface {
	pattern()
	String() string
}

// PatVar matches any e-class and captures it under Name. Two occurrences
// of the same Name anywhere in one pattern must denote the same canonical
// e-class (a non-linear pattern), enforced by a Compare check.
type PatVar struct {
	Name string
}

func (PatVar) pattern()        {}
func (v PatVar) String() string { return "?" + v.Name }

// PatLit matches a class containing exactly the integer literal Value.
type PatLit struct {
	Value int64
}

func (PatLit) pattern()        {}
func (l PatLit) String() string { return fmt.Sprintf("%d", l.Value) }

// PatNode matches a class containing some e-node with the given head
// (and, for parametric heads, the given Op/Rows/Cols/Pad payload) whose
// children match Children pairwise.
type PatNode struct {
	Head     ir.Head
	Op       ir.ComputeOp // meaningful iff Head == ir.HeadCompute
	Rows     int64        // meaningful iff Head == ir.HeadSystolicArray
	Cols     int64        // meaningful iff Head == ir.HeadSystolicArray
	Pad      ir.PadType   // meaningful iff Head == ir.HeadAccessPad
	Children []Pattern
}

func (PatNode) pattern() {}

func (n PatNode) String() string {
	s := n.Head.String()
	for _, c := range n.Children {
		s += " " + c.String()
	}
	return "(" + s + ")"
}

// Var is shorthand for PatVar{Name: name}.
func Var(name string) Pattern { return PatVar{Name: name} }

// Lit is shorthand for PatLit{Value: v}.
func Lit(v int64) Pattern { return PatLit{Value: v} }

// Node is shorthand for a PatNode with the given head and children, for
// heads that carry no extra payload.
func Node(head ir.Head, children ...Pattern) Pattern {
	return PatNode{Head: head, Children: children}
}

// Compute is shorthand for a "(compute op ...)" pattern.
func Compute(op ir.ComputeOp, child Pattern) Pattern {
	return PatNode{Head: ir.HeadCompute, Op: op, Children: []Pattern{child}}
}

// SystolicArray is shorthand for a "(systolic-array R C a b)" pattern.
func SystolicArray(rows, cols int64, a, b Pattern) Pattern {
	return PatNode{Head: ir.HeadSystolicArray, Rows: rows, Cols: cols, Children: []Pattern{a, b}}
}

// Subst binds pattern variable names to canonical e-class ids.
type Subst map[string]egraph.Id

// Guard is a side condition evaluated against a candidate substitution
// before an applier runs, typically reading analysis values out of g.
type Guard func(g *egraph.EGraph, s Subst) bool

// And combines guards, short-circuiting on the first failure.
func And(gs ...Guard) Guard {
	return func(g *egraph.EGraph, s Subst) bool {
		for _, guard := range gs {
			if !guard(g, s) {
				return false
			}
		}
		return true
	}
}

// Or combines guards, short-circuiting on the first success.
func Or(gs ...Guard) Guard {
	return func(g *egraph.EGraph, s Subst) bool {
		for _, guard := range gs {
			if guard(g, s) {
				return true
			}
		}
		return false
	}
}

// Not negates a guard.
func Not(guard Guard) Guard {
	return func(g *egraph.EGraph, s Subst) bool { return !guard(g, s) }
}
