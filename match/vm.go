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

package match

import (
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/rewrite"
)

// Match is one yielded substitution, together with the root class it was
// found in.
type Match struct {
	Root  egraph.Id
	Subst rewrite.Subst
}

// Run executes prog with root loaded into register 0, appending one Match
// per Yield reached to out. Every candidate e-node at an opCheckNode step
// is tried in turn (the VM backtracks across registers, not across a
// recursive descent of the pattern tree), which is what lets a single
// e-class containing several equivalent e-nodes produce several matches.
func Run(g *egraph.EGraph, prog *Program, root egraph.Id) []Match {
	var out []Match
	regs := make([]egraph.Id, prog.numRegs)
	regs[0] = g.Find(root)
	exec(g, prog.instrs, 0, regs, rewrite.Subst{}, root, &out)
	return out
}

func exec(g *egraph.EGraph, instrs []instr, pc int, regs []egraph.Id, s rewrite.Subst, root egraph.Id, out *[]Match) {
	in := instrs[pc]
	switch in.op {
	case opBind:
		next := cloneSubst(s)
		next[in.Var] = regs[in.Reg]
		exec(g, instrs, pc+1, regs, next, root, out)

	case opCompare:
		if g.Find(regs[in.RegA]) != g.Find(regs[in.RegB]) {
			return
		}
		exec(g, instrs, pc+1, regs, s, root, out)

	case opCheckLit:
		cls := g.Find(regs[in.Reg])
		for _, n := range g.NodesOf(cls) {
			if n.Head == ir.HeadNumberLit && n.Int == in.Value {
				exec(g, instrs, pc+1, regs, s, root, out)
				return
			}
		}

	case opCheckNode:
		cls := g.Find(regs[in.Reg])
		for _, n := range g.NodesOf(cls) {
			if !nodeMatches(n, in) {
				continue
			}
			next := append([]egraph.Id(nil), regs...)
			for i, r := range in.ChildRegs {
				next[r] = n.Children[i]
			}
			exec(g, instrs, pc+1, next, s, root, out)
		}

	case opYield:
		*out = append(*out, Match{Root: root, Subst: s})
	}
}

func nodeMatches(n egraph.ENode, in instr) bool {
	if n.Head != in.Head || len(n.Children) != in.Arity {
		return false
	}
	switch n.Head {
	case ir.HeadCompute:
		return n.Op == in.Op
	case ir.HeadSystolicArray:
		return n.Rows == in.Rows && n.Cols == in.Cols
	case ir.HeadAccessPad:
		return n.Pad == in.Pad
	default:
		return true
	}
}

func cloneSubst(s rewrite.Subst) rewrite.Subst {
	next := make(rewrite.Subst, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	return next
}
