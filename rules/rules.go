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

// Package rules is component J: the default rewrite-rule library over
// the tensor IR (§4.E-F), built on top of package rewrite's pattern/
// applier primitives. It includes associativity/commutativity of
// elementwise ops (commutativity guarded by Ordered against term
// explosion; associativity is unguarded), distributivity of
// access-transpose through compute, tiling via access-windows, transpose
// cancellation, and the systolic-array lowering rule.
package rules

import (
	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/rewrite"
)

// Ordered is a guard that only lets a symmetric rule fire in one
// direction: it requires the canonical class of the pattern variable
// named a to sort before that of b. Without it, a commutativity rule
// would refire on its own output forever (§4.E "limited to prevent term
// explosion"); the standard egg idiom is exactly this kind of canonical-
// order side condition.
func Ordered(a, b string) rewrite.Guard {
	return func(g *egraph.EGraph, s rewrite.Subst) bool {
		return g.Find(s[a]) < g.Find(s[b])
	}
}

func shapeList(dims []int64) rewrite.Pattern {
	children := make([]rewrite.Pattern, len(dims))
	for i, d := range dims {
		children[i] = rewrite.Lit(d)
	}
	return rewrite.PatNode{Head: ir.HeadShape, Children: children}
}

// Commute builds the commutativity rule for a binary elementwise op:
// (compute op (access-cartesian-product ?a ?b)) rewrites to the same
// compute over the operands swapped. Guarded by Ordered so the pair
// (?a, ?b) only ever fires with ?a's class sorting before ?b's.
func Commute(op ir.ComputeOp) rewrite.Rule {
	lhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("b"), rewrite.Var("a")))
	return rewrite.NewConditional("commute-"+op.String(), lhs, Ordered("a", "b"), rewrite.TemplateApplier{RHS: rhs})
}

// AssociateLeft builds a left-to-right reassociation rule for a binary
// elementwise op: op(op(a,b),c) rewrites to op(a,op(b,c)). The reverse
// direction is a separate, differently-shaped rule (AssociateRight) so
// neither needs a guard to avoid immediately undoing the other; run
// together they still terminate in practice because the runner's
// node/iteration budget bounds the search, matching the standard egg
// treatment of AC rules as explosive-by-nature and budget-limited rather
// than provably terminating.
func AssociateLeft(op ir.ComputeOp) rewrite.Rule {
	inner := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	lhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, inner, rewrite.Var("c")))
	innerRHS := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("b"), rewrite.Var("c")))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), innerRHS))
	return rewrite.Rewrite("associate-left-"+op.String(), lhs, rhs)
}

// AssociateRight is the inverse of AssociateLeft.
func AssociateRight(op ir.ComputeOp) rewrite.Rule {
	innerLHS := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("b"), rewrite.Var("c")))
	lhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), innerLHS))
	innerRHS := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, innerRHS, rewrite.Var("c")))
	return rewrite.Rewrite("associate-right-"+op.String(), lhs, rhs)
}

// CancelDoubleTranspose collapses a transpose applied twice with the
// same permutation list back to the identity, the common case of
// transposing by an involution (e.g. swapping the same two axes twice).
// A fully general "p1 then p2 composes to the identity permutation" rule
// would need permutation composition evaluated inside a guard against
// two independently-bound lists; this concrete instance covers the
// idiom's most common occurrence and is what ir.TestAccessTransposeCancelsShapeWise
// and match.TestSearchAllFindsTransposeOfTranspose already exercise.
func CancelDoubleTranspose() rewrite.Rule {
	lhs := rewrite.Node(ir.HeadAccessTranspose,
		rewrite.Node(ir.HeadAccessTranspose, rewrite.Var("a"), rewrite.Var("p")),
		rewrite.Var("p"))
	return rewrite.Rewrite("cancel-double-transpose", lhs, rewrite.Var("a"))
}

// DistributeTransposeThroughUnary pushes access-transpose through a unary
// compute op: transpose(compute(op, a)) == compute(op, transpose(a)) for
// any op that treats every item element independently (elementwise
// unary ops; reductions and dot-product change rank and are excluded).
func DistributeTransposeThroughUnary(op ir.ComputeOp) rewrite.Rule {
	lhs := rewrite.Node(ir.HeadAccessTranspose, rewrite.Compute(op, rewrite.Var("a")), rewrite.Var("p"))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessTranspose, rewrite.Var("a"), rewrite.Var("p")))
	return rewrite.Rewrite("distribute-transpose-through-"+op.String(), lhs, rhs)
}

// Tile rewrites a plain access at the given axis into a windowed view
// with the given filter/stride shape, the entry point for blocking a
// computation per §4.E "tiling/blocking of access via access-windows +
// access-cartesian-product". The caller composes the windowed access
// with AccessCartesianProduct-based rules to actually block a downstream
// compute op; Tile itself only introduces the windows node.
func Tile(name string, axis int64, filter, stride []int64) rewrite.Rule {
	lhs := rewrite.Node(ir.HeadAccess, rewrite.Var("t"), rewrite.Lit(axis))
	rhs := rewrite.PatNode{
		Head: ir.HeadAccessWindows,
		Children: []rewrite.Pattern{
			rewrite.Node(ir.HeadAccess, rewrite.Var("t"), rewrite.Lit(axis)),
			shapeList(filter),
			shapeList(stride),
		},
	}
	return rewrite.Rewrite(name, lhs, rhs)
}

// LowerDotProductToSystolicArray is the key lowering rule (§4.E, §8a): a
// dot-product over a contraction-mode cartesian product, whose shared
// dimension is R and whose trailing output dimension is C, is equivalent
// to systolic-array R C applied to the same two operands. R and C are
// read out of the matched operands' analysis rather than fixed at rule-
// construction time, since they depend on the concrete shapes matched.
//
// The guard restricts the rule to contraction mode (operands' item
// shapes differ): a pairing-mode cartesian product under dot-product
// already means "elementwise multiply then fully reduce" and must not
// be reinterpreted as a matmul contraction.
func LowerDotProductToSystolicArray() rewrite.Rule {
	lhs := rewrite.Compute(ir.OpDotProduct, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	guard := func(g *egraph.EGraph, s rewrite.Subst) bool {
		aItem, ok := itemDims(g, s["a"])
		if !ok {
			return false
		}
		bItem, ok := itemDims(g, s["b"])
		if !ok {
			return false
		}
		return !equalDims(aItem, bItem)
	}
	applier := rewrite.ApplierFunc(func(g *egraph.EGraph, s rewrite.Subst) (egraph.Id, error) {
		aItem, ok := itemDims(g, s["a"])
		if !ok {
			return 0, errNotShaped
		}
		bItem, ok := itemDims(g, s["b"])
		if !ok {
			return 0, errNotShaped
		}
		rows := aItem[len(aItem)-1]
		cols := bItem[len(bItem)-1]
		return g.Add(ir.Data{Head: ir.HeadSystolicArray, Rows: rows, Cols: cols}, []egraph.Id{s["a"], s["b"]})
	})
	return rewrite.NewConditional("lower-dot-product-to-systolic-array", lhs, guard, applier)
}

// PadAmountFoldsTo guards on the e-class bound to name folding (via
// analysis.Value.Const, threaded through the e-graph the same way
// ir.Make threads it through every Shape/List/axis computation) to an
// integer that is an exact multiple of align. It is how a rule reaches
// a runtime-bound pad amount rather than one fixed at rule-construction
// time.
func PadAmountFoldsTo(name string, align int64) rewrite.Guard {
	return func(g *egraph.EGraph, s rewrite.Subst) bool {
		c := g.AnalysisOf(s[name]).Const
		return c != nil && c.Int != nil && *c.Int%align == 0
	}
}

func shapeTypeOf(g *egraph.EGraph, id egraph.Id) (analysis.ShapeType, bool) {
	s, ok := g.AnalysisOf(id).Type.(analysis.ShapeType)
	return s, ok
}

// LowerPaddedDotProductToSystolicArray is a variant of
// LowerDotProductToSystolicArray for when the left operand of the
// contraction is zero-padded along its contraction axis -- zero-padding
// a contraction dimension never changes a dot product's result, so the
// lowering is still sound, but only once the pad amounts are known
// (folded, via Value.Const) to be exact multiples of align, the
// datapath's DMA alignment requirement. The pad's axis, before and
// after amounts are all runtime-bound pattern variables, not literals
// fixed when the rule is built, so the guard reads them back out of the
// e-graph's analysis rather than off Go values closed over at
// construction.
func LowerPaddedDotProductToSystolicArray(align int64) rewrite.Rule {
	padded := rewrite.PatNode{
		Head: ir.HeadAccessPad,
		Pad:  ir.PadZero,
		Children: []rewrite.Pattern{
			rewrite.Var("inner"), rewrite.Var("axis"), rewrite.Var("before"), rewrite.Var("after"),
		},
	}
	lhs := rewrite.Compute(ir.OpDotProduct, rewrite.Node(ir.HeadAccessCartesianProduct, padded, rewrite.Var("b")))

	paddedItem := func(g *egraph.EGraph, s rewrite.Subst) ([]int64, bool) {
		inner, ok := shapeTypeOf(g, s["inner"])
		if !ok {
			return nil, false
		}
		axisConst := g.AnalysisOf(s["axis"]).Const
		beforeConst := g.AnalysisOf(s["before"]).Const
		afterConst := g.AnalysisOf(s["after"]).Const
		if axisConst == nil || axisConst.Int == nil || beforeConst == nil || beforeConst.Int == nil || afterConst == nil || afterConst.Int == nil {
			return nil, false
		}
		if *axisConst.Int != int64(len(inner.Shape)-1) {
			return nil, false // only the trailing (contraction) axis is supported
		}
		item := append([]int64{}, inner.ItemDims()...)
		item[len(item)-1] += *beforeConst.Int + *afterConst.Int
		return item, true
	}

	guard := func(g *egraph.EGraph, s rewrite.Subst) bool {
		if !PadAmountFoldsTo("before", align)(g, s) || !PadAmountFoldsTo("after", align)(g, s) {
			return false
		}
		aItem, ok := paddedItem(g, s)
		if !ok {
			return false
		}
		bItem, ok := itemDims(g, s["b"])
		if !ok {
			return false
		}
		return !equalDims(aItem, bItem)
	}
	applier := rewrite.ApplierFunc(func(g *egraph.EGraph, s rewrite.Subst) (egraph.Id, error) {
		aItem, ok := paddedItem(g, s)
		if !ok {
			return 0, errNotShaped
		}
		bItem, ok := itemDims(g, s["b"])
		if !ok {
			return 0, errNotShaped
		}
		a, err := g.Add(ir.Data{Head: ir.HeadAccessPad, Pad: ir.PadZero},
			[]egraph.Id{s["inner"], s["axis"], s["before"], s["after"]})
		if err != nil {
			return 0, err
		}
		rows := aItem[len(aItem)-1]
		cols := bItem[len(bItem)-1]
		return g.Add(ir.Data{Head: ir.HeadSystolicArray, Rows: rows, Cols: cols}, []egraph.Id{a, s["b"]})
	})
	return rewrite.NewConditional("lower-padded-dot-product-to-systolic-array", lhs, guard, applier)
}

func itemDims(g *egraph.EGraph, id egraph.Id) ([]int64, bool) {
	s, ok := g.AnalysisOf(id).Type.(analysis.ShapeType)
	if !ok {
		return nil, false
	}
	return s.ItemDims(), true
}

func equalDims(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Default returns the default rule library: every rule listed in §4.E,
// instantiated for the ops the testable scenarios in §8 exercise.
func Default() []rewrite.Rule {
	return []rewrite.Rule{
		Commute(ir.OpElementwiseAdd),
		Commute(ir.OpElementwiseMul),
		AssociateLeft(ir.OpElementwiseAdd),
		AssociateRight(ir.OpElementwiseAdd),
		CancelDoubleTranspose(),
		DistributeTransposeThroughUnary(ir.OpRelu),
		DistributeTransposeThroughUnary(ir.OpNegative),
		LowerDotProductToSystolicArray(),
		LowerPaddedDotProductToSystolicArray(16),
	}
}
