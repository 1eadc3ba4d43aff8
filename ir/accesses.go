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

package ir

import (
	"slices"

	"github.com/erkska/glenside/analysis"
)

func makeAccessTranspose(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	perm, ok := asList(children, 1)
	if !ok {
		return bad(n, "permutation is not a list")
	}
	if len(perm.Elems) != len(s.Shape) {
		return bad(n, "permutation length %d does not match rank %d", len(perm.Elems), len(s.Shape))
	}
	seen := make([]bool, len(perm.Elems))
	newShape := make([]int64, len(perm.Elems))
	for i, p := range perm.Elems {
		if p < 0 || int(p) >= len(s.Shape) || seen[p] {
			return bad(n, "permutation %v is not a permutation of [0..%d)", perm.Elems, len(s.Shape))
		}
		seen[p] = true
		newShape[i] = s.Shape[p]
	}
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: newShape, DType: s.DType}}, nil
}

func makeAccessReshape(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	target, ok := asList(children, 1)
	if !ok {
		return bad(n, "target shape is not a list")
	}
	axis, ok := constInt(children[2])
	if !ok {
		return bad(n, "target axis is not a constant integer")
	}
	if axis < 0 || int(axis) > len(target.Elems) {
		return bad(n, "target axis %d out of range for rank %d", axis, len(target.Elems))
	}
	if prod(s.Shape[:s.AccessAxis]) != prod(target.Elems[:axis]) {
		return bad(n, "reshape changes batch element count: %v -> %v", s.Shape[:s.AccessAxis], target.Elems[:axis])
	}
	if prod(s.Shape[s.AccessAxis:]) != prod(target.Elems[axis:]) {
		return bad(n, "reshape changes item element count: %v -> %v", s.Shape[s.AccessAxis:], target.Elems[axis:])
	}
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: int(axis), Shape: slices.Clone(target.Elems), DType: s.DType}}, nil
}

func makeAccessFlatten(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	batch := prod(s.BatchDims())
	item := prod(s.ItemDims())
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: 1, Shape: []int64{batch, item}, DType: s.DType}}, nil
}

func makeAccessSlice(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	axis, ok := constInt(children[1])
	if !ok {
		return bad(n, "axis is not a constant integer")
	}
	low, ok := constInt(children[2])
	if !ok {
		return bad(n, "low bound is not a constant integer")
	}
	high, ok := constInt(children[3])
	if !ok {
		return bad(n, "high bound is not a constant integer")
	}
	if axis < 0 || int(axis) >= len(s.Shape) {
		return bad(n, "axis %d out of range for rank %d", axis, len(s.Shape))
	}
	if low < 0 || low > high || high > s.Shape[axis] {
		return bad(n, "slice bounds [%d, %d) invalid for dim of size %d", low, high, s.Shape[axis])
	}
	newShape := slices.Clone(s.Shape)
	newShape[axis] = high - low
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: newShape, DType: s.DType}}, nil
}

func makeAccessConcatenate(n Data, children []analysis.Value) (analysis.Value, error) {
	a, ok := asShape(children, 0)
	if !ok {
		return bad(n, "first operand is not an access term")
	}
	b, ok := asShape(children, 1)
	if !ok {
		return bad(n, "second operand is not an access term")
	}
	axis, ok := constInt(children[2])
	if !ok {
		return bad(n, "axis is not a constant integer")
	}
	if a.AccessAxis != b.AccessAxis || len(a.Shape) != len(b.Shape) {
		return bad(n, "operands must share an access axis and rank")
	}
	if axis < 0 || int(axis) >= len(a.Shape) {
		return bad(n, "axis %d out of range for rank %d", axis, len(a.Shape))
	}
	for i := range a.Shape {
		if int64(i) == axis {
			continue
		}
		if a.Shape[i] != b.Shape[i] {
			return bad(n, "dimension %d mismatch: %d vs %d", i, a.Shape[i], b.Shape[i])
		}
	}
	newShape := slices.Clone(a.Shape)
	newShape[axis] = a.Shape[axis] + b.Shape[axis]
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: a.AccessAxis, Shape: newShape, DType: analysis.PromoteDType(a.DType, b.DType)}}, nil
}

func makeAccessBroadcast(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	target, ok := asList(children, 1)
	if !ok {
		return bad(n, "target shape is not a list")
	}
	if len(target.Elems) != len(s.Shape) {
		return bad(n, "broadcast target rank %d does not match rank %d", len(target.Elems), len(s.Shape))
	}
	for i, d := range target.Elems {
		if s.Shape[i] != d && s.Shape[i] != 1 {
			return bad(n, "cannot broadcast dimension %d of size %d to %d", i, s.Shape[i], d)
		}
	}
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: slices.Clone(target.Elems), DType: s.DType}}, nil
}

func makeAccessInsertAxis(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	axis, ok := constInt(children[1])
	if !ok {
		return bad(n, "axis is not a constant integer")
	}
	if axis < 0 || int(axis) > len(s.Shape) {
		return bad(n, "axis %d out of range for rank %d", axis, len(s.Shape))
	}
	newShape := make([]int64, 0, len(s.Shape)+1)
	newShape = append(newShape, s.Shape[:axis]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, s.Shape[axis:]...)
	newAxis := s.AccessAxis
	if int(axis) <= s.AccessAxis {
		newAxis++
	}
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: newAxis, Shape: newShape, DType: s.DType}}, nil
}

func makeAccessSqueeze(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	axis, ok := constInt(children[1])
	if !ok {
		return bad(n, "axis is not a constant integer")
	}
	if axis < 0 || int(axis) >= len(s.Shape) {
		return bad(n, "axis %d out of range for rank %d", axis, len(s.Shape))
	}
	if s.Shape[axis] != 1 {
		return bad(n, "cannot squeeze dimension %d of size %d", axis, s.Shape[axis])
	}
	newShape := make([]int64, 0, len(s.Shape)-1)
	newShape = append(newShape, s.Shape[:axis]...)
	newShape = append(newShape, s.Shape[axis+1:]...)
	newAxis := s.AccessAxis
	if int(axis) < s.AccessAxis {
		newAxis--
	}
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: newAxis, Shape: newShape, DType: s.DType}}, nil
}

func makeAccessPad(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	axis, ok := constInt(children[1])
	if !ok {
		return bad(n, "axis is not a constant integer")
	}
	before, ok := constInt(children[2])
	if !ok {
		return bad(n, "before amount is not a constant integer")
	}
	after, ok := constInt(children[3])
	if !ok {
		return bad(n, "after amount is not a constant integer")
	}
	if axis < 0 || int(axis) >= len(s.Shape) || before < 0 || after < 0 {
		return bad(n, "invalid pad axis %d or amounts (%d, %d)", axis, before, after)
	}
	newShape := slices.Clone(s.Shape)
	newShape[axis] += before + after
	return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: newShape, DType: s.DType}}, nil
}

func makeAccessWindows(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	filter, ok := asList(children, 1)
	if !ok {
		return bad(n, "filter shape is not a list")
	}
	stride, ok := asList(children, 2)
	if !ok {
		return bad(n, "stride shape is not a list")
	}
	item := s.ItemDims()
	if len(filter.Elems) != len(item) || len(stride.Elems) != len(item) {
		return bad(n, "filter/stride rank must match item rank %d", len(item))
	}
	numWindows := make([]int64, len(item))
	for i := range item {
		if stride.Elems[i] <= 0 {
			return bad(n, "stride %d must be positive", stride.Elems[i])
		}
		if filter.Elems[i] > item[i] {
			return bad(n, "filter dimension %d larger than input dimension %d", filter.Elems[i], item[i])
		}
		span := item[i] - filter.Elems[i]
		if span%stride.Elems[i] != 0 {
			return bad(n, "stride %d does not evenly divide span %d on axis %d", stride.Elems[i], span, i)
		}
		numWindows[i] = span/stride.Elems[i] + 1
	}
	newShape := make([]int64, 0, len(s.BatchDims())+len(numWindows)+len(filter.Elems))
	newShape = append(newShape, s.BatchDims()...)
	newShape = append(newShape, numWindows...)
	newShape = append(newShape, filter.Elems...)
	return analysis.Value{Type: analysis.ShapeType{
		AccessAxis: len(s.BatchDims()) + len(numWindows),
		Shape:      newShape,
		DType:      s.DType,
	}}, nil
}

// makeAccessCartesianProduct implements two modes, chosen by shape:
//
//   - pairing mode: a0's and b0's item dims are identical. Used to feed a
//     pair of equal-shape operands into a unary elementwise compute op; the
//     result's item dims gain a leading "2" marking the pair.
//   - contraction mode: a0's trailing item dim equals a1's leading item
//     dim (the shared contraction length). Used to feed the systolic-array
//     lowering idiom (dot-product over two matrices); the matched boundary
//     dimension is dropped from both sides rather than kept. See
//     DESIGN.md for why the spec's abbreviated worked example forces this
//     second mode to exist.
func makeAccessCartesianProduct(n Data, children []analysis.Value) (analysis.Value, error) {
	a, ok := asShape(children, 0)
	if !ok {
		return bad(n, "first operand is not an access term")
	}
	b, ok := asShape(children, 1)
	if !ok {
		return bad(n, "second operand is not an access term")
	}
	dtype := analysis.PromoteDType(a.DType, b.DType)
	batch := append(append([]int64{}, a.BatchDims()...), b.BatchDims()...)

	if slices.Equal(a.ItemDims(), b.ItemDims()) {
		item := append([]int64{2}, a.ItemDims()...)
		shape := append(batch, item...)
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: len(batch), Shape: shape, DType: dtype}}, nil
	}

	aItem, bItem := a.ItemDims(), b.ItemDims()
	if len(aItem) >= 1 && len(bItem) >= 1 && aItem[len(aItem)-1] == bItem[0] {
		item := append(append([]int64{}, aItem[:len(aItem)-1]...), bItem[1:]...)
		shape := append(batch, item...)
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: len(batch), Shape: shape, DType: dtype}}, nil
	}
	return bad(n, "cartesian product operands are neither pairable (%v vs %v) nor contractible", aItem, bItem)
}

func makeCompute(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	switch n.Op {
	case OpDotProduct:
		item := s.ItemDims()
		if len(item) >= 1 && item[0] == 2 {
			// Pairing-mode input: a full reduction over the pair.
			return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: s.BatchDims(), DType: analysis.DTypeF32}}, nil
		}
		// Contraction already happened at the cartesian-product step;
		// dot-product is a pass-through marker node here, matched by
		// the systolic-array lowering rule.
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: s.Shape, DType: analysis.DTypeF32}}, nil

	case OpElementwiseAdd, OpElementwiseMul, OpElementwiseDiv:
		item := s.ItemDims()
		if len(item) < 1 || item[0] != 2 {
			return bad(n, "elementwise op requires a paired access (leading item dim 2), got %v", item)
		}
		newShape := append(append([]int64{}, s.BatchDims()...), item[1:]...)
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: newShape, DType: s.DType}}, nil

	case OpReduceSum, OpReduceMax, OpReduceMean:
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: s.BatchDims(), DType: s.DType}}, nil

	case OpNegative, OpRelu, OpSqrt, OpSoftmax:
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: s.AccessAxis, Shape: s.Shape, DType: s.DType}}, nil

	default:
		return bad(n, "unknown compute op %v", n.Op)
	}
}

func makeSystolicArray(n Data, children []analysis.Value) (analysis.Value, error) {
	a, ok := asShape(children, 0)
	if !ok {
		return bad(n, "activations operand is not an access term")
	}
	b, ok := asShape(children, 1)
	if !ok {
		return bad(n, "weights operand is not an access term")
	}
	if n.Rows <= 0 || n.Cols <= 0 {
		return bad(n, "systolic-array rows/cols must be positive, got (%d, %d)", n.Rows, n.Cols)
	}
	aItem := a.ItemDims()
	if len(aItem) != 1 || aItem[0] != n.Rows {
		return bad(n, "activations item shape %v incompatible with row count %d", aItem, n.Rows)
	}
	bItem := b.ItemDims()
	if len(bItem) != 2 || bItem[0] != n.Rows || bItem[1] != n.Cols {
		return bad(n, "weights item shape %v incompatible with (%d, %d)", bItem, n.Rows, n.Cols)
	}
	shape := append(append([]int64{}, a.BatchDims()...), n.Cols)
	return analysis.Value{Type: analysis.ShapeType{
		AccessAxis: len(a.BatchDims()),
		Shape:      shape,
		DType:      analysis.PromoteDType(a.DType, b.DType),
	}}, nil
}

func makeGetAccessShape(n Data, children []analysis.Value) (analysis.Value, error) {
	s, ok := asShape(children, 0)
	if !ok {
		return bad(n, "operand is not an access term")
	}
	return analysis.Value{Type: analysis.ListType{Elems: slices.Clone(s.Shape)}}, nil
}

func makeTupleGetItem(n Data, children []analysis.Value) (analysis.Value, error) {
	tup, ok := children[0].Type.(analysis.TupleType)
	if !ok {
		return bad(n, "operand is not a tuple")
	}
	idx, ok := constInt(children[1])
	if !ok {
		return bad(n, "index is not a constant integer")
	}
	if idx < 0 || int(idx) >= len(tup.Elems) {
		return bad(n, "index %d out of range for tuple of length %d", idx, len(tup.Elems))
	}
	return analysis.Value{Type: tup.Elems[idx]}, nil
}
