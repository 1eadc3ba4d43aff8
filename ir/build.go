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
	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/symbol"
)

// NumberLit builds a leaf integer literal node.
func NumberLit(v int64) *Term {
	return &Term{Data: Data{Head: HeadNumberLit, Int: v}}
}

// Shape builds a "(shape ...)" tuple node from integer literals.
func Shape(dims ...int64) *Term {
	children := make([]*Term, len(dims))
	for i, d := range dims {
		children[i] = NumberLit(d)
	}
	return &Term{Data: Data{Head: HeadShape}, Children: children}
}

// List builds a "(list ...)" node from integer literals.
func List(elems ...int64) *Term {
	children := make([]*Term, len(elems))
	for i, d := range elems {
		children[i] = NumberLit(d)
	}
	return &Term{Data: Data{Head: HeadList}, Children: children}
}

// Tensor builds a symbolic tensor-literal leaf reference.
func Tensor(sym symbol.Symbol, shape []int64, dtype analysis.DType) *Term {
	return &Term{Data: Data{Head: HeadTensor, Sym: sym, Shape: shape, DType: dtype}}
}

// Access builds "(access t k)".
func Access(t *Term, axis int64) *Term {
	return &Term{Data: Data{Head: HeadAccess}, Children: []*Term{t, NumberLit(axis)}}
}

// AccessTranspose builds "(access-transpose a perm)".
func AccessTranspose(a *Term, perm ...int64) *Term {
	return &Term{Data: Data{Head: HeadAccessTranspose}, Children: []*Term{a, List(perm...)}}
}

// AccessReshape builds "(access-reshape a shape axis)".
func AccessReshape(a *Term, axis int64, shape ...int64) *Term {
	return &Term{Data: Data{Head: HeadAccessReshape}, Children: []*Term{a, Shape(shape...), NumberLit(axis)}}
}

// AccessFlatten builds "(access-flatten a)".
func AccessFlatten(a *Term) *Term {
	return &Term{Data: Data{Head: HeadAccessFlatten}, Children: []*Term{a}}
}

// AccessSlice builds "(access-slice a axis low high)".
func AccessSlice(a *Term, axis, low, high int64) *Term {
	return &Term{Data: Data{Head: HeadAccessSlice}, Children: []*Term{a, NumberLit(axis), NumberLit(low), NumberLit(high)}}
}

// AccessConcatenate builds "(access-concatenate a b axis)".
func AccessConcatenate(a, b *Term, axis int64) *Term {
	return &Term{Data: Data{Head: HeadAccessConcatenate}, Children: []*Term{a, b, NumberLit(axis)}}
}

// AccessBroadcast builds "(access-broadcast a shape)".
func AccessBroadcast(a *Term, shape ...int64) *Term {
	return &Term{Data: Data{Head: HeadAccessBroadcast}, Children: []*Term{a, Shape(shape...)}}
}

// AccessInsertAxis builds "(access-insert-axis a axis)".
func AccessInsertAxis(a *Term, axis int64) *Term {
	return &Term{Data: Data{Head: HeadAccessInsertAxis}, Children: []*Term{a, NumberLit(axis)}}
}

// AccessSqueeze builds "(access-squeeze a axis)".
func AccessSqueeze(a *Term, axis int64) *Term {
	return &Term{Data: Data{Head: HeadAccessSqueeze}, Children: []*Term{a, NumberLit(axis)}}
}

// AccessPad builds "(access-pad a axis before after)" tagged with pad.
func AccessPad(a *Term, axis int64, pad PadType, before, after int64) *Term {
	return &Term{
		Data:     Data{Head: HeadAccessPad, Pad: pad},
		Children: []*Term{a, NumberLit(axis), NumberLit(before), NumberLit(after)},
	}
}

// AccessWindows builds "(access-windows a filter-shape stride-shape)".
func AccessWindows(a *Term, filter, stride []int64) *Term {
	return &Term{Data: Data{Head: HeadAccessWindows}, Children: []*Term{a, Shape(filter...), Shape(stride...)}}
}

// AccessCartesianProduct builds "(access-cartesian-product a b)".
func AccessCartesianProduct(a, b *Term) *Term {
	return &Term{Data: Data{Head: HeadAccessCartesianProduct}, Children: []*Term{a, b}}
}

// Compute builds "(compute <op> a)".
func Compute(op ComputeOp, a *Term) *Term {
	return &Term{Data: Data{Head: HeadCompute, Op: op}, Children: []*Term{a}}
}

// SystolicArray builds "(systolic-array R C a b)".
func SystolicArray(rows, cols int64, a, b *Term) *Term {
	return &Term{Data: Data{Head: HeadSystolicArray, Rows: rows, Cols: cols}, Children: []*Term{a, b}}
}

// GetAccessShape builds "(get-access-shape a)".
func GetAccessShape(a *Term) *Term {
	return &Term{Data: Data{Head: HeadGetAccessShape}, Children: []*Term{a}}
}

// ConstructTuple builds "(construct-tuple ...)".
func ConstructTuple(elems ...*Term) *Term {
	return &Term{Data: Data{Head: HeadConstructTuple}, Children: elems}
}

// TupleGetItem builds "(tuple-get-item t i)".
func TupleGetItem(t *Term, i int64) *Term {
	return &Term{Data: Data{Head: HeadTupleGetItem}, Children: []*Term{t, NumberLit(i)}}
}
