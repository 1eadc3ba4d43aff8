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
	"fmt"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/errs"
)

func newTypeError(node, reason string) error {
	return errs.NewTypeError(node, reason)
}

// Make is the per-operator-head typing rule: a pure function from a node's
// payload and its children's already-computed analysis values to the
// node's own analysis value (component D's "make", §4.D). It is called
// both by egraph.EGraph.Add (with children's e-class analyses) and by
// Validate (with the already-validated children of a Term).
//
// Make never panics on a malformed node: it returns a *errs.TypeError.
func Make(n Data, children []analysis.Value) (v analysis.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = bad(n, "malformed node: %v", r)
		}
	}()
	switch n.Head {
	case HeadNumberLit:
		return analysis.Value{Type: analysis.ScalarType{DType: analysis.DTypeI32}, Const: analysis.IntConst(n.Int)}, nil

	case HeadShape, HeadList:
		elems := make([]int64, len(children))
		for i, c := range children {
			v, ok := constInt(c)
			if !ok {
				return bad(n, "element %d is not a constant integer", i)
			}
			elems[i] = v
		}
		return analysis.Value{Type: analysis.ListType{Elems: elems}}, nil

	case HeadTensor:
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: 0, Shape: n.Shape, DType: n.DType}}, nil

	case HeadAccess:
		s, ok := asShape(children, 0)
		if !ok {
			return bad(n, "operand is not an access term")
		}
		k, ok := constInt(children[1])
		if !ok {
			return bad(n, "axis is not a constant integer")
		}
		if k < 0 || int(k) > len(s.Shape) {
			return bad(n, "axis %d out of range for rank %d", k, len(s.Shape))
		}
		return analysis.Value{Type: analysis.ShapeType{AccessAxis: int(k), Shape: s.Shape, DType: s.DType}}, nil

	case HeadAccessTranspose:
		return makeAccessTranspose(n, children)
	case HeadAccessReshape:
		return makeAccessReshape(n, children)
	case HeadAccessFlatten:
		return makeAccessFlatten(n, children)
	case HeadAccessSlice:
		return makeAccessSlice(n, children)
	case HeadAccessConcatenate:
		return makeAccessConcatenate(n, children)
	case HeadAccessBroadcast:
		return makeAccessBroadcast(n, children)
	case HeadAccessInsertAxis:
		return makeAccessInsertAxis(n, children)
	case HeadAccessSqueeze:
		return makeAccessSqueeze(n, children)
	case HeadAccessPad:
		return makeAccessPad(n, children)
	case HeadAccessWindows:
		return makeAccessWindows(n, children)
	case HeadAccessCartesianProduct:
		return makeAccessCartesianProduct(n, children)
	case HeadCompute:
		return makeCompute(n, children)
	case HeadSystolicArray:
		return makeSystolicArray(n, children)
	case HeadGetAccessShape:
		return makeGetAccessShape(n, children)
	case HeadConstructTuple:
		types := make([]analysis.Type, len(children))
		for i, c := range children {
			types[i] = c.Type
		}
		return analysis.Value{Type: analysis.TupleType{Elems: types}}, nil
	case HeadTupleGetItem:
		return makeTupleGetItem(n, children)
	default:
		return bad(n, "unknown head %v", n.Head)
	}
}

func bad(n Data, format string, args ...any) (analysis.Value, error) {
	return analysis.Value{Type: analysis.NotAType{}}, newTypeError(n.Head.String(), fmt.Sprintf(format, args...))
}

func asShape(children []analysis.Value, i int) (analysis.ShapeType, bool) {
	if i >= len(children) {
		return analysis.ShapeType{}, false
	}
	s, ok := children[i].Type.(analysis.ShapeType)
	return s, ok
}

func asList(children []analysis.Value, i int) (analysis.ListType, bool) {
	if i >= len(children) {
		return analysis.ListType{}, false
	}
	l, ok := children[i].Type.(analysis.ListType)
	return l, ok
}

func constInt(v analysis.Value) (int64, bool) {
	if v.Const != nil && v.Const.Int != nil {
		return *v.Const.Int, true
	}
	return 0, false
}

func prod(dims []int64) int64 {
	p := int64(1)
	for _, d := range dims {
		p *= d
	}
	return p
}
