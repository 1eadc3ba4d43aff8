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
	"github.com/erkska/glenside/symbol"
)

// Data is the payload shared by every node of a given Head. Only the
// fields relevant to Head are ever set; the rest are left at their zero
// value, which keeps e-node hashing in package egraph uniform across all
// heads without a family of head-specific structs.
type Data struct {
	Head Head

	// Int is the payload of HeadNumberLit.
	Int int64

	// Sym and Shape/DType are the payload of HeadTensor: a symbolic
	// tensor reference plus the shape and element type it is declared
	// with.
	Sym   symbol.Symbol
	Shape []int64
	DType analysis.DType

	// Op is the payload of HeadCompute.
	Op ComputeOp

	// Rows and Cols are the payload of HeadSystolicArray.
	Rows int64
	Cols int64

	// Pad is the payload of HeadAccessPad.
	Pad PadType
}

// node marks Term as a node structure, matching the teacher's build/ir
// convention of a private marker method that prevents external packages
// from defining their own Node implementations.
func (*Term) node() {}

// Node is implemented only by *Term; the marker method node keeps the
// implementation closed to this package.
type Node interface {
	node()
}

// Term is a tensor-IR node built outside the e-graph: children are boxed
// pointers rather than e-class ids. A Term is immutable once constructed;
// the build.go constructors are the only supported way to create one.
type Term struct {
	Data
	Children []*Term
}

// Equal reports whether two terms are structurally identical.
func (t *Term) Equal(o *Term) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Head != o.Head || t.Int != o.Int || t.Sym != o.Sym || t.DType != o.DType ||
		t.Op != o.Op || t.Rows != o.Rows || t.Cols != o.Cols || t.Pad != o.Pad {
		return false
	}
	if !slices.Equal(t.Shape, o.Shape) {
		return false
	}
	if len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
