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

// Package ir is the tensor intermediate representation tree: a tagged
// variant with a fixed operator head and an ordered list of children,
// modelled after the teacher's build/ir.Node hierarchy but specialised to
// the families in §3 of the specification (shape/access literals, tensor
// literals, structural access ops, compute ops, hardware atoms, control).
package ir

import "fmt"

// Head is the operator tag of a node. Child count is not encoded in the
// type system (several heads are variadic); Make rejects a node with fewer
// children than its head reads with a TypeError, and surplus children are
// not checked.
type Head uint16

const (
	// HeadInvalid is the zero value; a legal node is never left with it.
	HeadInvalid Head = iota

	// Shape/access literals.
	HeadNumberLit
	HeadShape
	HeadList

	// Tensor literals.
	HeadTensor

	// Structural.
	HeadAccess
	HeadAccessTranspose
	HeadAccessReshape
	HeadAccessFlatten
	HeadAccessSlice
	HeadAccessConcatenate
	HeadAccessBroadcast
	HeadAccessInsertAxis
	HeadAccessSqueeze
	HeadAccessPad
	HeadAccessWindows
	HeadAccessCartesianProduct

	// Compute.
	HeadCompute

	// Atoms.
	HeadSystolicArray

	// Control.
	HeadGetAccessShape
	HeadConstructTuple
	HeadTupleGetItem
)

var headNames = map[Head]string{
	HeadNumberLit:              "number",
	HeadShape:                  "shape",
	HeadList:                   "list",
	HeadTensor:                 "tensor",
	HeadAccess:                 "access",
	HeadAccessTranspose:        "access-transpose",
	HeadAccessReshape:          "access-reshape",
	HeadAccessFlatten:          "access-flatten",
	HeadAccessSlice:            "access-slice",
	HeadAccessConcatenate:      "access-concatenate",
	HeadAccessBroadcast:        "access-broadcast",
	HeadAccessInsertAxis:       "access-insert-axis",
	HeadAccessSqueeze:          "access-squeeze",
	HeadAccessPad:              "access-pad",
	HeadAccessWindows:          "access-windows",
	HeadAccessCartesianProduct: "access-cartesian-product",
	HeadCompute:                "compute",
	HeadSystolicArray:          "systolic-array",
	HeadGetAccessShape:         "get-access-shape",
	HeadConstructTuple:         "construct-tuple",
	HeadTupleGetItem:           "tuple-get-item",
}

// String returns the textual-IR operator name, e.g. "access-transpose".
func (h Head) String() string {
	if name, ok := headNames[h]; ok {
		return name
	}
	return fmt.Sprintf("head(%d)", uint16(h))
}

// HeadFromString is the inverse of String, used by the sexpr parser.
func HeadFromString(s string) (Head, bool) {
	for h, name := range headNames {
		if name == s {
			return h, true
		}
	}
	return HeadInvalid, false
}

// ComputeOp is the closed enumeration of compute ops carried by a "compute"
// node's payload.
type ComputeOp uint8

const (
	OpInvalid ComputeOp = iota
	OpDotProduct
	OpReduceSum
	OpReduceMax
	OpReduceMean
	OpElementwiseAdd
	OpElementwiseMul
	OpElementwiseDiv
	OpNegative
	OpRelu
	OpSqrt
	OpSoftmax
)

var computeOpNames = map[ComputeOp]string{
	OpDotProduct:     "dot-product",
	OpReduceSum:      "reduce-sum",
	OpReduceMax:      "reduce-max",
	OpReduceMean:     "reduce-mean",
	OpElementwiseAdd: "elementwise-add",
	OpElementwiseMul: "elementwise-mul",
	OpElementwiseDiv: "elementwise-div",
	OpNegative:       "negative",
	OpRelu:           "relu",
	OpSqrt:           "sqrt",
	OpSoftmax:        "softmax",
}

func (op ComputeOp) String() string {
	if name, ok := computeOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// ComputeOpFromString is the inverse of String.
func ComputeOpFromString(s string) (ComputeOp, bool) {
	for op, name := range computeOpNames {
		if name == s {
			return op, true
		}
	}
	return OpInvalid, false
}

// binaryOps are the compute ops with two elementwise-compatible operands
// packed, by convention, as the two halves of a single access-cartesian-
// product input (see access-cartesian-product in accesses.go). Unary ops
// are everything else.
var binaryOps = map[ComputeOp]bool{
	OpDotProduct:     true,
	OpElementwiseAdd: true,
	OpElementwiseMul: true,
	OpElementwiseDiv: true,
}

// IsPairwise reports whether op consumes a paired (cartesian-product-style)
// access rather than a single plain access.
func IsPairwise(op ComputeOp) bool { return binaryOps[op] }

// PadType is the closed enumeration carried by access-pad's payload.
type PadType uint8

const (
	PadInvalid PadType = iota
	PadZero
	PadMin
)

func (p PadType) String() string {
	switch p {
	case PadZero:
		return "zero-padding"
	case PadMin:
		return "min-padding"
	default:
		return "invalid-padding"
	}
}

// PadTypeFromString is the inverse of String.
func PadTypeFromString(s string) (PadType, bool) {
	switch s {
	case "zero-padding":
		return PadZero, true
	case "min-padding":
		return PadMin, true
	default:
		return PadInvalid, false
	}
}
