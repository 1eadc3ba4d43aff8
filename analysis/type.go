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

// Package analysis is the e-class analysis attached to every e-class: a
// bounded semilattice over tensor shape, dtype and access-layout, plus a
// constant-folding payload. Its Type hierarchy is modelled after the
// teacher's build/ir.Type: a narrow interface with a node-like Kind()
// discriminator rather than a reflection-driven sum type.
package analysis

import (
	"fmt"
	"slices"
)

// Kind discriminates the variants of Type, analogous to build/ir.Kind.
type Kind uint8

const (
	// NotATypeKind marks a class whose e-nodes could not be typed
	// consistently; such a class is excluded from extraction.
	NotATypeKind Kind = iota
	ShapeKind
	ListKind
	TupleKind
	ScalarKind
)

func (k Kind) String() string {
	switch k {
	case ShapeKind:
		return "ShapeType"
	case ListKind:
		return "ListType"
	case TupleKind:
		return "TupleType"
	case ScalarKind:
		return "ScalarType"
	default:
		return "NotAType"
	}
}

// Type is the analysis' notion of a tensor (or tensor-adjacent) type.
type Type interface {
	// Kind identifies the concrete variant.
	Kind() Kind
	// Equal reports whether two types denote the same type.
	Equal(Type) bool
	String() string
}

// NotAType is the bottom-excluding sentinel: a class reaching it is
// ill-typed and never chosen by the extractor.
type NotAType struct{}

func (NotAType) Kind() Kind        { return NotATypeKind }
func (NotAType) String() string    { return "NotAType" }
func (NotAType) Equal(t Type) bool { _, ok := t.(NotAType); return ok }

// ShapeType is the type of an access term: a tensor shape together with the
// access axis that splits it into batch dimensions (indices < AccessAxis)
// and item dimensions (indices >= AccessAxis).
type ShapeType struct {
	AccessAxis int
	Shape      []int64
	DType      DType
}

func (ShapeType) Kind() Kind { return ShapeKind }

func (s ShapeType) String() string {
	return fmt.Sprintf("ShapeType{access_axis:%d, shape:%v, dtype:%s}", s.AccessAxis, s.Shape, s.DType)
}

func (s ShapeType) Equal(t Type) bool {
	o, ok := t.(ShapeType)
	if !ok {
		return false
	}
	return s.AccessAxis == o.AccessAxis && s.DType == o.DType && slices.Equal(s.Shape, o.Shape)
}

// BatchDims returns the leading dimensions before the access axis.
func (s ShapeType) BatchDims() []int64 { return s.Shape[:s.AccessAxis] }

// ItemDims returns the trailing dimensions at and after the access axis.
func (s ShapeType) ItemDims() []int64 { return s.Shape[s.AccessAxis:] }

// Rank returns the total number of dimensions.
func (s ShapeType) Rank() int { return len(s.Shape) }

// ListType is the type of a list of shape-literal-like children, e.g. the
// operand of access-transpose's permutation or access-reshape's target
// shape, prior to being folded into a concrete shape.
type ListType struct {
	Elems []int64
}

func (ListType) Kind() Kind     { return ListKind }
func (l ListType) String() string { return fmt.Sprintf("ListType(%v)", l.Elems) }

func (l ListType) Equal(t Type) bool {
	o, ok := t.(ListType)
	if !ok {
		return false
	}
	return slices.Equal(l.Elems, o.Elems)
}

// TupleType is the type of construct-tuple / tuple-get-item.
type TupleType struct {
	Elems []Type
}

func (TupleType) Kind() Kind { return TupleKind }

func (tt TupleType) String() string {
	ss := make([]string, len(tt.Elems))
	for i, e := range tt.Elems {
		ss[i] = e.String()
	}
	return fmt.Sprintf("TupleType%v", ss)
}

func (tt TupleType) Equal(t Type) bool {
	o, ok := t.(TupleType)
	if !ok || len(tt.Elems) != len(o.Elems) {
		return false
	}
	for i := range tt.Elems {
		if !tt.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// ScalarType is the type of a bare numeric literal or folded scalar,
// carrying the dtype it would be materialised with.
type ScalarType struct {
	DType DType
}

func (ScalarType) Kind() Kind          { return ScalarKind }
func (s ScalarType) String() string    { return fmt.Sprintf("ScalarType(%s)", s.DType) }
func (s ScalarType) Equal(t Type) bool { o, ok := t.(ScalarType); return ok && s.DType == o.DType }
