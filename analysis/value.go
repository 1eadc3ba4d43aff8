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

package analysis

import "slices"

// Const is the constant-folding payload of a Value: either a folded
// integer (Int != nil) or a folded shape tuple (Shape != nil), never both.
// A nil *Const means "not known to be constant".
type Const struct {
	Int   *int64
	Shape []int64
}

// IntConst returns a Const folding to the integer v.
func IntConst(v int64) *Const { return &Const{Int: &v} }

// ShapeConst returns a Const folding to the shape tuple v.
func ShapeConst(v []int64) *Const { return &Const{Shape: slices.Clone(v)} }

func (c *Const) equal(o *Const) bool {
	if c == nil || o == nil {
		return c == o
	}
	if (c.Int == nil) != (o.Int == nil) {
		return false
	}
	if c.Int != nil {
		return *c.Int == *o.Int
	}
	return slices.Equal(c.Shape, o.Shape)
}

// Value is the analysis product attached to every e-class: a Type plus an
// optional constant-folded payload.
type Value struct {
	Type  Type
	Const *Const
}

// Bottom is the most refined value known at class-creation time before any
// merge: NotAType with no constant. add() immediately overwrites it with
// the freshly computed Make result, so Bottom is never observed directly.
var Bottom = Value{Type: NotAType{}}

// Merge computes the semilattice join of a and b, plus whether the result
// differs from either input. Equal types keep that type; a constant known
// on only one side is kept, and two conflicting constants are dropped;
// differing types yield NotAType. The e-graph calls Merge whenever two e-classes
// carrying independently computed analyses are unioned, and uses the
// changed flag to decide whether to re-propagate the merged value to the
// class's parents.
func Merge(a, b Value) (Value, bool) {
	if !typeEqual(a.Type, b.Type) {
		merged := Value{Type: NotAType{}}
		changed := !typeEqual(a.Type, NotAType{}) || !typeEqual(b.Type, NotAType{})
		return merged, changed
	}
	mergedConst, constChanged := mergeConst(a.Const, b.Const)
	return Value{Type: a.Type, Const: mergedConst}, constChanged
}

func typeEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// mergeConst joins two constant-folding payloads. A conflicting pair of
// concrete constants (which would indicate an unsound rewrite upstream) is
// not treated as a type error: it is simply forgotten, losing precision
// rather than poisoning the class.
func mergeConst(a, b *Const) (*Const, bool) {
	switch {
	case a == nil && b == nil:
		return nil, false
	case a == nil:
		return b, true
	case b == nil:
		return a, true
	case a.equal(b):
		return a, false
	default:
		return nil, true
	}
}
