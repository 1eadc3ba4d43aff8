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

import "testing"

func TestMergeSameTypeNoConst(t *testing.T) {
	a := Value{Type: ShapeType{AccessAxis: 1, Shape: []int64{4, 16}}}
	b := Value{Type: ShapeType{AccessAxis: 1, Shape: []int64{4, 16}}}
	merged, changed := Merge(a, b)
	if changed {
		t.Fatalf("merging two identical values should not be strict")
	}
	if !merged.Type.Equal(a.Type) {
		t.Fatalf("merged type = %v, want %v", merged.Type, a.Type)
	}
}

func TestMergeDifferentTypesYieldsNotAType(t *testing.T) {
	a := Value{Type: ShapeType{AccessAxis: 1, Shape: []int64{4, 16}}}
	b := Value{Type: ScalarType{DType: DTypeF32}}
	merged, changed := Merge(a, b)
	if _, ok := merged.Type.(NotAType); !ok {
		t.Fatalf("merged type = %v, want NotAType", merged.Type)
	}
	if !changed {
		t.Fatalf("merging two distinct types should be strict")
	}
}

func TestMergeConstRefines(t *testing.T) {
	shape := ShapeType{AccessAxis: 0, Shape: []int64{4}}
	a := Value{Type: shape}
	b := Value{Type: shape, Const: IntConst(4)}
	merged, changed := Merge(a, b)
	if !changed {
		t.Fatalf("gaining a constant should be a strict change")
	}
	if merged.Const == nil || *merged.Const.Int != 4 {
		t.Fatalf("merged const = %v, want 4", merged.Const)
	}
}

func TestMergeConflictingConstForgets(t *testing.T) {
	shape := ShapeType{AccessAxis: 0, Shape: []int64{4}}
	a := Value{Type: shape, Const: IntConst(4)}
	b := Value{Type: shape, Const: IntConst(5)}
	merged, changed := Merge(a, b)
	if merged.Const != nil {
		t.Fatalf("conflicting consts should merge to nil, got %v", merged.Const)
	}
	if !changed {
		t.Fatalf("losing a conflicting constant should be a strict change")
	}
}

func TestPromoteDType(t *testing.T) {
	if got := PromoteDType(DTypeI8, DTypeF32); got != DTypeF32 {
		t.Fatalf("PromoteDType(i8, f32) = %v, want f32", got)
	}
	if got := PromoteDType(DTypeI8, DTypeU8); got != DTypeU8 {
		t.Fatalf("PromoteDType(i8, u8) = %v, want u8", got)
	}
}
