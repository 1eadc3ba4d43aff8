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
	"testing"

	"go.uber.org/multierr"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/symbol"
)

func TestAccessReshapeShapeInference(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	term := AccessReshape(Access(Tensor(a, []int64{16}, analysis.DTypeF32), 0), 0, 2, 8)

	v, err := Analyze(term)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := analysis.ShapeType{AccessAxis: 0, Shape: []int64{2, 8}, DType: analysis.DTypeF32}
	got, ok := v.Type.(analysis.ShapeType)
	if !ok || !got.Equal(want) {
		t.Fatalf("Analyze(reshape) = %v, want %v", v.Type, want)
	}
}

func TestAccessReshapeRejectsElementCountChange(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	term := AccessReshape(Access(Tensor(a, []int64{16}, analysis.DTypeF32), 0), 0, 2, 9)
	if err := Validate(term); err == nil {
		t.Fatalf("Validate accepted a reshape that changes element count")
	}
}

func TestAccessTransposeCancelsShapeWise(t *testing.T) {
	in := symbol.New()
	x := in.Intern("x")
	term := Tensor(x, []int64{4, 8}, analysis.DTypeF32)
	term = Access(term, 0)
	transposed := AccessTranspose(AccessTranspose(term, 1, 0), 1, 0)
	v, err := Analyze(transposed)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := analysis.ShapeType{AccessAxis: 0, Shape: []int64{4, 8}, DType: analysis.DTypeF32}
	got, ok := v.Type.(analysis.ShapeType)
	if !ok || !got.Equal(want) {
		t.Fatalf("Analyze(transpose(transpose)) = %v, want %v", v.Type, want)
	}
}

func TestSystolicArrayLoweringShapesMatch(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	b := in.Intern("B")
	accessA := Access(Tensor(a, []int64{4, 16}, analysis.DTypeF32), 1)
	accessB := Access(Tensor(b, []int64{16, 32}, analysis.DTypeF32), 0)

	dot := Compute(OpDotProduct, AccessCartesianProduct(accessA, accessB))
	dotValue, err := Analyze(dot)
	if err != nil {
		t.Fatalf("Analyze(dot): %v", err)
	}

	lowered := SystolicArray(16, 32, accessA, accessB)
	loweredValue, err := Analyze(lowered)
	if err != nil {
		t.Fatalf("Analyze(systolic-array): %v", err)
	}

	dotShape, ok := dotValue.Type.(analysis.ShapeType)
	if !ok {
		t.Fatalf("dot-product analysis is not a ShapeType: %v", dotValue.Type)
	}
	loweredShape, ok := loweredValue.Type.(analysis.ShapeType)
	if !ok {
		t.Fatalf("systolic-array analysis is not a ShapeType: %v", loweredValue.Type)
	}
	if !dotShape.Equal(loweredShape) {
		t.Fatalf("dot-product and its systolic-array lowering disagree: %v vs %v", dotShape, loweredShape)
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	bad1 := AccessSqueeze(Access(Tensor(a, []int64{4, 1}, analysis.DTypeF32), 0), 0) // dim 0 has size 4, not 1
	bad2 := AccessSlice(Access(Tensor(a, []int64{4, 1}, analysis.DTypeF32), 0), 0, 2, 1)
	term := ConstructTuple(bad1, bad2)

	err := Validate(term)
	if err == nil {
		t.Fatalf("Validate accepted a term with two independent violations")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("Validate reported %d errors, want 2: %v", n, err)
	}
}

func TestWellFormedAccessRejectsOutOfRangeAxis(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	term := Access(Tensor(a, []int64{4, 8}, analysis.DTypeF32), 5)
	if err := Validate(term); err == nil {
		t.Fatalf("Validate accepted access with out-of-range axis")
	}
}
