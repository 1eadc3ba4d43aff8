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

package interp

import (
	"math"
	"testing"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/symbol"
)

func mustEqual(t *testing.T, got, want TensorValue) {
	t.Helper()
	if len(got.Shape) != len(want.Shape) {
		t.Fatalf("shape = %v, want %v", got.Shape, want.Shape)
	}
	for i := range got.Shape {
		if got.Shape[i] != want.Shape[i] {
			t.Fatalf("shape = %v, want %v", got.Shape, want.Shape)
		}
	}
	if len(got.Data) != len(want.Data) {
		t.Fatalf("data length = %d, want %d", len(got.Data), len(want.Data))
	}
	for i := range got.Data {
		if math.Abs(got.Data[i]-want.Data[i]) > 1e-9 {
			t.Fatalf("data[%d] = %v, want %v (full got=%v want=%v)", i, got.Data[i], want.Data[i], got.Data, want.Data)
		}
	}
}

func TestInterpretElementwiseAdd(t *testing.T) {
	in := symbol.New()
	x, y := in.Intern("x"), in.Intern("y")
	env := Env{
		x: {Shape: []int64{3}, Data: []float64{1, 2, 3}},
		y: {Shape: []int64{3}, Data: []float64{10, 20, 30}},
	}
	ax := ir.Access(ir.Tensor(x, []int64{3}, analysis.DTypeF32), 0)
	ay := ir.Access(ir.Tensor(y, []int64{3}, analysis.DTypeF32), 0)
	term := ir.Compute(ir.OpElementwiseAdd, ir.AccessCartesianProduct(ax, ay))

	got, err := Interpret(term, env)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	mustEqual(t, got, TensorValue{Shape: []int64{3}, Data: []float64{11, 22, 33}})
}

func TestInterpretReduceSum(t *testing.T) {
	in := symbol.New()
	a := in.Intern("a")
	env := Env{a: {Shape: []int64{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}}

	access := ir.Access(ir.Tensor(a, []int64{2, 3}, analysis.DTypeF32), 1)
	term := ir.Compute(ir.OpReduceSum, access)

	got, err := Interpret(term, env)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	mustEqual(t, got, TensorValue{Shape: []int64{2}, Data: []float64{6, 15}})
}

func TestInterpretTransposeRoundTrips(t *testing.T) {
	in := symbol.New()
	a := in.Intern("a")
	env := Env{a: {Shape: []int64{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}}

	access := ir.Access(ir.Tensor(a, []int64{2, 3}, analysis.DTypeF32), 0)
	term := ir.AccessTranspose(ir.AccessTranspose(access, 1, 0), 1, 0)

	got, err := Interpret(term, env)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	mustEqual(t, got, TensorValue{Shape: []int64{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}})
}

// TestSystolicArrayMatchesDotProductLowering is the runtime half of
// scenario (a) in §8: the hand-written dot-product-over-cartesian-product
// chain and its systolic-array lowering must compute identical values,
// not merely identical shapes (already checked statically in
// ir.TestSystolicArrayLoweringShapesMatch).
func TestSystolicArrayMatchesDotProductLowering(t *testing.T) {
	in := symbol.New()
	a, b := in.Intern("a"), in.Intern("b")
	env := Env{
		a: {Shape: []int64{2, 4}, Data: []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		b: {Shape: []int64{4, 8}, Data: []float64{
			1, 0, 0, 0, 0, 0, 0, 0,
			0, 1, 0, 0, 0, 0, 0, 0,
			0, 0, 1, 0, 0, 0, 0, 0,
			0, 0, 0, 1, 0, 0, 0, 0,
		}},
	}
	accessA := ir.Access(ir.Tensor(a, []int64{2, 4}, analysis.DTypeF32), 1)
	accessB := ir.Access(ir.Tensor(b, []int64{4, 8}, analysis.DTypeF32), 0)

	dot := ir.Compute(ir.OpDotProduct, ir.AccessCartesianProduct(accessA, accessB))
	sys := ir.SystolicArray(4, 8, accessA, accessB)

	want := TensorValue{Shape: []int64{2, 8}, Data: []float64{
		1, 2, 3, 4, 0, 0, 0, 0,
		5, 6, 7, 8, 0, 0, 0, 0,
	}}

	gotDot, err := Interpret(dot, env)
	if err != nil {
		t.Fatalf("Interpret(dot-product chain): %v", err)
	}
	mustEqual(t, gotDot, want)

	gotSys, err := Interpret(sys, env)
	if err != nil {
		t.Fatalf("Interpret(systolic-array): %v", err)
	}
	mustEqual(t, gotSys, want)
}

func TestInterpretPadMinThenReduceMaxIgnoresPadding(t *testing.T) {
	in := symbol.New()
	a := in.Intern("a")
	env := Env{a: {Shape: []int64{3}, Data: []float64{1, 5, 2}}}

	access := ir.Access(ir.Tensor(a, []int64{3}, analysis.DTypeF32), 0)
	padded := ir.AccessPad(access, 0, ir.PadMin, 0, 2)
	term := ir.Compute(ir.OpReduceMax, padded)

	got, err := Interpret(term, env)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	mustEqual(t, got, TensorValue{Shape: []int64{}, Data: []float64{5}})
}
