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

package rewrite

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/symbol"
)

// TestPatternConstructorsBuildExpectedShape checks that the Node/Compute
// shorthands assemble exactly the PatNode tree a hand-written pattern
// literal would, via a structural diff rather than field-by-field
// assertions.
func TestPatternConstructorsBuildExpectedShape(t *testing.T) {
	got := Compute(ir.OpElementwiseAdd, Node(ir.HeadAccessCartesianProduct, Var("x"), Var("y")))
	want := PatNode{
		Head: ir.HeadCompute,
		Op:   ir.OpElementwiseAdd,
		Children: []Pattern{
			PatNode{
				Head:     ir.HeadAccessCartesianProduct,
				Children: []Pattern{PatVar{Name: "x"}, PatVar{Name: "y"}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pattern shape mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildSubstitutesVarsAndHashConses checks that Build rebuilds a
// template pattern against a substitution, and that hash-consing makes
// building the same shape twice return the same e-class id rather than a
// fresh duplicate.
func TestBuildSubstitutesVarsAndHashConses(t *testing.T) {
	in := symbol.New()
	a := ir.Access(ir.Tensor(in.Intern("A"), []int64{3}, analysis.DTypeF32), 0)
	b := ir.Access(ir.Tensor(in.Intern("B"), []int64{3}, analysis.DTypeF32), 0)

	g := egraph.New()
	idA, err := g.AddTerm(a)
	if err != nil {
		t.Fatalf("AddTerm(a): %v", err)
	}
	idB, err := g.AddTerm(b)
	if err != nil {
		t.Fatalf("AddTerm(b): %v", err)
	}

	s := Subst{"x": idA, "y": idB}
	pat := Compute(ir.OpElementwiseAdd, Node(ir.HeadAccessCartesianProduct, Var("x"), Var("y")))

	first, err := Build(g, pat, s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	nodesAfterFirst := g.NumNodes()

	second, err := Build(g, pat, s)
	if err != nil {
		t.Fatalf("Build (second): %v", err)
	}
	// Build must not mutate the substitution it was given.
	if diff := cmp.Diff(Subst{"x": idA, "y": idB}, s); diff != "" {
		t.Fatalf("Build mutated its substitution (-want +got):\n%s", diff)
	}
	if first != second {
		t.Fatalf("Build produced two different classes for the same shape: %v != %v", first, second)
	}
	if g.NumNodes() != nodesAfterFirst {
		t.Fatalf("second Build of an identical shape added new nodes: %d != %d", g.NumNodes(), nodesAfterFirst)
	}
}

// TestBuildRejectsUnboundVar checks that a pattern variable missing from
// the substitution produces an error rather than panicking or silently
// zero-valuing the id.
func TestBuildRejectsUnboundVar(t *testing.T) {
	g := egraph.New()
	_, err := Build(g, Var("missing"), Subst{})
	if err == nil {
		t.Fatalf("Build with an unbound variable succeeded, want an error")
	}
}

// TestGuardCombinators checks And/Or/Not short-circuiting and negation.
func TestGuardCombinators(t *testing.T) {
	g := egraph.New()
	s := Subst{}
	trueGuard := func(*egraph.EGraph, Subst) bool { return true }
	falseGuard := func(*egraph.EGraph, Subst) bool { return false }

	if !And(trueGuard, trueGuard)(g, s) {
		t.Fatalf("And(true, true) = false, want true")
	}
	if And(trueGuard, falseGuard)(g, s) {
		t.Fatalf("And(true, false) = true, want false")
	}
	if !Or(falseGuard, trueGuard)(g, s) {
		t.Fatalf("Or(false, true) = false, want true")
	}
	if Or(falseGuard, falseGuard)(g, s) {
		t.Fatalf("Or(false, false) = true, want false")
	}
	if Not(trueGuard)(g, s) {
		t.Fatalf("Not(true) = true, want false")
	}
	if !Not(falseGuard)(g, s) {
		t.Fatalf("Not(false) = false, want true")
	}
}

// TestRewriteBuildsTemplateApplier checks that Rewrite wires a
// TemplateApplier whose Apply is equivalent to calling Build directly.
func TestRewriteBuildsTemplateApplier(t *testing.T) {
	in := symbol.New()
	a := ir.Access(ir.Tensor(in.Intern("A"), []int64{3}, analysis.DTypeF32), 0)
	g := egraph.New()
	idA, err := g.AddTerm(a)
	if err != nil {
		t.Fatalf("AddTerm: %v", err)
	}

	rule := Rewrite("identity", Var("x"), Var("x"))
	s := Subst{"x": idA}
	got, err := rule.Applier.Apply(g, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != idA {
		t.Fatalf("Apply = %v, want %v", got, idA)
	}
	if rule.Guard != nil {
		t.Fatalf("Rewrite must build an unconditional rule, got a non-nil Guard")
	}
}
