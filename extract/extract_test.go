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

package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/symbol"
)

func TestExtractPicksCheaperTranspose(t *testing.T) {
	g := egraph.New()
	in := symbol.New()
	x := in.Intern("x")

	access := ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0)
	doubleTranspose := ir.AccessTranspose(ir.AccessTranspose(access, 1, 0), 1, 0)

	root, err := g.AddTerm(doubleTranspose)
	if err != nil {
		t.Fatalf("AddTerm: %v", err)
	}
	plain, err := g.AddTerm(access)
	if err != nil {
		t.Fatalf("AddTerm(access): %v", err)
	}
	g.Union(root, plain)
	g.Rebuild()

	ex := New[float64](g, DefaultCost{})
	term, err := ex.Extract(root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// The cheaper representative is exactly the plain access term, not
	// merely something rooted at HeadAccess.
	if diff := cmp.Diff(access, term); diff != "" {
		t.Fatalf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFailsWithoutTypedRepresentative(t *testing.T) {
	g := egraph.New()
	in := symbol.New()
	x := in.Intern("x")

	accessID := mustAdd(t, g, ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0))
	permAID := mustAdd(t, g, ir.List(1, 0))
	transposeID, err := g.Add(ir.Data{Head: ir.HeadAccessTranspose}, []egraph.Id{accessID, permAID})
	if err != nil {
		t.Fatalf("Add(access-transpose): %v", err)
	}
	permBID := mustAdd(t, g, ir.List(1, 1)) // not a permutation, but a well-typed ListType on its own

	// Merging the two distinct permutation lists poisons their shared
	// class's analysis to NotAType, which should propagate to the
	// access-transpose class that reads it as a child.
	g.Union(permAID, permBID)
	g.Rebuild()

	ex := New[float64](g, DefaultCost{})
	if _, err := ex.Extract(transposeID); err == nil {
		t.Fatalf("Extract succeeded on a class whose analysis should have become NotAType")
	}
}

func mustAdd(t *testing.T, g *egraph.EGraph, term *ir.Term) egraph.Id {
	t.Helper()
	id, err := g.AddTerm(term)
	if err != nil {
		t.Fatalf("AddTerm: %v", err)
	}
	return id
}
