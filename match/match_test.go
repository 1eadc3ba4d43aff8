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

package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/rewrite"
	"github.com/erkska/glenside/symbol"
)

func TestSearchAllFindsTransposeOfTranspose(t *testing.T) {
	g := egraph.New()
	in := symbol.New()
	x := in.Intern("x")

	term := ir.AccessTranspose(
		ir.AccessTranspose(ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0), 1, 0),
		1, 0)
	root, err := g.AddTerm(term)
	if err != nil {
		t.Fatalf("AddTerm: %v", err)
	}

	pat := rewrite.Node(ir.HeadAccessTranspose,
		rewrite.Node(ir.HeadAccessTranspose, rewrite.Var("a"), rewrite.Var("perm")),
		rewrite.Var("perm2"))
	m := NewMatcher(pat)
	matches := m.SearchAll(g)

	found := false
	for _, mm := range matches {
		if g.Find(mm.Root) == g.Find(root) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a match at the root class, got %d matches: %+v", len(matches), matches)
	}
}

func TestSearchAllEnforcesNonLinearCompare(t *testing.T) {
	g := egraph.New()
	in := symbol.New()
	x, y := in.Intern("x"), in.Intern("y")

	same := ir.AccessConcatenate(
		ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0),
		ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0), 0)
	_, err := g.AddTerm(same)
	if err != nil {
		t.Fatalf("AddTerm(same): %v", err)
	}

	different := ir.AccessConcatenate(
		ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0),
		ir.Access(ir.Tensor(y, []int64{4, 8}, analysis.DTypeF32), 0), 0)
	_, err = g.AddTerm(different)
	if err != nil {
		t.Fatalf("AddTerm(different): %v", err)
	}

	pat := rewrite.Node(ir.HeadAccessConcatenate, rewrite.Var("a"), rewrite.Var("a"), rewrite.Var("axis"))
	m := NewMatcher(pat)
	matches := m.SearchAll(g)
	if len(matches) != 1 {
		t.Fatalf("SearchAll() = %d matches, want exactly 1 (only the self-concatenation)", len(matches))
	}

	wantA, err := g.AddTerm(ir.Access(ir.Tensor(x, []int64{4, 8}, analysis.DTypeF32), 0))
	if err != nil {
		t.Fatalf("AddTerm(wantA): %v", err)
	}
	wantAxis, err := g.AddTerm(ir.NumberLit(0))
	if err != nil {
		t.Fatalf("AddTerm(wantAxis): %v", err)
	}
	want := rewrite.Subst{"a": g.Find(wantA), "axis": g.Find(wantAxis)}
	got := rewrite.Subst{"a": g.Find(matches[0].Subst["a"]), "axis": g.Find(matches[0].Subst["axis"])}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("match substitution mismatch (-want +got):\n%s", diff)
	}
}
