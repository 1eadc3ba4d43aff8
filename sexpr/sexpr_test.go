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

package sexpr

import (
	"testing"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/symbol"
)

func TestParsePrintRoundTrip(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	b := in.Intern("B")

	terms := []*ir.Term{
		ir.NumberLit(42),
		ir.Tensor(a, []int64{4, 16}, analysis.DTypeF32),
		ir.AccessTranspose(ir.AccessTranspose(ir.Access(ir.Tensor(a, []int64{2, 3}, analysis.DTypeF32), 0), 1, 0), 1, 0),
		ir.Compute(ir.OpDotProduct, ir.AccessCartesianProduct(
			ir.Access(ir.Tensor(a, []int64{4, 16}, analysis.DTypeF32), 1),
			ir.Access(ir.Tensor(b, []int64{16, 32}, analysis.DTypeF32), 0),
		)),
		ir.SystolicArray(16, 32,
			ir.Access(ir.Tensor(a, []int64{4, 16}, analysis.DTypeF32), 1),
			ir.Access(ir.Tensor(b, []int64{16, 32}, analysis.DTypeF32), 0)),
		ir.AccessPad(ir.Access(ir.Tensor(a, []int64{3}, analysis.DTypeF32), 0), 0, ir.PadMin, 0, 2),
		ir.AccessWindows(ir.Access(ir.Tensor(a, []int64{8}, analysis.DTypeF32), 0), []int64{2}, []int64{2}),
		ir.ConstructTuple(ir.NumberLit(1), ir.NumberLit(2)),
		ir.TupleGetItem(ir.ConstructTuple(ir.NumberLit(1), ir.NumberLit(2)), 0),
	}

	for _, term := range terms {
		printed := Print(term, in)
		parsed, err := Parse(printed, in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", printed, err)
		}
		if !parsed.Equal(term) {
			t.Fatalf("round trip mismatch:\n printed: %s\n reparsed: %s\n want:     %s", printed, Print(parsed, in), printed)
		}
		if reprinted := Print(parsed, in); reprinted != printed {
			t.Fatalf("print(parse(print(t))) != print(t):\n got:  %s\n want: %s", reprinted, printed)
		}
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	in := symbol.New()
	cases := []string{
		"(access",
		"(not-a-head 1)",
		"()",
		"(access 1 2) extra",
	}
	for _, c := range cases {
		if _, err := Parse(c, in); err == nil {
			t.Errorf("Parse(%q) succeeded, want an error", c)
		}
	}
}

func TestPrintIndentedStillParses(t *testing.T) {
	in := symbol.New()
	a := in.Intern("A")
	term := ir.Compute(ir.OpReduceSum, ir.Access(ir.Tensor(a, []int64{2, 3}, analysis.DTypeF32), 1))

	indented := PrintIndented(term, in)
	parsed, err := Parse(indented, in)
	if err != nil {
		t.Fatalf("Parse(indented): %v", err)
	}
	if !parsed.Equal(term) {
		t.Fatalf("indented round trip mismatch: got %s, want equivalent of %s", Print(parsed, in), Print(term, in))
	}
}
