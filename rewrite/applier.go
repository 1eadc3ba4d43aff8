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
	"fmt"

	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
)

// Applier builds zero or more new e-nodes from a substitution and returns
// the e-class id that should be unioned with the match's root.
type Applier interface {
	Apply(g *egraph.EGraph, s Subst) (egraph.Id, error)
}

// ApplierFunc adapts a function to Applier, for rules whose right-hand
// side can't be expressed as a plain substitution template (e.g. the
// systolic-array lowering rule, which needs to read Rows/Cols off the
// matched shape rather than just rebuild a fixed pattern).
type ApplierFunc func(g *egraph.EGraph, s Subst) (egraph.Id, error)

// Apply implements Applier.
func (f ApplierFunc) Apply(g *egraph.EGraph, s Subst) (egraph.Id, error) { return f(g, s) }

// TemplateApplier rebuilds RHS by substituting PatVar bindings from s and
// re-adding every PatNode/PatLit as new e-nodes (hash-consing collapses
// any that already exist). This is the common case: a rule whose
// right-hand side is itself just a Pattern over the same variables as its
// left-hand side.
type TemplateApplier struct {
	RHS Pattern
}

// Apply implements Applier.
func (a TemplateApplier) Apply(g *egraph.EGraph, s Subst) (egraph.Id, error) {
	return Build(g, a.RHS, s)
}

// Build materialises pattern p into new e-nodes (or finds existing ones
// via hash-consing), substituting s for its pattern variables, and
// returns the resulting e-class id.
func Build(g *egraph.EGraph, p Pattern, s Subst) (egraph.Id, error) {
	switch p := p.(type) {
	case PatVar:
		id, ok := s[p.Name]
		if !ok {
			return 0, fmt.Errorf("rewrite: unbound pattern variable %q in applier", p.Name)
		}
		return id, nil
	case PatLit:
		return g.AddTerm(ir.NumberLit(p.Value))
	case PatNode:
		children := make([]egraph.Id, len(p.Children))
		for i, c := range p.Children {
			id, err := Build(g, c, s)
			if err != nil {
				return 0, err
			}
			children[i] = id
		}
		data := ir.Data{Head: p.Head, Op: p.Op, Rows: p.Rows, Cols: p.Cols, Pad: p.Pad}
		return g.Add(data, children)
	default:
		return 0, fmt.Errorf("rewrite: unknown pattern variant %T", p)
	}
}
