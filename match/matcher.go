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
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/rewrite"
)

// Matcher compiles a pattern once and reuses the compiled Program across
// every class of every e-graph it is asked to search, amortising the
// compile cost the way the spec's "common subpatterns are memoised per
// iteration" note describes.
type Matcher struct {
	prog *Program
}

// NewMatcher compiles p.
func NewMatcher(p rewrite.Pattern) *Matcher {
	return &Matcher{prog: Compile(p)}
}

// SearchAll runs the compiled program against every live e-class in g and
// returns every match found. Per §4.F / §5, all matches are collected
// against a single snapshot of the graph before any rewrite is applied;
// callers must not mutate g while iterating the returned slice.
func (m *Matcher) SearchAll(g *egraph.EGraph) []Match {
	var out []Match
	g.Classes(func(id egraph.Id) {
		out = append(out, Run(g, m.prog, id)...)
	})
	return out
}
