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

package egraph

import (
	"fmt"

	"github.com/erkska/glenside/errs"
)

// CheckInvariants re-derives the hash-cons from the live classes and
// compares it against g.hashcons, and checks that congruent e-nodes (equal
// head, pairwise find-equal children) live in the same class. It is meant
// for use in tests, after a Rebuild, not on the hot path.
func (g *EGraph) CheckInvariants() error {
	derived := make(map[string]Id)
	for id, cls := range g.classes {
		for _, n := range cls.Nodes {
			for _, c := range n.Children {
				if g.Find(c) != c {
					return errs.NewInternalInvariantViolation(fmt.Sprintf("e-node child %d is not canonical", c))
				}
			}
			key := n.key()
			if other, ok := derived[key]; ok && other != id {
				return errs.NewInternalInvariantViolation(fmt.Sprintf("hash-cons is not a bijection: %q maps to both class %d and %d", key, other, id))
			}
			derived[key] = id
		}
	}
	if len(derived) != len(g.hashcons) {
		return errs.NewInternalInvariantViolation(fmt.Sprintf("hash-cons size %d does not match live node count %d", len(g.hashcons), len(derived)))
	}
	for key, id := range derived {
		stored, ok := g.hashcons[key]
		if !ok || g.Find(stored) != g.Find(id) {
			return errs.NewInternalInvariantViolation(fmt.Sprintf("hash-cons entry for %q is stale", key))
		}
	}
	return nil
}
