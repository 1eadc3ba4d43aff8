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

package unionfind

import "testing"

func TestUnionFindBasic(t *testing.T) {
	var uf UnionFind
	a := uf.MakeSet()
	b := uf.MakeSet()
	c := uf.MakeSet()

	if uf.Find(a) != a || uf.Find(b) != b || uf.Find(c) != c {
		t.Fatalf("fresh sets should be their own roots")
	}

	root, changed := uf.Union(a, b)
	if !changed {
		t.Fatalf("Union(a, b) on disjoint sets should report changed")
	}
	if uf.Find(a) != root || uf.Find(b) != root {
		t.Fatalf("a and b should share a canonical id after union")
	}
	if uf.Find(c) == root {
		t.Fatalf("c should remain disjoint from {a, b}")
	}

	_, changed = uf.Union(a, b)
	if changed {
		t.Fatalf("re-union of already-merged sets should report unchanged")
	}

	root2, changed := uf.Union(b, c)
	if !changed {
		t.Fatalf("Union(b, c) should report changed")
	}
	if uf.Find(a) != root2 || uf.Find(b) != root2 || uf.Find(c) != root2 {
		t.Fatalf("a, b, c should all share one canonical id")
	}
}

func TestUnionFindPathCompression(t *testing.T) {
	var uf UnionFind
	ids := make([]Id, 8)
	for i := range ids {
		ids[i] = uf.MakeSet()
	}
	for i := 1; i < len(ids); i++ {
		uf.Union(ids[0], ids[i])
	}
	root := uf.Find(ids[0])
	for _, id := range ids {
		if uf.Find(id) != root {
			t.Fatalf("element %d not merged into root set", id)
		}
	}
}
