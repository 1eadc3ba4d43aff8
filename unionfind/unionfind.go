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

// Package unionfind is a disjoint-set structure with union-by-rank and path
// compression, giving amortised O(α(n)) Find and Union. The e-graph uses it
// as the sole "reference" structure between e-classes: an e-class id is
// canonicalised by calling Find on read, never stored pre-canonicalised.
package unionfind

// Id identifies an element of the disjoint-set structure.
type Id uint32

// UnionFind is a disjoint-set forest over a dense range of Ids allocated by
// MakeSet. The zero value is ready to use.
type UnionFind struct {
	parent []Id
	rank   []uint8
}

// MakeSet allocates a new singleton set and returns its Id.
func (uf *UnionFind) MakeSet() Id {
	id := Id(len(uf.parent))
	uf.parent = append(uf.parent, id)
	uf.rank = append(uf.rank, 0)
	return id
}

// Find returns the canonical Id of the set containing id, compressing the
// path from id to the root as it walks.
func (uf *UnionFind) Find(id Id) Id {
	root := id
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[id] != root {
		next := uf.parent[id]
		uf.parent[id] = root
		id = next
	}
	return root
}

// Union merges the sets containing a and b, returning the new root and
// whether the two were previously in different sets. When a and b are
// already in the same set, Union is a no-op and returns (that root, false).
func (uf *UnionFind) Union(a, b Id) (Id, bool) {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return ra, false
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
	return ra, true
}

// Len returns the number of elements ever allocated with MakeSet (not the
// number of distinct sets remaining).
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}
