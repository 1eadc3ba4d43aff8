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
	"strings"

	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/unionfind"
)

// Id identifies an e-class. It is a thin alias over unionfind.Id: an
// e-class's identity is exactly its position in the union-find forest.
type Id = unionfind.Id

// ENode is a node whose children are canonical e-class ids, as opposed to
// ir.Term whose children are boxed subterms. Hash-consing and congruence
// closure are both defined over ENode equality.
type ENode struct {
	ir.Data
	Children []Id
}

// key renders the (head, canonical children) tuple that hash-consing and
// congruence are keyed on. This mirrors the self-digest-plus-input-eq-ids
// digest the dagger build cache computes for its own e-graph
// (calcEgraphTermDigest); we don't carry a content-addressing digest
// library in this module, so the key is just a delimited string rather
// than a cryptographic hash.
func (n ENode) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\x00%d\x00%d\x00%v\x00%d\x00%d\x00%d\x00%d\x00%d",
		n.Head, n.Int, n.Sym, n.Shape, n.DType, n.Op, n.Rows, n.Cols, n.Pad)
	for _, c := range n.Children {
		b.WriteByte('\x00')
		fmt.Fprintf(&b, "%d", c)
	}
	return b.String()
}

// Arity returns the number of children.
func (n ENode) Arity() int { return len(n.Children) }
