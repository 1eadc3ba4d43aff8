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

package ir

import (
	"fmt"
	"strings"
)

// String is a debug rendering of t, not the canonical textual-IR form
// (that lives in package sexpr, which also has to know about a
// symbol.Interner to print tensor references by name).
func (t *Term) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	switch t.Head {
	case HeadNumberLit:
		fmt.Fprintf(b, "%d", t.Int)
		return
	case HeadTensor:
		fmt.Fprintf(b, "(tensor #%d %v %s)", t.Sym, t.Shape, t.DType)
		return
	}
	fmt.Fprintf(b, "(%s", headLabel(t.Data))
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

func headLabel(d Data) string {
	switch d.Head {
	case HeadCompute:
		return fmt.Sprintf("compute %s", d.Op)
	case HeadSystolicArray:
		return fmt.Sprintf("systolic-array %d %d", d.Rows, d.Cols)
	case HeadAccessPad:
		return fmt.Sprintf("access-pad %s", d.Pad)
	default:
		return d.Head.String()
	}
}
