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
	"fmt"
	"strconv"
	"strings"

	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/symbol"
)

// Print renders t as its canonical compact textual form (a single line,
// minimal whitespace): the inverse of Parse.
func Print(t *ir.Term, in *symbol.Interner) string {
	var b strings.Builder
	write(&b, t, in, -1, 0)
	return b.String()
}

// PrintIndented renders t as a multi-line, indented form for readable
// test-failure output (§ supplemented feature: pretty-printer dual
// modes). It parses back to the same term as the compact form; only
// whitespace differs.
func PrintIndented(t *ir.Term, in *symbol.Interner) string {
	var b strings.Builder
	write(&b, t, in, 0, 2)
	return b.String()
}

// write renders t into b. indent < 0 means "compact, no newlines";
// indent >= 0 is the current nesting depth for the indented form, and
// step is the number of spaces per level.
func write(b *strings.Builder, t *ir.Term, in *symbol.Interner, indent, step int) {
	if t.Head == ir.HeadNumberLit {
		b.WriteString(strconv.FormatInt(t.Int, 10))
		return
	}

	b.WriteByte('(')
	b.WriteString(t.Head.String())

	childDepth := indent + 1
	writeChild := func(c *ir.Term) {
		if indent >= 0 {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", childDepth*step))
			write(b, c, in, childDepth, step)
		} else {
			b.WriteByte(' ')
			write(b, c, in, -1, step)
		}
	}
	writeAtom := func(s string) {
		b.WriteByte(' ')
		b.WriteString(s)
	}

	switch t.Head {
	case ir.HeadShape, ir.HeadList:
		for _, c := range t.Children {
			writeAtom(strconv.FormatInt(c.Int, 10))
		}
	case ir.HeadTensor:
		writeAtom(in.String(t.Sym))
		writeAtom(shapeLiteral(t.Shape))
		writeAtom(t.DType.String())
	case ir.HeadAccess:
		writeChild(t.Children[0])
		writeAtom(strconv.FormatInt(t.Children[1].Int, 10))
	case ir.HeadAccessReshape:
		writeChild(t.Children[0])
		writeAtom(shapeTermLiteral(t.Children[1]))
		writeAtom(strconv.FormatInt(t.Children[2].Int, 10))
	case ir.HeadAccessTranspose:
		writeChild(t.Children[0])
		writeAtom(shapeTermLiteral(t.Children[1]))
	case ir.HeadAccessFlatten:
		writeChild(t.Children[0])
	case ir.HeadAccessSlice:
		writeChild(t.Children[0])
		writeAtom(strconv.FormatInt(t.Children[1].Int, 10))
		writeAtom(strconv.FormatInt(t.Children[2].Int, 10))
		writeAtom(strconv.FormatInt(t.Children[3].Int, 10))
	case ir.HeadAccessConcatenate:
		writeChild(t.Children[0])
		writeChild(t.Children[1])
		writeAtom(strconv.FormatInt(t.Children[2].Int, 10))
	case ir.HeadAccessBroadcast:
		writeChild(t.Children[0])
		writeAtom(shapeTermLiteral(t.Children[1]))
	case ir.HeadAccessInsertAxis, ir.HeadAccessSqueeze:
		writeChild(t.Children[0])
		writeAtom(strconv.FormatInt(t.Children[1].Int, 10))
	case ir.HeadAccessPad:
		writeChild(t.Children[0])
		writeAtom(strconv.FormatInt(t.Children[1].Int, 10))
		writeAtom(t.Pad.String())
		writeAtom(strconv.FormatInt(t.Children[2].Int, 10))
		writeAtom(strconv.FormatInt(t.Children[3].Int, 10))
	case ir.HeadAccessWindows:
		writeChild(t.Children[0])
		writeAtom(shapeTermLiteral(t.Children[1]))
		writeAtom(shapeTermLiteral(t.Children[2]))
	case ir.HeadAccessCartesianProduct:
		writeChild(t.Children[0])
		writeChild(t.Children[1])
	case ir.HeadCompute:
		writeAtom(t.Op.String())
		writeChild(t.Children[0])
	case ir.HeadSystolicArray:
		writeAtom(strconv.FormatInt(t.Rows, 10))
		writeAtom(strconv.FormatInt(t.Cols, 10))
		writeChild(t.Children[0])
		writeChild(t.Children[1])
	case ir.HeadGetAccessShape, ir.HeadTupleGetItem:
		writeChild(t.Children[0])
		if t.Head == ir.HeadTupleGetItem {
			writeAtom(strconv.FormatInt(t.Children[1].Int, 10))
		}
	case ir.HeadConstructTuple:
		for _, c := range t.Children {
			writeChild(c)
		}
	default:
		panic(fmt.Sprintf("sexpr: unprintable head %s", t.Head))
	}

	b.WriteByte(')')
}

func shapeLiteral(dims []int64) string {
	return dimsLiteral("shape", dims)
}

func shapeTermLiteral(t *ir.Term) string {
	dims := make([]int64, len(t.Children))
	for i, c := range t.Children {
		dims[i] = c.Int
	}
	return dimsLiteral(t.Head.String(), dims)
}

func dimsLiteral(head string, dims []int64) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.FormatInt(d, 10)
	}
	if len(parts) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(parts, " ") + ")"
}
