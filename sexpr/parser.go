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
	"strconv"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/errs"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/symbol"
)

// Parse reads a single term from src. A bare identifier outside a
// parenthesised form is a parse error; tensor leaves are written as
// "(tensor name (shape ...) dtype)", with name interned via in. Print
// writes that form out in full so that parse(print(t)) is
// structurally equal to t (§8.5).
func Parse(src string, in *symbol.Interner) (*ir.Term, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, in: in}
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, errs.NewParseError(p.cur().pos, "end of input")
	}
	return t, nil
}

type parser struct {
	toks []lexToken
	pos  int
	in   *symbol.Interner
}

func (p *parser) cur() lexToken { return p.toks[p.pos] }
func (p *parser) advance()      { p.pos++ }

func (p *parser) expect(k tokenKind, what string) (lexToken, error) {
	if p.cur().kind != k {
		return lexToken{}, errs.NewParseError(p.cur().pos, what)
	}
	t := p.cur()
	p.advance()
	return t, nil
}

func (p *parser) parseTerm() (*ir.Term, error) {
	switch p.cur().kind {
	case tokNumber:
		n, _ := strconv.ParseInt(p.cur().text, 10, 64)
		p.advance()
		return ir.NumberLit(n), nil
	case tokLParen:
		return p.parseList()
	default:
		return nil, errs.NewParseError(p.cur().pos, "a number or '('")
	}
}

func (p *parser) parseInt() (int64, error) {
	t, err := p.expect(tokNumber, "an integer")
	if err != nil {
		return 0, err
	}
	n, _ := strconv.ParseInt(t.text, 10, 64)
	return n, nil
}

func (p *parser) parseIdent() (string, error) {
	t, err := p.expect(tokIdent, "an identifier")
	if err != nil {
		return "", err
	}
	return t.text, nil
}

// parseDims parses a "(shape n...)" or "(list n...)" sub-term and returns
// its literal dimensions.
func (p *parser) parseDims(headName string) ([]int64, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if name != headName {
		return nil, errs.NewParseError(p.cur().pos, headName)
	}
	var dims []int64
	for p.cur().kind == tokNumber {
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		dims = append(dims, n)
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return dims, nil
}

func (p *parser) parseList() (*ir.Term, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	headPos := p.cur().pos
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	head, ok := ir.HeadFromString(name)
	if !ok {
		return nil, errs.NewParseError(headPos, "a known operator head")
	}

	var term *ir.Term
	switch head {
	case ir.HeadShape, ir.HeadList:
		var dims []int64
		for p.cur().kind == tokNumber {
			n, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			dims = append(dims, n)
		}
		if head == ir.HeadShape {
			term = ir.Shape(dims...)
		} else {
			term = ir.List(dims...)
		}

	case ir.HeadTensor:
		symName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		shape, err := p.parseDims("shape")
		if err != nil {
			return nil, err
		}
		dtypeName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		dtype, ok := analysis.DTypeFromString(dtypeName)
		if !ok {
			return nil, errs.NewParseError(headPos, "a known dtype")
		}
		term = ir.Tensor(p.in.Intern(symName), shape, dtype)

	case ir.HeadAccess:
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.Access(t, axis)

	case ir.HeadAccessTranspose:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		perm, err := p.parseDims("list")
		if err != nil {
			return nil, err
		}
		term = ir.AccessTranspose(a, perm...)

	case ir.HeadAccessReshape:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		shape, err := p.parseDims("shape")
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.AccessReshape(a, axis, shape...)

	case ir.HeadAccessFlatten:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		term = ir.AccessFlatten(a)

	case ir.HeadAccessSlice:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		low, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		high, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.AccessSlice(a, axis, low, high)

	case ir.HeadAccessConcatenate:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		b, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.AccessConcatenate(a, b, axis)

	case ir.HeadAccessBroadcast:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		shape, err := p.parseDims("shape")
		if err != nil {
			return nil, err
		}
		term = ir.AccessBroadcast(a, shape...)

	case ir.HeadAccessInsertAxis:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.AccessInsertAxis(a, axis)

	case ir.HeadAccessSqueeze:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.AccessSqueeze(a, axis)

	case ir.HeadAccessPad:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		padName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		pad, ok := ir.PadTypeFromString(padName)
		if !ok {
			return nil, errs.NewParseError(headPos, "a known pad type")
		}
		before, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		after, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.AccessPad(a, axis, pad, before, after)

	case ir.HeadAccessWindows:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		filter, err := p.parseDims("shape")
		if err != nil {
			return nil, err
		}
		stride, err := p.parseDims("shape")
		if err != nil {
			return nil, err
		}
		term = ir.AccessWindows(a, filter, stride)

	case ir.HeadAccessCartesianProduct:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		b, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		term = ir.AccessCartesianProduct(a, b)

	case ir.HeadCompute:
		opName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		op, ok := ir.ComputeOpFromString(opName)
		if !ok {
			return nil, errs.NewParseError(headPos, "a known compute op")
		}
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		term = ir.Compute(op, a)

	case ir.HeadSystolicArray:
		rows, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		cols, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		b, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		term = ir.SystolicArray(rows, cols, a, b)

	case ir.HeadGetAccessShape:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		term = ir.GetAccessShape(a)

	case ir.HeadConstructTuple:
		var elems []*ir.Term
		for p.cur().kind != tokRParen {
			e, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		term = ir.ConstructTuple(elems...)

	case ir.HeadTupleGetItem:
		a, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		i, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		term = ir.TupleGetItem(a, i)

	default:
		return nil, errs.NewParseError(headPos, "a supported operator head")
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return term, nil
}
