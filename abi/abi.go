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

// Package abi documents the interface a code generator needs from an
// extracted term; the generator itself (the concrete C emitter) is an
// external collaborator and explicitly out of scope (§1). This package
// exists so that interface is a compilable contract rather than only a
// paragraph of prose: Lower walks an extracted term and reports the
// sequence of Call values the generator would need to emit, without
// emitting any C itself.
package abi

import (
	"fmt"

	"github.com/erkska/glenside/ir"
)

// CallKind distinguishes the two shapes of emitted call §6 describes:
// a fixed hardware atom invocation, or a loop nest over a structural
// node's statically known dimensions.
type CallKind uint8

const (
	// SystolicArrayCall corresponds to one
	// rtml_systolic_array_weight_stationary_fp32(R, C, out, act, wts) call.
	SystolicArrayCall CallKind = iota
	// LoopNestCall corresponds to a loop nest over a structural node's
	// statically known output dimensions (transpose, reshape, slice, ...).
	LoopNestCall
)

func (k CallKind) String() string {
	switch k {
	case SystolicArrayCall:
		return "systolic-array-call"
	case LoopNestCall:
		return "loop-nest"
	default:
		return "unknown"
	}
}

// Call is one unit of the generator's output: either a hardware atom
// invocation or a loop nest over a structural op, plus enough of the
// extracted node's payload for the generator to print it. The ABI is
// bit-exact up to floating-point associativity (§6); Lower does not
// itself perform or verify any arithmetic, it only describes the shape
// of what the generator must emit.
type Call struct {
	Kind CallKind

	// Rows and Cols are set iff Kind == SystolicArrayCall: the call is
	// rtml_systolic_array_weight_stationary_fp32(Rows, Cols, out, act, wts).
	Rows, Cols int64

	// Head and OutputShape are set iff Kind == LoopNestCall: Head names
	// the structural op (e.g. access-transpose), and OutputShape is the
	// statically known shape the generated loop nest ranges over.
	Head        ir.Head
	OutputShape []int64
}

func (c Call) String() string {
	switch c.Kind {
	case SystolicArrayCall:
		return fmt.Sprintf("rtml_systolic_array_weight_stationary_fp32(%d, %d, out, act, wts)", c.Rows, c.Cols)
	default:
		return fmt.Sprintf("loop-nest(%s, shape=%v)", c.Head, c.OutputShape)
	}
}

// Lower walks an extracted term bottom-up and returns the sequence of
// Calls a generator would emit, in evaluation order (operands before
// their parent). It performs no codegen itself: a real generator
// consumes this sequence to print C against the ABI in §6.
func Lower(t *ir.Term, shapeOf func(*ir.Term) ([]int64, error)) ([]Call, error) {
	var calls []Call
	var walk func(*ir.Term) error
	walk = func(n *ir.Term) error {
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		switch n.Head {
		case ir.HeadNumberLit, ir.HeadShape, ir.HeadList, ir.HeadTensor:
			return nil // leaves emit no call of their own
		case ir.HeadSystolicArray:
			calls = append(calls, Call{Kind: SystolicArrayCall, Rows: n.Rows, Cols: n.Cols})
			return nil
		default:
			shape, err := shapeOf(n)
			if err != nil {
				return err
			}
			calls = append(calls, Call{Kind: LoopNestCall, Head: n.Head, OutputShape: shape})
			return nil
		}
	}
	if err := walk(t); err != nil {
		return nil, err
	}
	return calls, nil
}
