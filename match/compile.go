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

// Package match is component F: e-matching. A rewrite.Pattern is compiled
// once, ahead of time, to a flat array of VM instructions over a register
// file of e-class ids; Program.Run then walks that array once per
// candidate e-class instead of recursing through the pattern tree,
// per the "recursion-heavy matchers become VMs" design note.
package match

import (
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/rewrite"
)

type opcode uint8

const (
	// opBind captures the class currently held in Reg under Var.
	opBind opcode = iota
	// opCheckNode requires Reg's class to contain an e-node with Head
	// (and, for parametric heads, the given payload) and Arity children;
	// on each such e-node it descends, loading the node's children into
	// ChildRegs before continuing.
	opCheckNode
	// opCheckLit requires Reg's class to contain a NumberLit e-node equal
	// to Value.
	opCheckLit
	// opCompare requires RegA and RegB to denote the same canonical class,
	// enforcing a non-linear pattern (a repeated variable).
	opCompare
	// opYield emits the current substitution.
	opYield
)

type instr struct {
	op opcode

	// opBind
	Var string
	Reg int

	// opCheckNode
	Head      ir.Head
	Op        ir.ComputeOp
	Rows      int64
	Cols      int64
	Pad       ir.PadType
	Arity     int
	ChildRegs []int

	// opCheckLit
	Value int64

	// opCompare
	RegA int
	RegB int
}

// Program is a compiled rewrite.Pattern: a flat instruction array plus
// the number of registers it needs.
type Program struct {
	instrs  []instr
	numRegs int
}

// Compile lowers p into a Program. Register 0 always holds the class the
// whole pattern is matched against.
func Compile(p rewrite.Pattern) *Program {
	c := &compiler{varReg: make(map[string]int), numRegs: 1}
	c.compile(p, 0)
	c.instrs = append(c.instrs, instr{op: opYield})
	return &Program{instrs: c.instrs, numRegs: c.numRegs}
}

type compiler struct {
	instrs  []instr
	numRegs int
	varReg  map[string]int
}

func (c *compiler) compile(p rewrite.Pattern, reg int) {
	switch p := p.(type) {
	case rewrite.PatVar:
		if existing, ok := c.varReg[p.Name]; ok {
			c.instrs = append(c.instrs, instr{op: opCompare, RegA: reg, RegB: existing})
			return
		}
		c.varReg[p.Name] = reg
		c.instrs = append(c.instrs, instr{op: opBind, Var: p.Name, Reg: reg})

	case rewrite.PatLit:
		c.instrs = append(c.instrs, instr{op: opCheckLit, Reg: reg, Value: p.Value})

	case rewrite.PatNode:
		childRegs := make([]int, len(p.Children))
		for i := range p.Children {
			childRegs[i] = c.numRegs
			c.numRegs++
		}
		c.instrs = append(c.instrs, instr{
			op:        opCheckNode,
			Reg:       reg,
			Head:      p.Head,
			Op:        p.Op,
			Rows:      p.Rows,
			Cols:      p.Cols,
			Pad:       p.Pad,
			Arity:     len(p.Children),
			ChildRegs: childRegs,
		})
		for i, child := range p.Children {
			c.compile(child, childRegs[i])
		}

	default:
		panic("match: unknown pattern variant")
	}
}
