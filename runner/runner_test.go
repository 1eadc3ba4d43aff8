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

package runner

import (
	"context"
	"testing"

	"github.com/erkska/glenside/analysis"
	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/ir"
	"github.com/erkska/glenside/rewrite"
	"github.com/erkska/glenside/symbol"
)

// unguardedCommute is deliberately NOT bounded by an Ordered-style guard
// (unlike package rules' Commute): it is used here to exercise the
// runner's own budget/ban machinery in isolation from rules' explosion
// guards, which are a separate concern (component J).
func unguardedCommute(op ir.ComputeOp) rewrite.Rule {
	lhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("b"), rewrite.Var("a")))
	return rewrite.Rewrite("commute-"+op.String(), lhs, rhs)
}

// associateLeft/associateRight mirror package rules' AC-explosion rules
// without importing it, so this package's tests stand on their own.
func associateLeft(op ir.ComputeOp) rewrite.Rule {
	inner := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	lhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, inner, rewrite.Var("c")))
	innerRHS := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("b"), rewrite.Var("c")))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), innerRHS))
	return rewrite.Rewrite("associate-left-"+op.String(), lhs, rhs)
}

func associateRight(op ir.ComputeOp) rewrite.Rule {
	innerLHS := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("b"), rewrite.Var("c")))
	lhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), innerLHS))
	innerRHS := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, rewrite.Var("a"), rewrite.Var("b")))
	rhs := rewrite.Compute(op, rewrite.Node(ir.HeadAccessCartesianProduct, innerRHS, rewrite.Var("c")))
	return rewrite.Rewrite("associate-right-"+op.String(), lhs, rhs)
}

func addChain(in *symbol.Interner, names ...string) *ir.Term {
	access := func(name string) *ir.Term {
		return ir.Access(ir.Tensor(in.Intern(name), []int64{3}, analysis.DTypeF32), 0)
	}
	term := access(names[0])
	for _, name := range names[1:] {
		term = ir.Compute(ir.OpElementwiseAdd, ir.AccessCartesianProduct(term, access(name)))
	}
	return term
}

// TestRunTripsNodeLimit is scenario (e): with a node_limit on a term
// known to expand past it under unbounded associativity, Run returns
// StopReason NodeLimit and the e-graph ends up no more than a small
// slack past the ceiling (the overshoot possible within one iteration's
// batch of applies, checked only at iteration boundaries).
func TestRunTripsNodeLimit(t *testing.T) {
	in := symbol.New()
	term := addChain(in, "a", "b", "c", "d", "e", "f")

	g := egraph.New()
	if _, err := g.AddTerm(term); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}

	const nodeLimit = 500
	run := New([]rewrite.Rule{
		associateLeft(ir.OpElementwiseAdd),
		associateRight(ir.OpElementwiseAdd),
		unguardedCommute(ir.OpElementwiseAdd),
	}, Config{NodeLimit: nodeLimit})

	reason := run.Run(context.Background(), g)
	if reason != NodeLimit {
		t.Fatalf("StopReason = %v, want NodeLimit", reason)
	}
	const slack = 5000
	if g.NumNodes() > nodeLimit+slack {
		t.Fatalf("e-graph grew to %d nodes, want <= %d", g.NumNodes(), nodeLimit+slack)
	}
	if run.Stats.NodesAtStop != g.NumNodes() {
		t.Fatalf("Stats.NodesAtStop = %d, want %d", run.Stats.NodesAtStop, g.NumNodes())
	}
}

// TestRunRespectsIterLimit checks the IterLimit budget with NodeLimit
// left at zero (unbounded): whichever way the run ends, it never runs
// more iterations than IterLimit allows.
func TestRunRespectsIterLimit(t *testing.T) {
	in := symbol.New()
	term := addChain(in, "a", "b")

	g := egraph.New()
	if _, err := g.AddTerm(term); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}

	run := New([]rewrite.Rule{unguardedCommute(ir.OpElementwiseAdd)}, Config{IterLimit: 4})
	reason := run.Run(context.Background(), g)

	// A single pair saturates after the first swap (the class already
	// contains both representatives, so further search finds no new
	// union): accept either outcome, but the iteration count must never
	// exceed IterLimit.
	if reason != Saturated && reason != IterLimit {
		t.Fatalf("StopReason = %v, want Saturated or IterLimit", reason)
	}
	if run.Stats.Iterations > 4 {
		t.Fatalf("Iterations = %d, want <= 4", run.Stats.Iterations)
	}
}

// TestRunCancelledContextStopsPromptly checks that an already-cancelled
// context is observed at the very first iteration boundary.
func TestRunCancelledContextStopsPromptly(t *testing.T) {
	in := symbol.New()
	term := addChain(in, "a", "b")
	g := egraph.New()
	if _, err := g.AddTerm(term); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := New([]rewrite.Rule{unguardedCommute(ir.OpElementwiseAdd)}, Config{IterLimit: 100})
	reason := run.Run(ctx, g)
	if reason != Cancelled {
		t.Fatalf("StopReason = %v, want Cancelled", reason)
	}
	if run.Stats.Iterations != 0 {
		t.Fatalf("Iterations = %d, want 0 (cancelled before the first iteration ran)", run.Stats.Iterations)
	}
}

// TestRunBansRuleExceedingMatchLimit is scenario (f): a single
// commutativity rule over many independent elementwise-add pairs
// produces far more matches in one iteration than MatchLimit allows, so
// it must be in the banned set by the time three iterations have run.
func TestRunBansRuleExceedingMatchLimit(t *testing.T) {
	in := symbol.New()

	var pairs []*ir.Term
	for i := 0; i < 15; i++ {
		nameA := string(rune('a' + i))
		nameB := string(rune('A' + i))
		pairs = append(pairs, addChain(in, nameA, nameB))
	}
	term := ir.ConstructTuple(pairs...)

	g := egraph.New()
	if _, err := g.AddTerm(term); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}

	rule := unguardedCommute(ir.OpElementwiseAdd)
	run := New([]rewrite.Rule{rule}, Config{IterLimit: 3, MatchLimit: 10, BanLength: 2})
	_ = run.Run(context.Background(), g)

	if run.Stats.Bans == 0 {
		t.Fatalf("expected the commute rule to trip MatchLimit at least once")
	}
	if !run.scheduler.Banned(rule.Name, 2) {
		t.Fatalf("rule %q not banned as of iteration 2 (after 3 iterations)", rule.Name)
	}
}

// TestBackoffSchedulerDoublesBanLength is a focused unit test of the
// scheduler's exponential back-off, independent of Runner: each
// successive ban of the same rule name doubles the ban's length.
func TestBackoffSchedulerDoublesBanLength(t *testing.T) {
	s := NewBackoffScheduler(2)

	s.Ban("r", 0)
	if !s.Banned("r", 1) || !s.Banned("r", 2) {
		t.Fatalf("expected r banned through iteration 2 after first ban")
	}
	if s.Banned("r", 3) {
		t.Fatalf("expected r unbanned at iteration 3 after first ban")
	}

	s.Ban("r", 5)
	if !s.Banned("r", 9) {
		t.Fatalf("expected r banned through iteration 9 after doubled ban")
	}
	if s.Banned("r", 10) {
		t.Fatalf("expected r unbanned at iteration 10 after doubled ban")
	}
}

// TestBackoffSchedulerTracksRulesIndependently checks that banning one
// rule name never affects another's state.
func TestBackoffSchedulerTracksRulesIndependently(t *testing.T) {
	s := NewBackoffScheduler(1)
	s.Ban("x", 0)
	if s.Banned("y", 0) || s.Banned("y", 1) {
		t.Fatalf("banning x must not ban y")
	}
}
