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
	"time"

	"github.com/erkska/glenside/egraph"
	"github.com/erkska/glenside/match"
	"github.com/erkska/glenside/rewrite"
)

// Runner alternates search/apply/rebuild over an e-graph under a fixed
// rule set until it saturates or a budget in Config trips. A Runner may
// be reused across multiple Run calls against different e-graphs; it
// holds no per-graph state itself (the rule set's compiled matchers are
// the only thing cached, and compiling is pure).
type Runner struct {
	rules     []rewrite.Rule
	matchers  []*match.Matcher
	cfg       Config
	scheduler *BackoffScheduler
	Stats     Stats
}

// New builds a Runner for rules under cfg. Rules are matched and applied
// in the order given, per iteration, for determinism (§5).
func New(rules []rewrite.Rule, cfg Config) *Runner {
	matchers := make([]*match.Matcher, len(rules))
	for i, r := range rules {
		matchers[i] = match.NewMatcher(r.LHS)
	}
	return &Runner{
		rules:     rules,
		matchers:  matchers,
		cfg:       cfg,
		scheduler: NewBackoffScheduler(cfg.BanLength),
	}
}

type pending struct {
	ruleIdx int
	m       match.Match
}

// Run drives g to saturation or a budget, returning the reason it
// stopped. ctx is polled once per iteration boundary (§5): a cancelled
// ctx yields Cancelled rather than a propagated error, since budget
// exhaustion is not itself an error (§7).
func (r *Runner) Run(ctx context.Context, g *egraph.EGraph) StopReason {
	start := time.Now()
	r.Stats = Stats{}
	r.scheduler = NewBackoffScheduler(r.cfg.BanLength)

	for iter := 0; r.cfg.IterLimit == 0 || iter < r.cfg.IterLimit; iter++ {
		if err := ctx.Err(); err != nil {
			return r.finish(g, Cancelled)
		}
		if r.cfg.TimeLimit > 0 && time.Since(start) > r.cfg.TimeLimit {
			return r.finish(g, TimeLimit)
		}
		if r.cfg.NodeLimit > 0 && g.NumNodes() >= r.cfg.NodeLimit {
			return r.finish(g, NodeLimit)
		}

		var pendingApplies []pending
		for i, m := range r.matchers {
			name := r.rules[i].Name
			if r.scheduler.Banned(name, iter) {
				continue
			}
			matches := m.SearchAll(g)
			if r.cfg.MatchLimit > 0 && len(matches) > r.cfg.MatchLimit {
				r.scheduler.Ban(name, iter)
				r.Stats.Bans++
				continue
			}
			r.Stats.MatchesTot += len(matches)
			for _, mm := range matches {
				pendingApplies = append(pendingApplies, pending{ruleIdx: i, m: mm})
			}
		}

		nodesBefore, classesBefore := g.NumNodes(), g.NumClasses()
		anyUnion := false
		for _, p := range pendingApplies {
			rule := r.rules[p.ruleIdx]
			if rule.Guard != nil && !rule.Guard(g, p.m.Subst) {
				continue
			}
			newID, err := rule.Applier.Apply(g, p.m.Subst)
			if err != nil {
				continue // ill-typed application: the rule simply doesn't fire here (§7).
			}
			r.Stats.AppliesTot++
			if _, changed := g.Union(p.m.Root, newID); changed {
				anyUnion = true
				r.Stats.UnionsTot++
			}
		}
		g.Rebuild()
		r.Stats.Iterations++

		if !anyUnion && g.NumNodes() == nodesBefore && g.NumClasses() == classesBefore {
			return r.finish(g, Saturated)
		}
	}
	return r.finish(g, IterLimit)
}

func (r *Runner) finish(g *egraph.EGraph, reason StopReason) StopReason {
	r.Stats.NodesAtStop = g.NumNodes()
	r.Stats.ClassesAtStop = g.NumClasses()
	return reason
}
