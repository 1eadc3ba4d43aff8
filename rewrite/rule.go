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

package rewrite

// Rule is a named (pattern, applier) pair with an optional guard. Rules
// are immutable once built and may be shared by reference across runs
// (§5): nothing here is mutated by matching or applying.
type Rule struct {
	Name    string
	LHS     Pattern
	Guard   Guard // nil means "always fires"
	Applier Applier
}

// New builds an unconditional rule.
func New(name string, lhs Pattern, applier Applier) Rule {
	return Rule{Name: name, LHS: lhs, Applier: applier}
}

// NewConditional builds a rule gated on guard.
func NewConditional(name string, lhs Pattern, guard Guard, applier Applier) Rule {
	return Rule{Name: name, LHS: lhs, Guard: guard, Applier: applier}
}

// Rewrite is shorthand for New with a TemplateApplier, the common case of
// a rule whose right-hand side is itself a plain Pattern.
func Rewrite(name string, lhs, rhs Pattern) Rule {
	return New(name, lhs, TemplateApplier{RHS: rhs})
}
