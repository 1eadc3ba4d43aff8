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

// Package errs defines the error taxonomy shared by every core package:
// ParseError, TypeError, BudgetExceeded, ExtractFailure and
// InternalInvariantViolation. All constructors wrap with
// github.com/pkg/errors so the resulting error carries a stack trace from
// the point of origin, matching the convention of the teacher's
// build/fmterr package.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports malformed textual IR.
type ParseError struct {
	Position int
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: expected %s", e.Position, e.Expected)
}

// NewParseError builds a ParseError with a stack trace attached.
func NewParseError(position int, expected string) error {
	return errors.WithStack(&ParseError{Position: position, Expected: expected})
}

// TypeError reports a well-formedness violation discovered while adding a
// node to the e-graph or while building a term.
type TypeError struct {
	Node   string
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: %s", e.Node, e.Reason)
}

// NewTypeError builds a TypeError with a stack trace attached.
func NewTypeError(node, reason string) error {
	return errors.WithStack(&TypeError{Node: node, Reason: reason})
}

// BudgetKind distinguishes the reason a saturation run stopped short of
// saturation.
type BudgetKind int

const (
	// NodeLimit means the e-graph's node count reached its ceiling.
	NodeLimit BudgetKind = iota
	// TimeLimit means the wall-clock ceiling was reached.
	TimeLimit
	// IterLimit means the iteration count ceiling was reached.
	IterLimit
	// Cancelled means the caller's cancellation flag was observed set.
	Cancelled
)

func (k BudgetKind) String() string {
	switch k {
	case NodeLimit:
		return "NodeLimit"
	case TimeLimit:
		return "TimeLimit"
	case IterLimit:
		return "IterLimit"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// BudgetExceeded is not fatal: it is the non-Saturated half of a runner's
// StopReason, surfaced as an error value only to callers that treat
// anything short of saturation as an error (most callers should instead
// inspect runner.StopReason directly).
type BudgetExceeded struct {
	Kind BudgetKind
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("budget exceeded: %s", e.Kind)
}

// NewBudgetExceeded builds a BudgetExceeded error with a stack trace
// attached.
func NewBudgetExceeded(kind BudgetKind) error {
	return errors.WithStack(&BudgetExceeded{Kind: kind})
}

// ExtractFailure reports that no finite-cost e-node exists in a class the
// extractor needed a representative for.
type ExtractFailure struct {
	Class  uint32
	Reason string
}

func (e *ExtractFailure) Error() string {
	return fmt.Sprintf("extract failure in class %d: %s", e.Class, e.Reason)
}

// NoTypedRepresentative is the ExtractFailure.Reason used when every e-node
// in the class was excluded because its analysis is NotAType.
const NoTypedRepresentative = "no typed representative"

// NewExtractFailure builds an ExtractFailure with a stack trace attached.
func NewExtractFailure(class uint32, reason string) error {
	return errors.WithStack(&ExtractFailure{Class: class, Reason: reason})
}

// InternalInvariantViolation indicates a bug in the core itself (a broken
// hash-cons bijection, a non-canonical child surviving rebuild, ...). The
// caller should treat this as fatal; it is never expected in correct use.
type InternalInvariantViolation struct {
	Detail string
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violation: %s", e.Detail)
}

// NewInternalInvariantViolation builds an InternalInvariantViolation with a
// stack trace attached.
func NewInternalInvariantViolation(detail string) error {
	return errors.WithStack(&InternalInvariantViolation{Detail: detail})
}
