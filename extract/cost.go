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

// Package extract is component H: cost-directed extraction of a concrete
// term from a saturated e-graph, by a fixed-point relaxation over the
// e-classes.
package extract

import (
	"golang.org/x/exp/constraints"

	"github.com/erkska/glenside/ir"
)

// CostFn computes the cost of a node given its children's already-chosen
// costs. Implementations must be monotone (non-decreasing in childCosts)
// and non-negative, or the fixed-point relaxation run by New is not guaranteed
// to converge (§9 Open Question i).
type CostFn[T constraints.Float] interface {
	Cost(d ir.Data, childCosts []T) T
}

// DefaultCost assigns every node a base weight of 1 plus its children's
// costs, discounting systolic-array nodes multiplicatively so that,
// all else equal, a lowered form is preferred -- a discount rather than a
// negative addend, per the spec's resolution of whether a negative
// weight could stall the fixed point.
type DefaultCost struct {
	// SystolicArrayDiscount scales the cost of a subtree rooted at a
	// systolic-array node. Must be in (0, 1]; the zero value defaults to
	// 0.5 in Cost.
	SystolicArrayDiscount float64
}

// Cost implements CostFn[float64].
func (c DefaultCost) Cost(d ir.Data, childCosts []float64) float64 {
	sum := 1.0
	for _, cc := range childCosts {
		sum += cc
	}
	if d.Head == ir.HeadSystolicArray {
		discount := c.SystolicArrayDiscount
		if discount <= 0 {
			discount = 0.5
		}
		sum *= discount
	}
	return sum
}
