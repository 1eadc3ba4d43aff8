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

// StopReason is why Run returned. Only Saturated means the rule set found
// no new equalities; every other value means a budget tripped first and
// is not itself an error (§7): the caller decides whether that's fine.
type StopReason uint8

const (
	// Saturated means a full iteration found no new unions and no new
	// e-nodes: the e-graph (restricted to the active rule set) is a
	// fixed point.
	Saturated StopReason = iota
	// NodeLimit means Config.NodeLimit was reached.
	NodeLimit
	// TimeLimit means Config.TimeLimit elapsed.
	TimeLimit
	// IterLimit means Config.IterLimit iterations ran without saturating.
	IterLimit
	// Cancelled means the caller's context was cancelled.
	Cancelled
)

func (r StopReason) String() string {
	switch r {
	case Saturated:
		return "Saturated"
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
