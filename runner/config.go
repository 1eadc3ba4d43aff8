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

// Package runner is component G: the saturation driver that alternates
// search (match), apply and rebuild until a StopReason is reached.
package runner

import "time"

// Config holds the budget and scheduling knobs for a Run. A zero Config
// is usable but unbounded except by IterLimit's zero meaning "run
// forever until Saturated or cancelled" -- callers almost always want to
// set at least NodeLimit. Mirrors gx-org-gx's api/options pattern of a
// plain struct rather than functional options, since every field here is
// a required budget with no sensible default to layer on top of.
type Config struct {
	// IterLimit caps the number of saturation iterations. Zero means
	// unbounded (bounded only by NodeLimit/TimeLimit/cancellation).
	IterLimit int
	// NodeLimit is a hard ceiling on total e-nodes across all classes.
	// Zero means unbounded.
	NodeLimit int
	// TimeLimit is a wall-clock ceiling measured from the start of Run.
	// Zero means unbounded.
	TimeLimit time.Duration
	// MatchLimit is the per-rule, per-iteration match count above which a
	// rule is banned for BanLength iterations (then unbanned with
	// exponential back-off). Zero disables banning.
	MatchLimit int
	// BanLength is the number of iterations a rule is banned for the
	// first time it trips MatchLimit; each subsequent ban doubles it.
	BanLength int
}
