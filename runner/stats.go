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

// Stats counts per-run activity. It's not part of the spec's external
// interface contract (§6) but is cheap to maintain and is what a caller
// deciding whether to raise a budget would actually want to look at.
type Stats struct {
	Iterations  int
	MatchesTot  int
	UnionsTot   int
	AppliesTot  int
	Bans        int
	NodesAtStop int
	ClassesAtStop int
}
