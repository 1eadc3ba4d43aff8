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

// BackoffScheduler tracks, per rule name, whether the rule is currently
// banned from the search phase because it produced more than
// Config.MatchLimit matches in some prior iteration, and for how many
// further iterations. Each time a rule is banned its ban length doubles,
// so a persistently explosive rule is searched less and less often
// without ever being permanently disabled.
type BackoffScheduler struct {
	baseBanLength int
	state         map[string]*ruleState
}

type ruleState struct {
	bannedUntil int // iteration index (exclusive) the ban lifts at
	banLength   int
}

// NewBackoffScheduler builds a scheduler whose first ban for any rule
// lasts baseBanLength iterations.
func NewBackoffScheduler(baseBanLength int) *BackoffScheduler {
	if baseBanLength <= 0 {
		baseBanLength = 1
	}
	return &BackoffScheduler{baseBanLength: baseBanLength, state: make(map[string]*ruleState)}
}

// Banned reports whether name is banned as of iteration iter.
func (s *BackoffScheduler) Banned(name string, iter int) bool {
	st, ok := s.state[name]
	return ok && iter < st.bannedUntil
}

// Ban bans name starting at iteration iter+1, doubling its ban length
// from the last time it was banned (or starting at baseBanLength).
func (s *BackoffScheduler) Ban(name string, iter int) {
	st, ok := s.state[name]
	if !ok {
		st = &ruleState{banLength: s.baseBanLength}
		s.state[name] = st
	} else {
		st.banLength *= 2
	}
	st.bannedUntil = iter + 1 + st.banLength
}
