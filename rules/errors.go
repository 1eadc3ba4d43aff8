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

package rules

import "github.com/pkg/errors"

// errNotShaped is returned by an applier when a matched pattern variable
// turns out not to be bound to a shaped (access-term) class; this should
// only happen if the matcher is asked to run against an e-graph that has
// not been rebuilt since a poisoning union, since the guard already
// checks shapedness before the applier runs.
var errNotShaped = errors.New("rules: pattern variable is not bound to a shaped e-class")
