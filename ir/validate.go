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

package ir

import (
	"go.uber.org/multierr"

	"github.com/erkska/glenside/analysis"
)

// Analyze computes the analysis value of a standalone Term by walking it
// bottom-up and applying Make at every node. It stops and returns the
// first error encountered; use Validate to collect every violation in a
// term instead of just the first.
func Analyze(t *Term) (analysis.Value, error) {
	if t == nil {
		return analysis.Value{}, newTypeError("<nil>", "nil term")
	}
	children := make([]analysis.Value, len(t.Children))
	for i, c := range t.Children {
		v, err := Analyze(c)
		if err != nil {
			return analysis.Value{Type: analysis.NotAType{}}, err
		}
		children[i] = v
	}
	return Make(t.Data, children)
}

// Validate walks t bottom-up, accumulating every well-formedness violation
// found anywhere in the tree with go.uber.org/multierr rather than
// aborting at the first one, so a caller gets a complete report. Subtrees
// that fail to type are treated as NotAType for the purposes of
// continuing to validate their siblings and ancestors, so one bad leaf
// does not prevent finding errors elsewhere in the term.
func Validate(t *Term) error {
	_, err := validate(t)
	return err
}

func validate(t *Term) (analysis.Value, error) {
	if t == nil {
		return analysis.Value{Type: analysis.NotAType{}}, newTypeError("<nil>", "nil term")
	}
	var errOut error
	children := make([]analysis.Value, len(t.Children))
	for i, c := range t.Children {
		v, err := validate(c)
		if err != nil {
			errOut = multierr.Append(errOut, err)
		}
		children[i] = v
	}
	v, err := Make(t.Data, children)
	if err != nil {
		errOut = multierr.Append(errOut, err)
	}
	return v, errOut
}
