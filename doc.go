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

// Package glenside is an equality-saturation rewrite engine over a typed
// tensor intermediate representation.
//
// A caller builds a term in the package ir, inserts it into an
// [egraph.EGraph], runs a [runner.Runner] over a [rewrite.Rule] set until a
// budget or a fixed point is reached, and extracts a cost-minimal term with
// an [extract.Extractor]. Package rules supplies the tensor-specific rewrite
// library (tiling, blocking, lowering onto systolic-array atoms); package
// interp is a reference evaluator used only by tests; package sexpr is the
// textual surface syntax.
//
// The command-line front end, neural-network graph import, and the concrete
// accelerator code generator are external collaborators of this module; see
// package abi for the narrow interface the code generator consumes.
package glenside
