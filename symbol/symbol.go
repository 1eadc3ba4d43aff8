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

// Package symbol interns names used as operator heads, shape variables,
// tensor references and dtypes so that comparing two names is a constant
// time integer comparison rather than a string comparison.
package symbol

// Symbol is an interned name. The zero Symbol is reserved and never
// returned by Interner.Intern.
type Symbol uint32

// invalid is the zero Symbol's slot; Interner never hands it out.
const invalid = Symbol(0)

// Interner is a bidirectional map between strings and Symbols, stable for
// the lifetime of a compilation. It is not safe for concurrent use; the
// core is single-threaded (see §5 of the specification).
type Interner struct {
	byName map[string]Symbol
	byID   []string
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{
		byName: map[string]Symbol{},
		byID:   []string{""},
	}
}

// Intern returns the Symbol for name, allocating a new one on first sight.
func (in *Interner) Intern(name string) Symbol {
	if sym, ok := in.byName[name]; ok {
		return sym
	}
	sym := Symbol(len(in.byID))
	in.byID = append(in.byID, name)
	in.byName[name] = sym
	return sym
}

// Lookup returns the Symbol for name without interning it, if present.
func (in *Interner) Lookup(name string) (Symbol, bool) {
	sym, ok := in.byName[name]
	return sym, ok
}

// String returns the name a Symbol was interned from. It panics if sym was
// not produced by this Interner; that is always a caller bug.
func (in *Interner) String(sym Symbol) string {
	if sym == invalid || int(sym) >= len(in.byID) {
		panic("symbol: unknown symbol")
	}
	return in.byID[sym]
}

// Len returns the number of distinct names interned so far.
func (in *Interner) Len() int {
	return len(in.byID) - 1
}
