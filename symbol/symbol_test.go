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

package symbol

import "testing"

func TestInternStable(t *testing.T) {
	in := New()
	a := in.Intern("A")
	b := in.Intern("B")
	a2 := in.Intern("A")
	if a != a2 {
		t.Fatalf("Intern(A) = %d, Intern(A) again = %d, want equal", a, a2)
	}
	if a == b {
		t.Fatalf("distinct names interned to the same symbol: %d", a)
	}
	if got := in.String(a); got != "A" {
		t.Fatalf("String(a) = %q, want %q", got, "A")
	}
	if got := in.String(b); got != "B" {
		t.Fatalf("String(b) = %q, want %q", got, "B")
	}
}

func TestLookupMissing(t *testing.T) {
	in := New()
	in.Intern("A")
	if _, ok := in.Lookup("B"); ok {
		t.Fatalf("Lookup(B) = ok, want not found before any Intern(B)")
	}
	sym, ok := in.Lookup("A")
	if !ok || in.String(sym) != "A" {
		t.Fatalf("Lookup(A) = (%d, %v), want a valid symbol for A", sym, ok)
	}
}

func TestLen(t *testing.T) {
	in := New()
	in.Intern("A")
	in.Intern("B")
	in.Intern("A")
	if got := in.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}
