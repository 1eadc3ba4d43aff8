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

package analysis

// DType is the closed enumeration of element types a tensor access can
// carry. This module defines its own small set rather than depending on a
// general multi-backend dtype runtime (see DESIGN.md): the core only ever
// needs to know enough about a dtype to promote it across a compute op and
// to print it in the textual IR.
type DType uint8

// Enumeration of supported dtypes, ordered from lowest to highest
// precision for the purposes of promotion in compute ops.
const (
	// DTypeInvalid is the zero value; a legal node is never left with it.
	DTypeInvalid DType = iota
	DTypeBool
	DTypeI8
	DTypeU8
	DTypeI32
	DTypeF32
)

func (d DType) String() string {
	switch d {
	case DTypeBool:
		return "bool"
	case DTypeI8:
		return "i8"
	case DTypeU8:
		return "u8"
	case DTypeI32:
		return "i32"
	case DTypeF32:
		return "f32"
	default:
		return "invalid"
	}
}

// DTypeFromString is the inverse of String, used by the sexpr parser.
func DTypeFromString(s string) (DType, bool) {
	switch s {
	case "bool":
		return DTypeBool, true
	case "i8":
		return DTypeI8, true
	case "u8":
		return DTypeU8, true
	case "i32":
		return DTypeI32, true
	case "f32":
		return DTypeF32, true
	default:
		return DTypeInvalid, false
	}
}

// PromoteDType returns the dtype a binary elementwise op over a and b
// should produce: the wider of the two, defaulting to f32 whenever either
// operand is already floating point.
func PromoteDType(a, b DType) DType {
	if a == DTypeF32 || b == DTypeF32 {
		return DTypeF32
	}
	if a > b {
		return a
	}
	return b
}
