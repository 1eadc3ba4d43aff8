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

// Package sexpr is the textual IR surface form (§6): a parenthesised
// prefix-expression syntax, e.g. "(access (access-transpose (tensor t
// (shape 2 3) f32) (list 1 0)) 1)". It is only concrete-syntax plumbing; the semantic node set it
// produces is package ir's.
package sexpr

import (
	"unicode"

	"github.com/erkska/glenside/errs"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokNumber
	tokIdent
)

type lexToken struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]lexToken, error) {
	var out []lexToken
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '(':
			out = append(out, lexToken{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			out = append(out, lexToken{kind: tokRParen, text: ")", pos: i})
			i++
		case unicode.IsSpace(rune(c)):
			i++
		default:
			start := i
			for i < len(src) && src[i] != '(' && src[i] != ')' && !unicode.IsSpace(rune(src[i])) {
				i++
			}
			if start == i {
				return nil, errs.NewParseError(i, "a token")
			}
			word := src[start:i]
			kind := tokIdent
			if isNumber(word) {
				kind = tokNumber
			}
			out = append(out, lexToken{kind: kind, text: word, pos: start})
		}
	}
	out = append(out, lexToken{kind: tokEOF, text: "", pos: len(src)})
	return out, nil
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i = 1
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
