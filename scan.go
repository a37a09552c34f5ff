// Copyright 2025 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package rubymark

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Annotation operator tokens.
// Each is immediately followed by content running to the next
// unescaped closing parenthesis on the same line.
const (
	overOp  = "^^("
	underOp = "^_("
)

// opAt reports whether an unescaped annotation operator starts at i.
func opAt(s string, i int) (over, ok bool) {
	if i < 0 || i+len(overOp) > len(s) || isEscaped(s, i) {
		return false, false
	}
	switch {
	case strings.HasPrefix(s[i:], overOp):
		return true, true
	case strings.HasPrefix(s[i:], underOp):
		return false, true
	}
	return false, false
}

// findContentEnd returns the offset of the next unescaped closing
// parenthesis at or after from, or -1 if a line break (or the end of
// input) comes first. Content may not cross a line break.
func findContentEnd(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\n', '\r':
			return -1
		case ')':
			if !isEscaped(s, i) {
				return i
			}
		}
	}
	return -1
}

// scanBase finds the base span ending immediately before the operator at
// opStart. A closing bracket selects the bracketed form: the matching
// unescaped opening bracket is sought backward without crossing a line
// break, honoring nesting. Otherwise the base is the maximal run of
// non-whitespace characters, stopped by brackets and by tag and macro
// delimiters so a bare base never reaches into converted output. An
// empty base string means no base is present.
func scanBase(s string, opStart int) (start int, base string) {
	if opStart == 0 {
		return opStart, ""
	}
	if s[opStart-1] == ']' && !isEscaped(s, opStart-1) {
		depth := 1
		for i := opStart - 2; i >= 0; i-- {
			switch s[i] {
			case '\n', '\r':
				return opStart, ""
			case ']':
				if !isEscaped(s, i) {
					depth++
				}
			case '[':
				if !isEscaped(s, i) {
					depth--
					if depth == 0 {
						return i, s[i+1 : opStart-1]
					}
				}
			}
		}
		return opStart, ""
	}
	start = opStart
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsSpace(r) || strings.ContainsRune("<>{}", r) {
			break
		}
		if (r == '[' || r == ']') && !isEscaped(s, start-size) {
			break
		}
		start -= size
	}
	return start, s[start:opStart]
}

// A match is one renderable operator occurrence located by findMatch.
type match struct {
	baseStart    int
	opStart      int
	over         bool
	base         string // raw (still escaped) base text
	contentStart int
	contentEnd   int
	end          int // offset just past the closing parenthesis
}

// findMatch locates the next renderable operator occurrence at or after
// search. claimed is the offset before which the current pass has
// already consumed input; a base span beginning before it has been
// claimed by an earlier match and produces no node. Occurrences with an
// empty base, empty content, or unterminated content are skipped,
// leaving their text to pass through unchanged.
func findMatch(s string, search, claimed int) (match, bool) {
	for pos := search; pos < len(s); {
		rel := strings.IndexByte(s[pos:], '^')
		if rel < 0 {
			break
		}
		pos += rel
		over, ok := opAt(s, pos)
		if !ok {
			pos++
			continue
		}
		contentStart := pos + len(overOp)
		contentEnd := findContentEnd(s, contentStart)
		if contentEnd < 0 || contentEnd == contentStart {
			pos += len(overOp)
			continue
		}
		baseStart, base := scanBase(s, pos)
		if base == "" || baseStart < claimed {
			pos += len(overOp)
			continue
		}
		return match{
			baseStart:    baseStart,
			opStart:      pos,
			over:         over,
			base:         base,
			contentStart: contentStart,
			contentEnd:   contentEnd,
			end:          contentEnd + 1,
		}, true
	}
	return match{}, false
}
