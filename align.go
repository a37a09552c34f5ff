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

	"github.com/rivo/uniseg"
)

// graphemes splits s into user-visible characters
// (grapheme clusters, not runes).
func graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// alignSegments splits ruby text on runs of whitespace and aligns the
// segments with the base's characters. A segment identical to its
// character is replaced by the empty string (auto-hide): the element is
// still emitted so the layout slot stays reserved. ok is false when the
// text has no whitespace to split on, when the counts differ, or when
// the base carries raw markup; the caller then falls back to a single
// group annotation.
func alignSegments(base, text string) (chars, segs []string, ok bool) {
	if strings.IndexFunc(text, unicode.IsSpace) < 0 {
		return nil, nil, false
	}
	if strings.ContainsAny(base, "<>") {
		return nil, nil, false
	}
	segs = strings.Fields(text)
	chars = graphemes(base)
	if len(segs) != len(chars) {
		return nil, nil, false
	}
	for i, seg := range segs {
		if seg == chars[i] {
			segs[i] = ""
		}
	}
	return chars, segs, true
}
