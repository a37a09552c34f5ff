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

	"go4.org/bytereplacer"
)

// isEscaped reports whether the byte at position i
// is preceded by an odd number of backslashes.
func isEscaped(s string, i int) bool {
	n := 0
	for i-n-1 >= 0 && s[i-n-1] == '\\' {
		n++
	}
	return n%2 == 1
}

var markupUnescaper = bytereplacer.New(
	`\\`, `\`,
	`\|`, `|`,
	`\)`, `)`,
	`\]`, `]`,
	`\[`, `[`,
	`\.`, `.`,
)

// unescape removes the backslash from every recognized markup escape
// sequence. Escaping a dot lets slot text spell a decoration marker
// literally. A backslash before any other character is literal.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return string(markupUnescaper.Replace([]byte(s)))
}

var macroArgUnescaper = bytereplacer.New(
	`\\`, `\`,
	`\|`, `|`,
	`\{`, `{`,
	`\}`, `}`,
	`\.`, `.`,
)

func unescapeMacroArg(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return string(macroArgUnescaper.Replace([]byte(s)))
}

// appendMarkupEscaped appends s to dst,
// backslash-escaping backslashes and every byte in specials.
func appendMarkupEscaped(dst []byte, s string, specials string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || strings.IndexByte(specials, c) >= 0 {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return dst
}
