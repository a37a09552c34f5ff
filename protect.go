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
	"regexp"
	"strconv"
	"strings"
)

var (
	fencedCodeRE = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRE = regexp.MustCompile("`[^`\n]*`")
)

// A protector replaces fenced code blocks and inline code spans with
// indexed placeholder tokens before a conversion runs and restores them
// verbatim afterward, so annotation-like text inside code is never
// touched. Each call uses its own protector; the table is never shared.
type protector struct {
	spans []string
}

func (p *protector) protect(text string) string {
	if !strings.Contains(text, "`") {
		return text
	}
	text = fencedCodeRE.ReplaceAllStringFunc(text, p.stash)
	return inlineCodeRE.ReplaceAllStringFunc(text, p.stash)
}

func (p *protector) stash(span string) string {
	p.spans = append(p.spans, span)
	return placeholder(len(p.spans) - 1)
}

// placeholder builds the token for the i'th protected span. The
// delimiters are private-use codepoints, which survive both the scanner
// (no operator syntax) and the HTML parse in the reverse direction.
func placeholder(i int) string {
	return "\uE000" + strconv.Itoa(i) + "\uE001"
}

// restore substitutes every protected span back into text. A missing
// placeholder can only mean the conversion corrupted it, which is a
// defect rather than a recoverable condition.
func (p *protector) restore(text string) string {
	for i, span := range p.spans {
		ph := placeholder(i)
		if !strings.Contains(text, ph) {
			panic("rubymark: code span placeholder lost during conversion")
		}
		text = strings.Replace(text, ph, span, 1)
	}
	return text
}
