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

/*
Package rubymark converts inline ruby annotations between three
equivalent forms: a compact operator markup, an explicit macro call
form, and a rendered tag form suitable for display.

The operator markup attaches an annotation to the text immediately
before it:

	[漢字]^^(かんじ)

renders reading text over the base, and ^_( places it under. A slot
holding a marker literal instead of text renders as a decoration
(emphasis dots or an underline). The macro form spells the same
annotation as a single call, {{ruby|漢字|かんじ}}.

Every conversion is total. Input that does not parse as an annotation
passes through unchanged, and the functions never report errors. Code
spans delimited by backticks are never converted.
*/
package rubymark

import "strings"

// maxPasses bounds the fixpoint loops that resolve nested annotations.
// Deeper nesting than this has no legible rendering anyway.
const maxPasses = 5

// convertPass rewrites every resolvable operator occurrence in s using
// emit and reports whether anything changed. Occurrences are claimed
// left to right; a base may not reach back into already-claimed text.
func convertPass(s string, emit func([]byte, annotation) []byte) (string, bool) {
	var out []byte
	claimed := 0
	for {
		m, ok := findMatch(s, claimed, claimed)
		if !ok {
			break
		}
		nodes, end := resolveMatch(s, m)
		out = append(out, s[claimed:m.baseStart]...)
		for _, node := range nodes {
			out = emit(out, node)
		}
		claimed = end
	}
	if out == nil {
		return s, false
	}
	return string(append(out, s[claimed:]...)), true
}

// renderAll rewrites operator markup in s to the rendered form,
// repeating the pass so bracketed bases that themselves contain markup
// resolve from the inside out.
func renderAll(s string) string {
	for i := 0; i < maxPasses; i++ {
		out, changed := convertPass(s, appendAnnotation)
		if !changed {
			break
		}
		s = out
	}
	return s
}

// HasMarkup reports whether text contains at least one complete,
// resolvable operator occurrence outside code spans.
func HasMarkup(text string) bool {
	p := new(protector)
	_, ok := findMatch(p.protect(text), 0, 0)
	return ok
}

// HasAnnotation reports whether text contains an annotation in any of
// the three forms outside code spans.
func HasAnnotation(text string) bool {
	p := new(protector)
	protected := p.protect(text)
	if _, ok := findMatch(protected, 0, 0); ok {
		return true
	}
	return strings.Contains(protected, classAnno) || macroRE.MatchString(protected)
}

// RenderHTML converts operator markup in text to the rendered form.
// Macro calls and already-rendered annotations pass through untouched.
func RenderHTML(text string) string {
	p := new(protector)
	return p.restore(renderAll(p.protect(text)))
}

// ToHTML converts text to the rendered form, accepting both operator
// markup and macro calls as input.
func ToHTML(text string) string {
	p := new(protector)
	return p.restore(renderAll(expandMacroCalls(p.protect(text))))
}

// ToMarkup converts text to the operator markup form. Rendered
// annotation elements are reduced bottom-up and macro calls rewritten;
// text already in markup form is unchanged.
func ToMarkup(text string) string {
	p := new(protector)
	return p.restore(reduceRendered(expandMacroCalls(p.protect(text))))
}

// ToMacro converts text to the macro call form. A node carrying both
// slots becomes two adjacent calls sharing the base, since a call
// names exactly one slot.
func ToMacro(text string) string {
	p := new(protector)
	return p.restore(markupToMacro(reduceRendered(p.protect(text))))
}
