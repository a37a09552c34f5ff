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

import "regexp"

// The macro form is a fixed-shape call:
// a name tag, a base argument, an annotation-or-marker argument, and an
// optional literal "under" argument selecting the under slot.
var macroRE = regexp.MustCompile(`\{\{ruby\|((?:\\.|[^\\|{}])+)\|((?:\\.|[^\\|{}])+)(\|under)?\}\}`)

// expandMacroCalls rewrites every macro call in text into operator
// markup, which the renderer and reducers then treat uniformly. A run
// of immediately adjacent calls sharing one base becomes a single base
// with chained operators, so the base text never repeats. The pass
// repeats because a call's base argument may itself carry an escaped
// call.
func expandMacroCalls(text string) string {
	for i := 0; i < maxPasses; i++ {
		out := expandMacroPass(text)
		if out == text {
			break
		}
		text = out
	}
	return text
}

func expandMacroPass(text string) string {
	idx := macroRE.FindAllStringSubmatchIndex(text, -1)
	if idx == nil {
		return text
	}
	var b []byte
	last := 0
	for i := 0; i < len(idx); {
		m := idx[i]
		b = append(b, text[last:m[0]]...)
		rawBase := text[m[2]:m[3]]
		b = append(b, '[')
		b = appendMarkupEscaped(b, unescapeMacroArg(rawBase), "[]")
		b = append(b, ']')

		type macroOp struct {
			under   bool
			content string
		}
		run := []macroOp{{m[6] >= 0, macroArgContent(text[m[4]:m[5]], m[6] >= 0)}}
		j := i
		for j+1 < len(idx) && idx[j+1][0] == idx[j][1] && text[idx[j+1][2]:idx[j+1][3]] == rawBase {
			j++
			mj := idx[j]
			run = append(run, macroOp{mj[6] >= 0, macroArgContent(text[mj[4]:mj[5]], mj[6] >= 0)})
		}
		for k := 0; k < len(run); {
			cur := run[k]
			if cur.under {
				b = append(b, underOp...)
			} else {
				b = append(b, overOp...)
			}
			b = append(b, cur.content...)
			// An adjacent opposite-kind call folds onto the same
			// operator as the second pipe level.
			if k+1 < len(run) && run[k+1].under != cur.under {
				b = append(b, '|')
				b = append(b, run[k+1].content...)
				k++
			}
			b = append(b, ')')
			k++
		}
		last = idx[j][1]
		i = j + 1
	}
	return string(append(b, text[last:]...))
}

// macroArgContent translates a raw macro annotation argument to markup
// content. A raw argument that is exactly a marker literal keeps its
// decoration meaning; anything else is slot text.
func macroArgContent(raw string, under bool) string {
	if classify(raw, under).kind != slotText {
		return raw
	}
	return markupSlotText(unescapeMacroArg(raw), under)
}

// slotMarkup returns the markup representation of a slot value:
// the decoration's marker literal, or the (unescaped) ruby text.
func slotMarkup(c slotContent) string {
	switch c.kind {
	case slotBouten:
		return boutenMarker
	case slotUnderline:
		return underlineMarker
	case slotUnderlineWavy:
		return underlineWavyMarker
	case slotUnderlineDouble:
		return underlineDoubleMarker
	}
	return c.text
}

// macroSlotArg returns the escaped macro argument for a slot. Text
// that would read back as a decoration marker gets a leading backslash.
func macroSlotArg(c slotContent, under bool) string {
	if c.kind != slotText {
		return slotMarkup(c)
	}
	esc := string(appendMarkupEscaped(nil, c.text, "|{}"))
	if classify(esc, under).kind != slotText {
		esc = `\` + esc
	}
	return esc
}

// appendMacroCall appends one macro call carrying a single slot.
// arg must already be escaped.
func appendMacroCall(dst []byte, base, arg string, under bool) []byte {
	dst = append(dst, "{{ruby|"...)
	dst = appendMarkupEscaped(dst, base, "|{}")
	dst = append(dst, '|')
	dst = append(dst, arg...)
	if under {
		dst = append(dst, "|under"...)
	}
	return append(dst, "}}"...)
}

// appendMacroNode appends the macro form of a resolved node. The macro
// form carries one explicit slot per call, so a two-slot node expands
// into two adjacent calls sharing the base.
func appendMacroNode(dst []byte, node annotation) []byte {
	if node.over.kind != slotEmpty {
		dst = appendMacroCall(dst, node.base, macroSlotArg(node.over, false), false)
	}
	if node.under.kind != slotEmpty {
		dst = appendMacroCall(dst, node.base, macroSlotArg(node.under, true), true)
	}
	return dst
}

// markupToMacro rewrites operator markup in text into macro calls,
// re-running the pass so nested bracket bases resolve inner-first.
func markupToMacro(text string) string {
	for i := 0; i < maxPasses; i++ {
		out, changed := convertPass(text, appendMacroNode)
		if !changed {
			break
		}
		text = out
	}
	return text
}

// ExpandMacro renders a macro call's argument list (base, annotation,
// and an optional literal "under") directly to the rendered form. It
// reports false when the required arguments are missing, leaving the
// caller to decide fallback display.
func ExpandMacro(args []string) (string, bool) {
	if len(args) < 2 || args[0] == "" || args[1] == "" {
		return "", false
	}
	under := len(args) >= 3 && args[2] == "under"
	node := annotation{base: args[0]}
	*node.slot(under) = classify(args[1], under)
	return string(appendAnnotation(nil, node)), true
}
