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

// Decoration marker literals. A slot whose raw content is exactly one
// of these renders as a decoration instead of ruby text; the underline
// markers are only special in the under slot.
const (
	boutenMarker          = ".."
	underlineMarker       = ".-"
	underlineWavyMarker   = ".~"
	underlineDoubleMarker = ".="
)

type slotKind uint8

const (
	slotEmpty slotKind = iota
	slotText
	slotBouten
	slotUnderline
	slotUnderlineWavy
	slotUnderlineDouble
)

type slotContent struct {
	kind slotKind
	text string // unescaped ruby text; empty for decorations
}

// An annotation is one resolved operator occurrence:
// a base span and at most two slot values.
type annotation struct {
	base  string
	over  slotContent
	under slotContent
}

func (a *annotation) slot(under bool) *slotContent {
	if under {
		return &a.under
	}
	return &a.over
}

// classify decides whether raw slot content is a decoration or ordinary
// ruby text. The comparison uses the raw (still escaped) string, so
// escaped lookalikes stay text. A single dot is never special.
func classify(raw string, under bool) slotContent {
	if raw == boutenMarker {
		return slotContent{kind: slotBouten}
	}
	if under {
		switch raw {
		case underlineMarker:
			return slotContent{kind: slotUnderline}
		case underlineWavyMarker:
			return slotContent{kind: slotUnderlineWavy}
		case underlineDoubleMarker:
			return slotContent{kind: slotUnderlineDouble}
		}
	}
	return slotContent{kind: slotText, text: unescape(raw)}
}

// splitPipe splits content on unescaped pipe characters.
// The result always has at least one element.
func splitPipe(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' && !isEscaped(s, i) {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// fillFromContent populates a node from one operator's content string.
// The first pipe level lands on the operator's own side, the second on
// the opposite side; levels beyond the second are discarded.
func (a *annotation) fillFromContent(content string, over bool) {
	parts := splitPipe(content)
	*a.slot(!over) = classify(parts[0], !over)
	if len(parts) >= 2 {
		*a.slot(over) = classify(parts[1], over)
	}
}

// resolveMatch resolves one matched occurrence together with any
// operators immediately following its closing parenthesis. An
// opposite-kind follower fills the remaining slot (the chain rule); once
// both slots are populated, further opposite-kind followers are consumed
// without contributing, so no operator text leaks into the output. A
// same-kind follower starts an independent match against the same base.
// It returns the nodes to render and the offset just past all consumed
// input.
func resolveMatch(s string, m match) (nodes []annotation, end int) {
	base := unescape(m.base)
	node := annotation{base: base}
	node.fillFromContent(s[m.contentStart:m.contentEnd], m.over)
	curOver := m.over
	end = m.end
	for {
		over2, ok := opAt(s, end)
		if !ok {
			break
		}
		contentStart := end + len(overOp)
		contentEnd := findContentEnd(s, contentStart)
		if contentEnd < 0 || contentEnd == contentStart {
			break
		}
		if over2 == curOver {
			nodes = append(nodes, node)
			node = annotation{base: base}
			node.fillFromContent(s[contentStart:contentEnd], over2)
			curOver = over2
		} else if target := node.slot(!over2); target.kind == slotEmpty {
			*target = classify(splitPipe(s[contentStart:contentEnd])[0], !over2)
		}
		end = contentEnd + 1
	}
	return append(nodes, node), end
}
