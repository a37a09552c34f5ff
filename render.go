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

	"golang.org/x/net/html/atom"
)

// Rendered-form class vocabulary. classAnno marks every annotation
// element; the reverse reducers key on it.
const (
	classAnno   = "ruby-anno"
	classOver   = "ruby-over"
	classUnder  = "ruby-under"
	classDouble = "ruby-double"
	classMixed  = "ruby-mixed"

	classBoutenOver      = "bouten-over"
	classBoutenUnder     = "bouten-under"
	classUnderline       = "underline"
	classUnderlineWavy   = "underline-wavy"
	classUnderlineDouble = "underline-double"
)

func sideClass(under bool) string {
	if under {
		return classUnder
	}
	return classOver
}

// decoClasses returns the class markers for a decoration slot.
func decoClasses(c slotContent, under bool) []string {
	switch c.kind {
	case slotBouten:
		if under {
			return []string{classBoutenUnder}
		}
		return []string{classBoutenOver}
	case slotUnderline:
		return []string{classUnderline}
	case slotUnderlineWavy:
		return []string{classUnderline, classUnderlineWavy}
	case slotUnderlineDouble:
		return []string{classUnderline, classUnderlineDouble}
	}
	return nil
}

func appendOpenTag(dst []byte, name atom.Atom, classes ...string) []byte {
	dst = append(dst, '<')
	dst = append(dst, name.String()...)
	dst = append(dst, ` class="`...)
	for i, c := range classes {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = append(dst, c...)
	}
	dst = append(dst, `">`...)
	return dst
}

func appendCloseTag(dst []byte, name atom.Atom) []byte {
	dst = append(dst, "</"...)
	dst = append(dst, name.String()...)
	dst = append(dst, '>')
	return dst
}

func appendRT(dst []byte, text string) []byte {
	dst = append(dst, "<rt>"...)
	dst = escapeHTML(dst, []byte(text))
	dst = append(dst, "</rt>"...)
	return dst
}

// appendBaseText emits base content. A base carrying an
// already-rendered inner annotation is emitted verbatim; any other
// base is text and escapes normally, stray angle brackets included.
func appendBaseText(dst []byte, base string) []byte {
	if strings.Contains(base, classAnno) {
		return append(dst, base...)
	}
	return escapeHTML(dst, []byte(base))
}

// appendAnnotation appends the rendered form of a resolved node.
func appendAnnotation(dst []byte, node annotation) []byte {
	overText := node.over.kind == slotText
	underText := node.under.kind == slotText
	overDeco := node.over.kind != slotEmpty && !overText
	underDeco := node.under.kind != slotEmpty && !underText

	switch {
	case overText && underText:
		return appendDoubleRuby(dst, node)
	case (overText || underText) && (overDeco || underDeco):
		return appendMixedRuby(dst, node, underText)
	case overDeco || underDeco:
		return appendDecoration(dst, node)
	case overText || underText:
		return appendSingleRuby(dst, node, underText)
	}
	// The resolver always fills at least one slot.
	panic("unreachable")
}

// appendSingleRuby renders a one-slot ordinary annotation: one element
// per base character when the text aligns, otherwise a single group
// element wrapping the whole base.
func appendSingleRuby(dst []byte, node annotation, under bool) []byte {
	text := node.slot(under).text
	if chars, segs, ok := alignSegments(node.base, text); ok {
		for i := range chars {
			dst = appendOpenTag(dst, atom.Ruby, classAnno, sideClass(under))
			dst = appendBaseText(dst, chars[i])
			dst = appendRT(dst, segs[i])
			dst = appendCloseTag(dst, atom.Ruby)
		}
		return dst
	}
	dst = appendOpenTag(dst, atom.Ruby, classAnno, sideClass(under))
	dst = appendBaseText(dst, node.base)
	dst = appendRT(dst, text)
	return appendCloseTag(dst, atom.Ruby)
}

// appendDoubleRuby renders a node with ordinary text in both slots. The
// over slot renders on the inner element and the under slot on the
// outer "double" element, so operator order never changes the output.
// Aligned slots render one element per base character; a slot that
// fails alignment wraps the whole synthesized run instead.
func appendDoubleRuby(dst []byte, node annotation) []byte {
	oChars, oSegs, oOK := alignSegments(node.base, node.over.text)
	uChars, uSegs, uOK := alignSegments(node.base, node.under.text)
	switch {
	case oOK && uOK:
		for i := range oChars {
			dst = appendOpenTag(dst, atom.Ruby, classAnno, classUnder, classDouble)
			dst = appendOpenTag(dst, atom.Ruby, classAnno, classOver)
			dst = appendBaseText(dst, oChars[i])
			dst = appendRT(dst, oSegs[i])
			dst = appendCloseTag(dst, atom.Ruby)
			dst = appendRT(dst, uSegs[i])
			dst = appendCloseTag(dst, atom.Ruby)
		}
	case oOK:
		dst = appendOpenTag(dst, atom.Ruby, classAnno, classUnder, classDouble)
		for i := range oChars {
			dst = appendOpenTag(dst, atom.Ruby, classAnno, classOver)
			dst = appendBaseText(dst, oChars[i])
			dst = appendRT(dst, oSegs[i])
			dst = appendCloseTag(dst, atom.Ruby)
		}
		dst = appendRT(dst, node.under.text)
		dst = appendCloseTag(dst, atom.Ruby)
	case uOK:
		dst = appendOpenTag(dst, atom.Ruby, classAnno, classOver, classDouble)
		for i := range uChars {
			dst = appendOpenTag(dst, atom.Ruby, classAnno, classUnder)
			dst = appendBaseText(dst, uChars[i])
			dst = appendRT(dst, uSegs[i])
			dst = appendCloseTag(dst, atom.Ruby)
		}
		dst = appendRT(dst, node.over.text)
		dst = appendCloseTag(dst, atom.Ruby)
	default:
		dst = appendOpenTag(dst, atom.Ruby, classAnno, classUnder, classDouble)
		dst = appendOpenTag(dst, atom.Ruby, classAnno, classOver)
		dst = appendBaseText(dst, node.base)
		dst = appendRT(dst, node.over.text)
		dst = appendCloseTag(dst, atom.Ruby)
		dst = appendRT(dst, node.under.text)
		dst = appendCloseTag(dst, atom.Ruby)
	}
	return dst
}

// appendMixedRuby renders a node with ruby text in one slot and a
// decoration in the other: a single ruby element carrying the text on
// its side plus the decoration's class markers. No "double" marker.
func appendMixedRuby(dst []byte, node annotation, textUnder bool) []byte {
	classes := []string{classAnno, sideClass(textUnder), classMixed}
	classes = append(classes, decoClasses(*node.slot(!textUnder), !textUnder)...)
	dst = appendOpenTag(dst, atom.Ruby, classes...)
	dst = appendBaseText(dst, node.base)
	dst = appendRT(dst, node.slot(textUnder).text)
	return appendCloseTag(dst, atom.Ruby)
}

// appendDecoration renders a decoration-only node: a single span whose
// class list combines the markers of both slots.
func appendDecoration(dst []byte, node annotation) []byte {
	classes := []string{classAnno}
	classes = append(classes, decoClasses(node.over, false)...)
	classes = append(classes, decoClasses(node.under, true)...)
	dst = appendOpenTag(dst, atom.Span, classes...)
	dst = appendBaseText(dst, node.base)
	return appendCloseTag(dst, atom.Span)
}

// escapeHTML appends the HTML-escaped version of a byte slice to
// another byte slice.
func escapeHTML(dst []byte, src []byte) []byte {
	verbatimStart := 0
	for i, b := range src {
		switch b {
		case '&':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&amp;"...)
			verbatimStart = i + 1
		case '\'':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&#39;"...)
			verbatimStart = i + 1
		case '<':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&lt;"...)
			verbatimStart = i + 1
		case '>':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&gt;"...)
			verbatimStart = i + 1
		case '"':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&quot;"...)
			verbatimStart = i + 1
		}
	}
	if verbatimStart < len(src) {
		dst = append(dst, src[verbatimStart:]...)
	}
	return dst
}
