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

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// reduceRendered converts rendered annotation elements in text back to
// operator markup. The tree reduces bottom-up, so an annotation nested
// inside another's base becomes markup before its parent does. Elements
// that do not match a renderable shape stay untouched, as does text
// with no annotation elements at all.
func reduceRendered(text string) string {
	if !strings.Contains(text, classAnno) {
		return text
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	frags, err := html.ParseFragment(strings.NewReader(text), ctx)
	if err != nil {
		return text
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, f := range frags {
		root.AppendChild(f)
	}
	reduceTree(root)
	sb := new(strings.Builder)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode, html.RawNode:
			sb.WriteString(c.Data)
		default:
			if err := html.Render(sb, c); err != nil {
				return text
			}
		}
	}
	return sb.String()
}

func reduceTree(n *html.Node) {
	coalesceAlignedRuns(n)
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type != html.ElementNode {
			continue
		}
		reduceTree(c)
		if isAnnotationElement(c) && !containsAnnotation(c) {
			reduceElement(c)
		}
	}
}

func isAnnotationElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.DataAtom != atom.Ruby && n.DataAtom != atom.Span {
		return false
	}
	return hasClass(n, classAnno)
}

func containsAnnotation(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (isAnnotationElement(c) || containsAnnotation(c)) {
			return true
		}
	}
	return false
}

func classList(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range classList(n) {
		if c == class {
			return true
		}
	}
	return false
}

// findRT returns the first direct rt child.
func findRT(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Rt {
			return c
		}
	}
	return nil
}

// nodeText returns the concatenated direct text content of n. ok is
// false if n has any non-text child.
func nodeText(n *html.Node) (string, bool) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return "", false
		}
		sb.WriteString(c.Data)
	}
	return sb.String(), true
}

// containsLineBreak reports whether s cannot be spelled inside
// operator content, which never crosses a line break. Elements whose
// reduced text carries one stay as they are.
func containsLineBreak(s string) bool {
	return strings.ContainsAny(s, "\n\r")
}

// baseRepr returns the markup spelling of an element's base content,
// every direct child except (optionally) rt elements. plain reports
// that the base was ordinary text with no markup or elements in it.
func baseRepr(n *html.Node, skipRT bool) (base string, plain bool) {
	plain = true
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.RawNode:
			sb.WriteString(c.Data)
			plain = false
		case html.ElementNode:
			if skipRT && c.DataAtom == atom.Rt {
				continue
			}
			if err := html.Render(&sb, c); err != nil {
				return "", false
			}
			plain = false
		}
	}
	return sb.String(), plain
}

func replaceWithRaw(n *html.Node, markup []byte) {
	raw := &html.Node{Type: html.RawNode, Data: string(markup)}
	n.Parent.InsertBefore(raw, n)
	n.Parent.RemoveChild(n)
}

// appendMarkupToken appends one bracketed operator occurrence. content
// must already be escaped. A raw base is emitted verbatim because it
// carries nested markup of its own.
func appendMarkupToken(dst []byte, base string, rawBase, over bool, content string) []byte {
	dst = append(dst, '[')
	if rawBase {
		dst = append(dst, base...)
	} else {
		dst = appendMarkupEscaped(dst, base, "[]")
	}
	dst = append(dst, ']')
	if over {
		dst = append(dst, overOp...)
	} else {
		dst = append(dst, underOp...)
	}
	dst = append(dst, content...)
	return append(dst, ')')
}

// markupSlotText returns the escaped markup spelling of slot text. Text
// that would read back as a decoration marker gets a leading backslash.
func markupSlotText(text string, under bool) string {
	esc := string(appendMarkupEscaped(nil, text, ")|"))
	if classify(esc, under).kind != slotText {
		esc = `\` + esc
	}
	return esc
}

func markupSlot(c slotContent, under bool) string {
	if c.kind == slotText {
		return markupSlotText(c.text, under)
	}
	return slotMarkup(c)
}

// decoMarkers maps an element's class list back to decoration markers.
func decoMarkers(classes []string) (over, under string) {
	line, wavy, double := false, false, false
	for _, c := range classes {
		switch c {
		case classBoutenOver:
			over = boutenMarker
		case classBoutenUnder:
			under = boutenMarker
		case classUnderline:
			line = true
		case classUnderlineWavy:
			wavy = true
		case classUnderlineDouble:
			double = true
		}
	}
	if line {
		switch {
		case wavy:
			under = underlineWavyMarker
		case double:
			under = underlineDoubleMarker
		default:
			under = underlineMarker
		}
	}
	return over, under
}

func reduceElement(n *html.Node) {
	var markup []byte
	var ok bool
	switch {
	case n.DataAtom == atom.Span:
		markup, ok = reduceDecoration(n)
	case hasClass(n, classMixed):
		markup, ok = reduceMixed(n)
	case hasClass(n, classDouble):
		markup, ok = reduceDouble(n)
	default:
		markup, ok = reduceSimple(n)
	}
	if ok {
		replaceWithRaw(n, markup)
	}
}

func reduceDecoration(n *html.Node) ([]byte, bool) {
	base, plain := baseRepr(n, false)
	if base == "" || containsLineBreak(base) {
		return nil, false
	}
	overM, underM := decoMarkers(classList(n))
	switch {
	case overM != "" && underM != "":
		return appendMarkupToken(nil, base, !plain, true, overM+"|"+underM), true
	case overM != "":
		return appendMarkupToken(nil, base, !plain, true, overM), true
	case underM != "":
		return appendMarkupToken(nil, base, !plain, false, underM), true
	}
	return nil, false
}

func reduceSimple(n *html.Node) ([]byte, bool) {
	under := hasClass(n, classUnder)
	if !under && !hasClass(n, classOver) {
		return nil, false
	}
	rt := findRT(n)
	if rt == nil {
		return nil, false
	}
	text, ok := nodeText(rt)
	if !ok || text == "" || containsLineBreak(text) {
		return nil, false
	}
	base, plain := baseRepr(n, true)
	if base == "" || containsLineBreak(base) {
		return nil, false
	}
	return appendMarkupToken(nil, base, !plain, !under, markupSlotText(text, under)), true
}

func reduceMixed(n *html.Node) ([]byte, bool) {
	textUnder := hasClass(n, classUnder)
	if !textUnder && !hasClass(n, classOver) {
		return nil, false
	}
	rt := findRT(n)
	if rt == nil {
		return nil, false
	}
	text, ok := nodeText(rt)
	if !ok || text == "" || containsLineBreak(text) {
		return nil, false
	}
	base, plain := baseRepr(n, true)
	if base == "" || containsLineBreak(base) {
		return nil, false
	}
	overM, underM := decoMarkers(classList(n))
	marker := underM
	if textUnder {
		marker = overM
	}
	if marker == "" {
		return nil, false
	}
	content := markupSlotText(text, textUnder) + "|" + marker
	return appendMarkupToken(nil, base, !plain, !textUnder, content), true
}

// reduceDouble handles elements carrying the "double" marker: the base
// holds the already-reduced inner annotation and the element's own rt
// holds the remaining slot. When the inner markup resolves cleanly to a
// single node missing exactly this element's slot, the two merge into
// pipe form on one operator. Otherwise the reduced base nests in
// brackets under this element's own operator.
func reduceDouble(n *html.Node) ([]byte, bool) {
	outerUnder := hasClass(n, classUnder)
	if !outerUnder && !hasClass(n, classOver) {
		return nil, false
	}
	rt := findRT(n)
	if rt == nil {
		return nil, false
	}
	text, ok := nodeText(rt)
	if !ok || text == "" || containsLineBreak(text) {
		return nil, false
	}
	base, plain := baseRepr(n, true)
	if base == "" || containsLineBreak(base) {
		return nil, false
	}

	if m, found := findMatch(base, 0, 0); found && m.baseStart == 0 {
		if nodes, end := resolveMatch(base, m); end == len(base) && len(nodes) == 1 {
			node := nodes[0]
			if node.slot(outerUnder).kind == slotEmpty && node.slot(!outerUnder).kind != slotEmpty {
				*node.slot(outerUnder) = slotContent{kind: slotText, text: text}
				content := markupSlot(node.over, false) + "|" + markupSlot(node.under, true)
				return appendMarkupToken(nil, node.base, false, true, content), true
			}
		}
	}
	return appendMarkupToken(nil, base, !plain, !outerUnder, markupSlotText(text, outerUnder)), true
}

// An alignedUnit is one element of a per-character run: a single base
// character with its slot segment(s). Empty rt text recovers the base
// character itself, undoing segment auto-hide.
type alignedUnit struct {
	key      string // class attribute, also the run boundary
	base     string
	over     string
	under    string
	hasOver  bool
	hasUnder bool
}

var (
	unitKeyOver   = classAnno + " " + classOver
	unitKeyUnder  = classAnno + " " + classUnder
	unitKeyDouble = classAnno + " " + classUnder + " " + classDouble
)

// unitParts splits a per-character element into its base character and
// rt segment. The children must be text followed by a single rt.
func unitParts(n *html.Node) (base, seg string, ok bool) {
	rt := n.LastChild
	if rt == nil || rt.Type != html.ElementNode || rt.DataAtom != atom.Rt {
		return "", "", false
	}
	var sb strings.Builder
	for c := n.FirstChild; c != rt; c = c.NextSibling {
		if c.Type != html.TextNode {
			return "", "", false
		}
		sb.WriteString(c.Data)
	}
	base = sb.String()
	if strings.ContainsAny(base, "<>") || len(graphemes(base)) != 1 {
		return "", "", false
	}
	seg, ok = nodeText(rt)
	if !ok {
		return "", "", false
	}
	if seg == "" {
		seg = base
	} else if seg == base {
		// A visible segment equal to its own character would
		// auto-hide when the coalesced markup renders again.
		return "", "", false
	}
	if strings.IndexFunc(base+seg, unicode.IsSpace) >= 0 {
		return "", "", false
	}
	return base, seg, true
}

func parseAlignedUnit(n *html.Node) (alignedUnit, bool) {
	if n.Type != html.ElementNode || n.DataAtom != atom.Ruby {
		return alignedUnit{}, false
	}
	var key string
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			key = a.Val
		}
	}
	switch key {
	case unitKeyOver, unitKeyUnder:
		base, seg, ok := unitParts(n)
		if !ok {
			return alignedUnit{}, false
		}
		u := alignedUnit{key: key, base: base}
		if key == unitKeyUnder {
			u.under, u.hasUnder = seg, true
		} else {
			u.over, u.hasOver = seg, true
		}
		return u, true
	case unitKeyDouble:
		inner := n.FirstChild
		rt := n.LastChild
		if inner == nil || rt == nil || inner.NextSibling != rt {
			return alignedUnit{}, false
		}
		if inner.Type != html.ElementNode || inner.DataAtom != atom.Ruby {
			return alignedUnit{}, false
		}
		if strings.Join(classList(inner), " ") != unitKeyOver {
			return alignedUnit{}, false
		}
		if rt.Type != html.ElementNode || rt.DataAtom != atom.Rt {
			return alignedUnit{}, false
		}
		base, overSeg, ok := unitParts(inner)
		if !ok {
			return alignedUnit{}, false
		}
		underSeg, ok := nodeText(rt)
		if !ok {
			return alignedUnit{}, false
		}
		if underSeg == "" {
			underSeg = base
		} else if underSeg == base {
			return alignedUnit{}, false
		}
		if strings.IndexFunc(underSeg, unicode.IsSpace) >= 0 {
			return alignedUnit{}, false
		}
		return alignedUnit{
			key:      key,
			base:     base,
			over:     overSeg,
			under:    underSeg,
			hasOver:  true,
			hasUnder: true,
		}, true
	}
	return alignedUnit{}, false
}

// alignedToken rebuilds the markup token for a coalesced run:
// the concatenated base in brackets with the segments space-joined.
func alignedToken(units []alignedUnit) []byte {
	var base, over, under []byte
	for i, u := range units {
		base = appendMarkupEscaped(base, u.base, "[]")
		if i > 0 {
			over = append(over, ' ')
			under = append(under, ' ')
		}
		over = appendMarkupEscaped(over, u.over, ")|")
		under = appendMarkupEscaped(under, u.under, ")|")
	}
	var dst []byte
	dst = append(dst, '[')
	dst = append(dst, base...)
	dst = append(dst, ']')
	switch {
	case units[0].hasOver && units[0].hasUnder:
		dst = append(dst, overOp...)
		dst = append(dst, over...)
		dst = append(dst, '|')
		dst = append(dst, under...)
	case units[0].hasOver:
		dst = append(dst, overOp...)
		dst = append(dst, over...)
	default:
		dst = append(dst, underOp...)
		dst = append(dst, under...)
	}
	return append(dst, ')')
}

// coalesceAlignedRuns joins adjacent per-character elements among n's
// children back into one aligned markup token. A lone element is left
// for the ordinary reducers; a run needs at least two units sharing a
// class attribute.
func coalesceAlignedRuns(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		unit, ok := parseAlignedUnit(c)
		if !ok {
			c = c.NextSibling
			continue
		}
		run := []*html.Node{c}
		units := []alignedUnit{unit}
		next := c.NextSibling
		for next != nil {
			u, ok := parseAlignedUnit(next)
			if !ok || u.key != unit.key {
				break
			}
			run = append(run, next)
			units = append(units, u)
			next = next.NextSibling
		}
		if len(run) < 2 {
			c = c.NextSibling
			continue
		}
		raw := &html.Node{Type: html.RawNode, Data: string(alignedToken(units))}
		n.InsertBefore(raw, run[0])
		for _, r := range run {
			n.RemoveChild(r)
		}
		c = next
	}
}
