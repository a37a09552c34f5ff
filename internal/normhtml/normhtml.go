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

// Package normhtml provides a function for normalizing HTML fragments
// which ignores insignificant output differences,
// such as attribute order and the order of class tokens.
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// NormalizeHTML strips insignificant output differences from an inline
// HTML fragment: runs of whitespace in text collapse to a single
// space, attributes sort by key, and the tokens of a class attribute
// sort within the value.
func NormalizeHTML(b []byte) []byte {
	type htmlAttribute struct {
		key   string
		value string
	}

	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var output []byte
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return output
		case html.TextToken:
			data := whitespaceRE.ReplaceAll(tok.Text(), []byte(" "))
			output = append(output, htmlEscaper.Replace(bytes.Clone(data))...)
		case html.EndTagToken:
			tag, _ := tok.TagName()
			output = append(output, "</"...)
			output = append(output, tag...)
			output = append(output, ">"...)
		case html.StartTagToken, html.SelfClosingTagToken:
			tag, hasAttr := tok.TagName()
			output = append(output, "<"...)
			output = append(output, tag...)
			if hasAttr {
				var attrs []htmlAttribute
				for {
					k, v, more := tok.TagAttr()
					attrs = append(attrs, htmlAttribute{string(k), string(v)})
					if !more {
						break
					}
				}
				sort.Slice(attrs, func(i, j int) bool {
					return attrs[i].key < attrs[j].key
				})
				for _, attr := range attrs {
					value := attr.value
					if attr.key == "class" {
						value = sortClassTokens(value)
					}
					output = append(output, " "...)
					output = append(output, attr.key...)
					if value != "" {
						output = append(output, `="`...)
						output = append(output, html.EscapeString(value)...)
						output = append(output, `"`...)
					}
				}
			}
			output = append(output, ">"...)
		case html.CommentToken:
			output = append(output, tok.Raw()...)
		}
	}
}

func sortClassTokens(value string) string {
	tokens := strings.Fields(value)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
