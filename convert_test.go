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
	"testing"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/rubymark/internal/normhtml"
)

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "Over",
			markup: "[漢字]^^(かんじ)",
			want:   `<ruby class="ruby-anno ruby-over">漢字<rt>かんじ</rt></ruby>`,
		},
		{
			name:   "Under",
			markup: "[漢字]^_(kanji)",
			want:   `<ruby class="ruby-anno ruby-under">漢字<rt>kanji</rt></ruby>`,
		},
		{
			name:   "BareBase",
			markup: "foo 漢字^^(かんじ) bar",
			want:   `foo <ruby class="ruby-anno ruby-over">漢字<rt>かんじ</rt></ruby> bar`,
		},
		{
			name:   "PipeDouble",
			markup: "[北京]^^(ペキン|Beijing)",
			want:   `<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">北京<rt>ペキン</rt></ruby><rt>Beijing</rt></ruby>`,
		},
		{
			name:   "PipeDoubleUnderFirst",
			markup: "[北京]^_(Beijing|ペキン)",
			want:   `<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">北京<rt>ペキン</rt></ruby><rt>Beijing</rt></ruby>`,
		},
		{
			name:   "CapacityCap",
			markup: "[a]^^(x|y|z)",
			want:   `<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">a<rt>x</rt></ruby><rt>y</rt></ruby>`,
		},
		{
			name:   "ChainOverUnder",
			markup: "[北京]^^(ペキン)^_(Beijing)",
			want:   `<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">北京<rt>ペキン</rt></ruby><rt>Beijing</rt></ruby>`,
		},
		{
			name:   "ChainSaturated",
			markup: "[a]^^(x|y)^_(z)",
			want:   `<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">a<rt>x</rt></ruby><rt>y</rt></ruby>`,
		},
		{
			name:   "ChainSameKind",
			markup: "[a]^^(x)^^(y)",
			want:   `<ruby class="ruby-anno ruby-over">a<rt>x</rt></ruby><ruby class="ruby-anno ruby-over">a<rt>y</rt></ruby>`,
		},
		{
			name:   "BareBaseAfterAnnotation",
			markup: "[漢字]^^(かんじ)foo^^(x)",
			want: `<ruby class="ruby-anno ruby-over">漢字<rt>かんじ</rt></ruby>` +
				`<ruby class="ruby-anno ruby-over">foo<rt>x</rt></ruby>`,
		},
		{
			name:   "BoutenOver",
			markup: "[漢字]^^(..)",
			want:   `<span class="ruby-anno bouten-over">漢字</span>`,
		},
		{
			name:   "BoutenUnder",
			markup: "[漢字]^_(..)",
			want:   `<span class="ruby-anno bouten-under">漢字</span>`,
		},
		{
			name:   "Underline",
			markup: "[要点]^_(.-)",
			want:   `<span class="ruby-anno underline">要点</span>`,
		},
		{
			name:   "UnderlineWavy",
			markup: "[要点]^_(.~)",
			want:   `<span class="ruby-anno underline underline-wavy">要点</span>`,
		},
		{
			name:   "UnderlineDouble",
			markup: "[要点]^_(.=)",
			want:   `<span class="ruby-anno underline underline-double">要点</span>`,
		},
		{
			name:   "UnderlineNotSpecialOver",
			markup: "[a]^^(.-)",
			want:   `<ruby class="ruby-anno ruby-over">a<rt>.-</rt></ruby>`,
		},
		{
			name:   "SingleDotNotSpecial",
			markup: "[a]^^(.)",
			want:   `<ruby class="ruby-anno ruby-over">a<rt>.</rt></ruby>`,
		},
		{
			name:   "MixedOverTextUnderBouten",
			markup: "[漢字]^^(かんじ|..)",
			want:   `<ruby class="ruby-anno ruby-over ruby-mixed bouten-under">漢字<rt>かんじ</rt></ruby>`,
		},
		{
			name:   "MixedUnderTextOverBouten",
			markup: "[漢字]^_(kanji|..)",
			want:   `<ruby class="ruby-anno ruby-under ruby-mixed bouten-over">漢字<rt>kanji</rt></ruby>`,
		},
		{
			name:   "ChainMixed",
			markup: "[漢字]^^(a)^_(..)",
			want:   `<ruby class="ruby-anno ruby-over ruby-mixed bouten-under">漢字<rt>a</rt></ruby>`,
		},
		{
			name:   "MixedUnderline",
			markup: "[漢字]^^(かんじ|.-)",
			want:   `<ruby class="ruby-anno ruby-over ruby-mixed underline">漢字<rt>かんじ</rt></ruby>`,
		},
		{
			name:   "DecorationBoth",
			markup: "[漢字]^^(..|.-)",
			want:   `<span class="ruby-anno bouten-over underline">漢字</span>`,
		},
		{
			name:   "Aligned",
			markup: "[漢字]^^(かん じ)",
			want:   `<ruby class="ruby-anno ruby-over">漢<rt>かん</rt></ruby><ruby class="ruby-anno ruby-over">字<rt>じ</rt></ruby>`,
		},
		{
			name:   "AlignedAutoHide",
			markup: "[お茶]^^(お ちゃ)",
			want:   `<ruby class="ruby-anno ruby-over">お<rt></rt></ruby><ruby class="ruby-anno ruby-over">茶<rt>ちゃ</rt></ruby>`,
		},
		{
			name:   "AlignedMismatch",
			markup: "[漢字]^^(か ん じ)",
			want:   `<ruby class="ruby-anno ruby-over">漢字<rt>か ん じ</rt></ruby>`,
		},
		{
			name:   "AlignedDoubleBoth",
			markup: "[北京]^^(ペ キン|Bei jing)",
			want: `<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">北<rt>ペ</rt></ruby><rt>Bei</rt></ruby>` +
				`<ruby class="ruby-anno ruby-under ruby-double"><ruby class="ruby-anno ruby-over">京<rt>キン</rt></ruby><rt>jing</rt></ruby>`,
		},
		{
			name:   "AlignedDoubleOverOnly",
			markup: "[北京]^^(ペ キン|Beijing)",
			want: `<ruby class="ruby-anno ruby-under ruby-double">` +
				`<ruby class="ruby-anno ruby-over">北<rt>ペ</rt></ruby><ruby class="ruby-anno ruby-over">京<rt>キン</rt></ruby>` +
				`<rt>Beijing</rt></ruby>`,
		},
		{
			name:   "AlignedDoubleUnderOnly",
			markup: "[北京]^^(ペキン|Bei jing)",
			want: `<ruby class="ruby-anno ruby-over ruby-double">` +
				`<ruby class="ruby-anno ruby-under">北<rt>Bei</rt></ruby><ruby class="ruby-anno ruby-under">京<rt>jing</rt></ruby>` +
				`<rt>ペキン</rt></ruby>`,
		},
		{
			name:   "Escapes",
			markup: `[a\]b]^^(x\)y)`,
			want:   `<ruby class="ruby-anno ruby-over">a]b<rt>x)y</rt></ruby>`,
		},
		{
			name:   "EscapedPipe",
			markup: `[a]^^(x\|y)`,
			want:   `<ruby class="ruby-anno ruby-over">a<rt>x|y</rt></ruby>`,
		},
		{
			name:   "EscapedDotMarker",
			markup: `[a]^^(\..)`,
			want:   `<ruby class="ruby-anno ruby-over">a<rt>..</rt></ruby>`,
		},
		{
			name:   "HTMLEscaping",
			markup: "[a&b]^^(x<y)",
			want:   `<ruby class="ruby-anno ruby-over">a&amp;b<rt>x&lt;y</rt></ruby>`,
		},
		{
			name:   "LiteralAngleBase",
			markup: "[a<b]^^(x)",
			want:   `<ruby class="ruby-anno ruby-over">a&lt;b<rt>x</rt></ruby>`,
		},
		{
			name:   "Nested",
			markup: "[[漢字]^^(かんじ)]^_(kanji)",
			want:   `<ruby class="ruby-anno ruby-under"><ruby class="ruby-anno ruby-over">漢字<rt>かんじ</rt></ruby><rt>kanji</rt></ruby>`,
		},
		{
			name:   "Unterminated",
			markup: "[a]^^(x",
			want:   "[a]^^(x",
		},
		{
			name:   "EmptyContent",
			markup: "[a]^^()",
			want:   "[a]^^()",
		},
		{
			name:   "NoBase",
			markup: "^^(x)",
			want:   "^^(x)",
		},
		{
			name:   "SpaceBeforeOperator",
			markup: "word ^^(x)",
			want:   "word ^^(x)",
		},
		{
			name:   "EscapedOperator",
			markup: `a\^^(x)`,
			want:   `a\^^(x)`,
		},
		{
			name:   "PlainText",
			markup: "nothing to see",
			want:   "nothing to see",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := RenderHTML(test.markup)
			want := string(normhtml.NormalizeHTML([]byte(test.want)))
			if diff := cmp.Diff(want, string(normhtml.NormalizeHTML([]byte(got)))); diff != "" {
				t.Errorf("RenderHTML(%q) (-want +got):\n%s", test.markup, diff)
			}
		})
	}
}

func TestMarkupRoundTrip(t *testing.T) {
	tests := []string{
		"[漢字]^^(かんじ)",
		"[漢字]^_(kanji)",
		"[北京]^^(ペキン|Beijing)",
		"[北京]^^(ペ キン|Bei jing)",
		"[北京]^^(ペ キン|Beijing)",
		"[北京]^^(ペキン|Bei jing)",
		"[漢字]^^(かんじ|..)",
		"[漢字]^_(kanji|..)",
		"[漢字]^^(..)",
		"[要点]^_(.~)",
		"[漢字]^^(..|.-)",
		"[漢字]^^(かん じ)",
		"[お茶]^^(お ちゃ)",
		`[a\]b]^^(x\)y)`,
		`[a]^^(\..)`,
		"[a<b]^^(x)",
		"[[漢字]^^(かんじ)]^_(kanji)",
		"前の [漢字]^^(かんじ) 後の",
	}
	for _, markup := range tests {
		rendered := RenderHTML(markup)
		if got := ToMarkup(rendered); got != markup {
			t.Errorf("ToMarkup(RenderHTML(%q)) = %q", markup, got)
		}
	}
}

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"[漢字]^^(かんじ)", true},
		{"漢字^_(kanji)", true},
		{"^^(x)", false},
		{"[a]^^(x", false},
		{"plain", false},
		{"`[a]^^(x)`", false},
		{"{{ruby|a|b}}", false},
		{`<ruby class="ruby-anno ruby-over">a<rt>x</rt></ruby>`, false},
	}
	for _, test := range tests {
		if got := HasMarkup(test.text); got != test.want {
			t.Errorf("HasMarkup(%q) = %t; want %t", test.text, got, test.want)
		}
	}
}

func TestHasAnnotation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"[漢字]^^(かんじ)", true},
		{"{{ruby|a|b}}", true},
		{`<ruby class="ruby-anno ruby-over">a<rt>x</rt></ruby>`, true},
		{"plain", false},
		{"^^(x)", false},
		{"`[a]^^(x)`", false},
		{"`{{ruby|a|b}}`", false},
	}
	for _, test := range tests {
		if got := HasAnnotation(test.text); got != test.want {
			t.Errorf("HasAnnotation(%q) = %t; want %t", test.text, got, test.want)
		}
	}
}
