// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ruleByName(t *testing.T, name string) Rule {
	t.Helper()
	for _, r := range DefaultRules("") {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no rule named %q", name)
	return Rule{}
}

func TestRules(t *testing.T) {
	for _, test := range []struct {
		rule     string
		in, want string
	}{
		{"strip-src-parens", `<img src="a.png")>`, `<img src="a.png">`},
		{"strip-src-parens", `<img SRC='a.png'))>`, `<img SRC='a.png'>`},
		{"strip-src-parens", `<p>(see "a")</p>`, `<p>(see "a")</p>`},
		{
			"collapse-image-slashes",
			`<img src="/storage//v1/object/public/article-images//a.jpg">`,
			`<img src="/storage/v1/object/public/article-images/a.jpg">`,
		},
		{
			"collapse-image-slashes",
			`<img src="https://x.example.co//storage/v1/object/public///article-images/a.jpg">`,
			`<img src="https://x.example.co/storage/v1/object/public/article-images/a.jpg">`,
		},
		{"collapse-image-slashes", `<a href="//other/x">`, `<a href="//other/x">`},
		{
			"encode-image-whitespace",
			"<img src=\"/storage/v1/object/public/article-images/a b\tc.jpg\">",
			`<img src="/storage/v1/object/public/article-images/a%20b%09c.jpg">`,
		},
		{
			"encode-image-whitespace",
			`<img src=" /storage/v1/object/public/article-images/a.jpg ">`,
			`<img src="/storage/v1/object/public/article-images/a.jpg">`,
		},
		{"encode-image-whitespace", `<img src="/other/a b.jpg">`, `<img src="/other/a b.jpg">`},
		{"strip-alt-artifact", `<img alt="undefinedPhoto of a cat">`, `<img alt="Photo of a cat">`},
		{"strip-alt-artifact", `<img alt='Photoundefined'>`, `<img alt='Photo'>`},
		{"strip-alt-artifact", `<p>undefined</p>`, `<p>undefined</p>`},
		{"downgrade-h1", `<H1 class="x">T</H1 >`, `<h2 class="x">T</h2>`},
		{"downgrade-h1", `<h1>A</h1><h2>B</h2>`, `<h2>A</h2><h2>B</h2>`},
		{"downgrade-h1", `<header><h10>`, `<header><h10>`},
		{"strip-code-fences", "```go\ncode\n```", "code\n"},
		{"strip-code-fences", "use ```x``` here", "use x here"},
		{"strip-code-fences", "<p>&#96;&#96;&#96;js</p>", "<p>js</p>"},
		{"strip-code-fences", "<p>&#x60;&#X60;&grave;x</p>", "<p>x</p>"},
		{"strip-code-fences", "<p>&#96&#96&#96;go\ncode</p>", "<p>code</p>"},
		{"strip-code-fences", "<p>&#960;&#x600;&#96;</p>", "<p>&#960;&#x600;`</p>"},
		{
			"strip-document-wrappers",
			`<!DOCTYPE html><html lang="en"><head><title>t</title><img src="x"></head><body class="b"><p>a</p></body></html>`,
			`<p>a</p>`,
		},
		{"strip-document-wrappers", "<HEAD>\n<meta>\n</HEAD><p>x</p>", `<p>x</p>`},
		{
			"normalize-images",
			`<img style="width:10px" class="big" src="a.png" alt="A">`,
			`<img src="a.png" alt="A" class="content-image" />`,
		},
		{"normalize-images", `<IMG SRC=a.png>`, `<img src="a.png" class="content-image" />`},
		{"normalize-images", `<img src="a.png"/>`, `<img src="a.png" class="content-image" />`},
		{"normalize-images", `<img alt="a>b" src="x">`, `<img alt="a&gt;b" src="x" class="content-image" />`},
		{"normalize-images", `<img alt="Author’s photo 😀" src="x">`, `<img alt="Author’s photo 😀" src="x" class="content-image" />`},
		{"normalize-images", `<a title="<img src=x>" href="/y">t</a>`, `<a title="<img src=x>" href="/y">t</a>`},
		{"normalize-images", `<!-- <img src=x> --><p>a</p>`, `<!-- <img src=x> --><p>a</p>`},
		{"normalize-images", `<textarea><img src=x></textarea>`, `<textarea><img src=x></textarea>`},
		{"normalize-images", `<p>a</p><img src="x`, `<p>a</p><img src="x`},
		{"normalize-images", `<img>`, `<img class="content-image" />`},
	} {
		t.Run(test.rule, func(t *testing.T) {
			r := ruleByName(t, test.rule)
			got := r.Apply(test.in)
			if got != test.want {
				t.Errorf("%s(%q):\ngot  %q\nwant %q", test.rule, test.in, got, test.want)
			}
			if again := r.Apply(got); again != got {
				t.Errorf("%s not idempotent: %q -> %q", test.rule, got, again)
			}
		})
	}
}

func TestDefaultRulesOrder(t *testing.T) {
	want := []string{
		"strip-src-parens",
		"collapse-image-slashes",
		"encode-image-whitespace",
		"strip-alt-artifact",
		"downgrade-h1",
		"strip-code-fences",
		"strip-document-wrappers",
		"normalize-images",
	}
	got := NewNormalizer(DefaultRules("")...).Rules()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rule order mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomImageBase(t *testing.T) {
	n := NewNormalizer(DefaultRules("media/uploads")...)
	got := n.Normalize(`<img src="/media//uploads/a b.png">`)
	want := `<img src="/media/uploads/a%20b.png" class="content-image" />`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultRules("")...)
	for _, in := range []string{
		"",
		`<h1>Title</h1><p>text</p>`,
		`<img src="/storage/v1/object/public/article-images//photo name.jpg")>`,
		"```html\n<html><body><h1>x</h1></body></html>\n```",
		`<img alt="undefinedA" style="x" class="y" src='/storage//v1/object/public/article-images/a b.png'>`,
		"text with `inline` code and ``` fences",
	} {
		once := n.Normalize(in)
		if twice := n.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	}
}

func TestNormalizeNoRules(t *testing.T) {
	const in = `<h1>x</h1>`
	if got := NewNormalizer().Normalize(in); got != in {
		t.Errorf("got %q, want input unchanged", got)
	}
}
