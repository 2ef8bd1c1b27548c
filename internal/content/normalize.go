// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/presspage/presspage/internal/sanitizer"
	"golang.org/x/net/html"
)

// DefaultImageBasePath is the path prefix under which article images are
// served from object storage.
const DefaultImageBasePath = "/storage/v1/object/public/article-images/"

// ImageClass is the class given to every normalized <img>. The site
// stylesheet bounds its width, sets automatic height, and applies
// consistent spacing and rounding.
const ImageClass = "content-image"

// A Rule repairs one known class of malformed markup. Apply must leave
// input it does not recognize unchanged, and applying it twice must give
// the same result as applying it once.
type Rule struct {
	Name  string
	Apply func(string) string
}

// A Normalizer applies a fixed sequence of rules.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer returns a Normalizer that applies rules in the given order.
func NewNormalizer(rules ...Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize applies each rule in order to s.
func (n *Normalizer) Normalize(s string) string {
	for _, r := range n.rules {
		s = r.Apply(s)
	}
	return s
}

// Rules returns the names of n's rules, in order.
func (n *Normalizer) Rules() []string {
	var names []string
	for _, r := range n.rules {
		names = append(names, r.Name)
	}
	return names
}

// DefaultRules returns the repair rules for article bodies whose images
// live under imageBase. If imageBase is empty, DefaultImageBasePath is used.
//
// Order matters in two places. collapse-image-slashes must run before
// encode-image-whitespace, which recognizes image URLs by the canonical
// base path. strip-document-wrappers must run before normalize-images so
// that images inside a removed <head> are gone before images are rewritten.
func DefaultRules(imageBase string) []Rule {
	if imageBase == "" {
		imageBase = DefaultImageBasePath
	}
	imageBase = "/" + strings.Trim(imageBase, "/") + "/"
	return []Rule{
		{"strip-src-parens", stripSrcParens},
		{"collapse-image-slashes", collapseImageSlashes(imageBase)},
		{"encode-image-whitespace", encodeImageWhitespace(imageBase)},
		{"strip-alt-artifact", stripAltArtifact},
		{"downgrade-h1", downgradeH1},
		{"strip-code-fences", stripCodeFences},
		{"strip-document-wrappers", stripDocumentWrappers},
		{"normalize-images", normalizeImages},
	}
}

var srcParens = regexp.MustCompile(`(?i)(\bsrc\s*=\s*(?:"[^"]*"|'[^']*'))\)+`)

// stripSrcParens removes ")" characters that directly follow a quoted src
// value, left behind when a link wrapper was stripped upstream.
func stripSrcParens(s string) string {
	return srcParens.ReplaceAllString(s, "$1")
}

// collapseImageSlashes returns a rule that rewrites the image base path
// with any run of repeated slashes between or around its segments to the
// canonical base.
func collapseImageSlashes(base string) func(string) string {
	segs := strings.Split(strings.Trim(base, "/"), "/")
	for i, seg := range segs {
		segs[i] = regexp.QuoteMeta(seg)
	}
	re := regexp.MustCompile(`/+` + strings.Join(segs, `/+`) + `/+`)
	return func(s string) string {
		return re.ReplaceAllLiteralString(s, base)
	}
}

var (
	srcAttr   = regexp.MustCompile(`(?i)(\bsrc\s*=\s*)("[^"]*"|'[^']*')`)
	altAttr   = regexp.MustCompile(`(?i)(\balt\s*=\s*)("[^"]*"|'[^']*')`)
	urlSpaces = strings.NewReplacer(" ", "%20", "\t", "%09", "\n", "%0A", "\r", "%0D", "\f", "%0C")
)

// mapQuotedAttr applies f to the unquoted value of every attribute
// matched by re, keeping the original quote character.
func mapQuotedAttr(re *regexp.Regexp, s string, f func(string) string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		sub := re.FindStringSubmatch(m)
		prefix, quoted := sub[1], sub[2]
		q := quoted[:1]
		return prefix + q + f(quoted[1:len(quoted)-1]) + q
	})
}

// encodeImageWhitespace returns a rule that percent-encodes whitespace in
// src values that reference base.
func encodeImageWhitespace(base string) func(string) string {
	return func(s string) string {
		return mapQuotedAttr(srcAttr, s, func(v string) string {
			if !strings.Contains(v, base) {
				return v
			}
			return urlSpaces.Replace(strings.TrimSpace(v))
		})
	}
}

// stripAltArtifact removes the word "undefined" that upstream
// conversion concatenated into alt text.
func stripAltArtifact(s string) string {
	return mapQuotedAttr(altAttr, s, func(v string) string {
		return untilStable(v, func(v string) string {
			return strings.ReplaceAll(v, "undefined", "")
		})
	})
}

var (
	h1Open  = regexp.MustCompile(`(?i)<h1(\s[^>]*)?>`)
	h1Close = regexp.MustCompile(`(?i)</h1\s*>`)
)

// downgradeH1 turns <h1> into <h2>; the page title is the only h1.
func downgradeH1(s string) string {
	s = h1Open.ReplaceAllString(s, "<h2$1>")
	return h1Close.ReplaceAllLiteralString(s, "</h2>")
}

var (
	fenceLine    = regexp.MustCompile("(?m)```[a-zA-Z0-9_+-]*[ \t]*\r?$\n?")
	fence        = regexp.MustCompile("```")
	backtickRefs = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);?|&#([0-9]+);?|&(?:grave|DiacriticalGrave);`)
)

// stripCodeFences removes ``` markers. A marker that ends its line takes
// its language tag and line break with it. Backticks written as character
// references count as backticks.
func stripCodeFences(s string) string {
	return untilStable(s, func(s string) string {
		s = decodeBackticks(s)
		s = fenceLine.ReplaceAllLiteralString(s, "")
		return fence.ReplaceAllLiteralString(s, "")
	})
}

// decodeBackticks replaces character references to U+0060 with a literal
// backtick. Digits are consumed greedily, as an HTML tokenizer does, so
// "&#960;" is left alone.
func decodeBackticks(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return backtickRefs.ReplaceAllStringFunc(s, func(ref string) string {
		if ref[1] != '#' {
			return "`"
		}
		digits, base := strings.TrimSuffix(ref[2:], ";"), 10
		if digits[0] == 'x' || digits[0] == 'X' {
			digits, base = digits[1:], 16
		}
		if n, err := strconv.ParseUint(digits, base, 32); err == nil && n == '`' {
			return "`"
		}
		return ref
	})
}

// stripTextFences removes ``` markers from the text of the parsed fragment
// s. Sanitizing can join backticks that were separated in the source, for
// example by an unwrapped tag or a dropped comment. Unlike stripCodeFences
// it leaves language tags alone: the end of a text node is not the end of
// a line.
func stripTextFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	nodes, err := sanitizer.ParseFragment(s)
	if err != nil {
		return s
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			n.Data = untilStable(n.Data, func(s string) string {
				return fence.ReplaceAllLiteralString(s, "")
			})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return sanitizer.Render(nodes)
}

var documentWrappers = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`),
	regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head\s*>`),
	regexp.MustCompile(`(?i)</?html\b[^>]*>`),
	regexp.MustCompile(`(?i)</?body\b[^>]*>`),
}

// stripDocumentWrappers removes document-level tags, keeping the content
// of <html> and <body>. <head> is removed with its content.
func stripDocumentWrappers(s string) string {
	for _, re := range documentWrappers {
		s = re.ReplaceAllLiteralString(s, "")
	}
	return s
}

var imgStart = regexp.MustCompile(`(?i)<img`)

// normalizeImages rewrites every <img> tag into a self-closed tag with
// style and class removed and ImageClass added. Only real tags are
// rewritten; "<img" inside attribute values, comments or raw text is left
// alone. Everything else is copied through byte for byte.
func normalizeImages(s string) string {
	if !imgStart.MatchString(s) {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		raw := string(z.Raw())
		switch tt {
		case html.ErrorToken:
			// At the end of input Raw holds whatever could not be
			// tokenized, such as an unterminated tag.
			b.WriteString(raw)
			return b.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, hasAttr := z.TagName(); string(name) == "img" {
				writeImage(&b, z, hasAttr)
				continue
			}
		}
		b.WriteString(raw)
	}
}

func writeImage(b *strings.Builder, z *html.Tokenizer, hasAttr bool) {
	b.WriteString("<img ")
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		switch string(key) {
		case "style", "class":
			continue
		}
		fmt.Fprintf(b, "%s=\"%s\" ", key, html.EscapeString(string(val)))
	}
	b.WriteString(`class="` + ImageClass + `" />`)
}

func untilStable(s string, f func(string) string) string {
	for {
		t := f(s)
		if t == s {
			return s
		}
		s = t
	}
}
