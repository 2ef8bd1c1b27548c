// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sanitizer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// urlSchemes are the schemes allowed in href and src. Relative and
// scheme-relative URLs are allowed separately.
var urlSchemes = []string{"http", "https", "mailto", "tel", "callto", "sms", "cid", "xmpp"}

// droppedContent lists elements removed together with everything inside
// them. Void elements (input, embed, frame) must not appear here: they
// have no end tag, and bluemonday would skip the rest of the document.
var droppedContent = []string{
	"script", "style", "object", "form", "textarea", "select", "button",
	"iframe", "frameset", "noscript", "noembed", "noframes", "template",
}

// articleElems are the elements kept in article bodies. Disallowed
// elements not in droppedContent are unwrapped: the tag goes, the text
// stays.
var articleElems = []string{
	"p", "br",
	"b", "strong", "i", "em", "u", "s", "strike", "del", "ins", "mark", "small", "sub", "sup",
	"span", "div",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"ul", "ol", "li",
	"blockquote", "code", "pre",
	"table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption",
	"hr",
	"article", "section", "main", "figure", "figcaption",
}

var commentElems = []string{
	"p", "br",
	"b", "strong", "i", "em", "u", "s", "del",
	"ul", "ol", "li",
	"blockquote", "code", "pre",
}

var (
	id          = regexp.MustCompile(`^[a-zA-Z0-9\:\-_\.]+$`)
	dimension   = regexp.MustCompile(`^[0-9]+(%|px)?$`)
	relTokens   = regexp.MustCompile(`^(?i)[a-z\s]+$`)
	targetNames = regexp.MustCompile(`^(?i)(_blank|_self|_parent|_top)$`)
)

// ArticlePolicy returns the allow-list applied to article bodies.
//
// href is allowed only on a, and src only on img. bluemonday validates
// URLs on those elements; allowing them elsewhere would let unchecked
// values through.
func ArticlePolicy() *bluemonday.Policy {
	p := basePolicy()
	p.AllowElements(articleElems...)
	p.AllowNoAttrs().OnElements(articleElems...)
	p.AllowElements("a", "img")

	p.AllowAttrs("src").OnElements("img")
	// alt and title are plain text, escaped on output.
	p.AllowAttrs("alt").OnElements("img")
	p.AllowAttrs("width", "height").Matching(dimension).OnElements("img", "table", "td", "th")
	p.AllowAttrs("title").Globally()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("id").Matching(id).Globally()
	return p
}

// CommentPolicy returns the allow-list applied to reader comments: inline
// formatting, paragraphs, lists, quotes, code and links.
func CommentPolicy() *bluemonday.Policy {
	p := basePolicy()
	p.AllowElements(commentElems...)
	p.AllowNoAttrs().OnElements(commentElems...)
	p.AllowElements("a")
	p.AllowAttrs("title").OnElements("a")
	return p
}

func basePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowURLSchemes(urlSchemes...)
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.SkipElementsContent(droppedContent...)

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("rel").Matching(relTokens).OnElements("a")
	p.AllowAttrs("target").Matching(targetNames).OnElements("a")
	return p
}
