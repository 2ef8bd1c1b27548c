// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sanitizer removes tags, attributes and URLs that could cause
// security issues from author-supplied HTML, and marks links that leave
// the site.
//
// Sanitization happens in two passes. A bluemonday allow-list policy
// drops everything that is not explicitly permitted, and a pass over the
// parsed tree annotates external anchors. Both passes are pure functions
// of their input.
package sanitizer

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	articlePolicy = ArticlePolicy()
	commentPolicy = CommentPolicy()
)

// Sanitize returns a version of the article fragment s that contains only
// allow-listed tags, attributes and URL schemes. Anchors that point away
// from origin are annotated with rel="noopener noreferrer" and
// target="_blank".
func Sanitize(s string, origin *url.URL) string {
	return sanitize(articlePolicy, s, origin)
}

// SanitizeComment is like Sanitize but applies the narrower comment policy.
func SanitizeComment(s string, origin *url.URL) string {
	return sanitize(commentPolicy, s, origin)
}

func sanitize(p *bluemonday.Policy, s string, origin *url.URL) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	clean := p.Sanitize(s)
	nodes, err := ParseFragment(clean)
	if err != nil {
		// Without the tree the anchors cannot be annotated; drop the
		// content rather than serve unmarked external links.
		return ""
	}
	for _, n := range nodes {
		annotateLinks(n, origin)
	}
	return Render(nodes)
}

// annotateLinks walks the tree rooted at n and marks every external anchor.
func annotateLinks(n *html.Node, origin *url.URL) {
	if n.Type == html.ElementNode && n.Data == "a" {
		if href, ok := Attr(n, "href"); ok && IsExternal(href, origin) {
			SetAttr(n, "rel", "noopener noreferrer")
			SetAttr(n, "target", "_blank")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		annotateLinks(c, origin)
	}
}

// IsExternal reports whether href leaves the site served at origin.
//
// An href that cannot be parsed is external. An href without a host
// (relative paths, fragments, mailto: and tel: links) is not. When origin
// is nil every href with a host is external. Hosts are compared without
// regard to case, including the port; a port that is the default for the
// URL's scheme is ignored.
func IsExternal(href string, origin *url.URL) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return true
	}
	if u.Host == "" {
		return false
	}
	if origin == nil {
		return true
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = origin.Scheme
	}
	return !strings.EqualFold(siteHost(u.Host, scheme), siteHost(origin.Host, origin.Scheme))
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// siteHost returns host without its port if the port is the default for
// scheme.
func siteHost(host, scheme string) string {
	if p, ok := defaultPorts[strings.ToLower(scheme)]; ok {
		return strings.TrimSuffix(host, ":"+p)
	}
	return host
}
