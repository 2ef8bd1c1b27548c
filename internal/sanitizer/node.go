// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sanitizer

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ParseFragment parses s as the contents of a <body> element.
func ParseFragment(s string) ([]*html.Node, error) {
	document, err := html.Parse(strings.NewReader("<html><head></head><body></body></html>"))
	if err != nil {
		panic(fmt.Errorf("error parsing document: %v", err))
	}
	body := document.FirstChild.LastChild // document.FirstChild is the <html> node
	return html.ParseFragment(strings.NewReader(s), body)
}

// Render serializes nodes in order.
func Render(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		// Writes to a strings.Builder do not fail.
		_ = html.Render(&b, n)
	}
	return b.String()
}

// Attr returns the value of the attribute key on n and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the attribute key=val on n, replacing an existing value in
// place or appending a new attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes the attribute key from n, if present.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}
