// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"fmt"
	"strings"

	"github.com/presspage/presspage/internal/sanitizer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is an entry in an article's table of contents.
type Heading struct {
	// ID is the id attribute written onto the heading element.
	ID string `json:"id"`
	// Text is the heading's text content with markup removed and
	// whitespace collapsed.
	Text string `json:"text"`
	// Level is the heading level, 1 through 6.
	Level int `json:"level"`
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3,
	atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

func headingID(i int) string { return fmt.Sprintf("heading-%d", i) }

// ExtractTOC assigns the id "heading-N" to the Nth heading of the
// sanitized fragment s, in document order, and returns the rewritten
// fragment together with one Heading per heading element. Other elements
// whose id equals an assigned id lose that id.
//
// If s has no headings, ExtractTOC returns s unchanged and a nil slice.
func ExtractTOC(s string) (string, []Heading) {
	nodes, err := sanitizer.ParseFragment(s)
	if err != nil {
		return s, nil
	}
	var (
		toc    []Heading
		others []*html.Node // non-heading elements with an id
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level, ok := headingLevels[n.DataAtom]; ok && n.Namespace == "" {
				id := headingID(len(toc))
				sanitizer.SetAttr(n, "id", id)
				toc = append(toc, Heading{ID: id, Text: textContent(n), Level: level})
			} else if _, ok := sanitizer.Attr(n, "id"); ok {
				others = append(others, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	if len(toc) == 0 {
		return s, nil
	}
	assigned := make(map[string]bool, len(toc))
	for _, h := range toc {
		assigned[h.ID] = true
	}
	for _, n := range others {
		if id, _ := sanitizer.Attr(n, "id"); assigned[id] {
			sanitizer.RemoveAttr(n, "id")
		}
	}
	return sanitizer.Render(nodes), toc
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
