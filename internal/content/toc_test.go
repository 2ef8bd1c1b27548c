// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractTOC(t *testing.T) {
	for _, test := range []struct {
		name     string
		in       string
		wantHTML string
		wantTOC  []Heading
	}{
		{
			name:     "no headings",
			in:       `<p>just text</p>`,
			wantHTML: `<p>just text</p>`,
		},
		{
			name:     "empty",
			in:       ``,
			wantHTML: ``,
		},
		{
			name:     "levels and text",
			in:       "<h2>A <em>b</em>\n  c</h2><p>x</p><h3>D</h3>",
			wantHTML: "<h2 id=\"heading-0\">A <em>b</em>\n  c</h2><p>x</p><h3 id=\"heading-1\">D</h3>",
			wantTOC: []Heading{
				{ID: "heading-0", Text: "A b c", Level: 2},
				{ID: "heading-1", Text: "D", Level: 3},
			},
		},
		{
			name:     "existing heading id replaced",
			in:       `<h4 id="custom" class="c">T</h4>`,
			wantHTML: `<h4 id="heading-0" class="c">T</h4>`,
			wantTOC:  []Heading{{ID: "heading-0", Text: "T", Level: 4}},
		},
		{
			name:     "colliding id removed",
			in:       `<p id="heading-1">x</p><h2>A</h2><h5>B</h5>`,
			wantHTML: `<p>x</p><h2 id="heading-0">A</h2><h5 id="heading-1">B</h5>`,
			wantTOC: []Heading{
				{ID: "heading-0", Text: "A", Level: 2},
				{ID: "heading-1", Text: "B", Level: 5},
			},
		},
		{
			name:     "non-colliding id kept",
			in:       `<p id="heading-7">x</p><h6>A</h6>`,
			wantHTML: `<p id="heading-7">x</p><h6 id="heading-0">A</h6>`,
			wantTOC:  []Heading{{ID: "heading-0", Text: "A", Level: 6}},
		},
		{
			name:     "nested headings in document order",
			in:       `<section><h2>A</h2><div><h3>B</h3></div></section><h2>C</h2>`,
			wantHTML: `<section><h2 id="heading-0">A</h2><div><h3 id="heading-1">B</h3></div></section><h2 id="heading-2">C</h2>`,
			wantTOC: []Heading{
				{ID: "heading-0", Text: "A", Level: 2},
				{ID: "heading-1", Text: "B", Level: 3},
				{ID: "heading-2", Text: "C", Level: 2},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			gotHTML, gotTOC := ExtractTOC(test.in)
			if gotHTML != test.wantHTML {
				t.Errorf("html:\ngot  %q\nwant %q", gotHTML, test.wantHTML)
			}
			if diff := cmp.Diff(test.wantTOC, gotTOC); diff != "" {
				t.Errorf("toc mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTOCIndexing(t *testing.T) {
	var b strings.Builder
	const n = 12
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<h%d>h%d</h%d><p>p</p>", i%6+1, i, i%6+1)
	}
	out, toc := ExtractTOC(b.String())
	if len(toc) != n {
		t.Fatalf("got %d entries, want %d", len(toc), n)
	}
	for i, h := range toc {
		if want := fmt.Sprintf("heading-%d", i); h.ID != want {
			t.Errorf("toc[%d].ID = %q, want %q", i, h.ID, want)
		}
		if want := i%6 + 1; h.Level != want {
			t.Errorf("toc[%d].Level = %d, want %d", i, h.Level, want)
		}
		if strings.Count(out, `id="`+h.ID+`"`) != 1 {
			t.Errorf("id %q does not appear exactly once", h.ID)
		}
	}
	// Running the extractor again gives the same ids.
	out2, toc2 := ExtractTOC(out)
	if out2 != out {
		t.Errorf("second extraction changed html")
	}
	if diff := cmp.Diff(toc, toc2); diff != "" {
		t.Errorf("second extraction changed toc (-first +second):\n%s", diff)
	}
}
