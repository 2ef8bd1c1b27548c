// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package content

import (
	"bytes"
	"strings"

	"github.com/google/safehtml"
	"github.com/presspage/presspage/internal/sanitizer"
	"rsc.io/markdown"
)

// RenderComment renders the Markdown comment body and sanitizes the
// result with the comment policy.
func (p *Processor) RenderComment(body string) safehtml.HTML {
	if strings.TrimSpace(body) == "" {
		return safehtml.HTML{}
	}
	var mp markdown.Parser
	doc := mp.Parse(body)
	var buf bytes.Buffer
	doc.PrintHTML(&buf)
	return gate(sanitizer.SanitizeComment(buf.String(), p.origin))
}
