// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package content turns stored article bodies and reader comments into
// HTML that is safe to render.
//
// An article body passes through four stages: the normalizer repairs
// known malformed markup, the sanitizer removes everything outside the
// allow-list, the table-of-contents extractor assigns heading ids, and the
// render gate wraps the result as safehtml.HTML. None of the stages
// returns an error; every input produces some output.
package content

import (
	"net/url"
	"slices"

	"github.com/google/safehtml"
	"github.com/presspage/presspage/internal/lru"
	"github.com/presspage/presspage/internal/sanitizer"
)

// DefaultMemoSize is the number of processed articles a Processor
// remembers when Options.MemoSize is zero.
const DefaultMemoSize = 256

// Result is a processed article body.
type Result struct {
	HTML safehtml.HTML
	// TOC is nil when the body has no headings.
	TOC []Heading
}

func (r Result) clone() Result {
	return Result{HTML: r.HTML, TOC: slices.Clone(r.TOC)}
}

// Options configure a Processor.
type Options struct {
	// Origin is the site's own origin. Links to other hosts are marked
	// external. If nil, every link with a host is external.
	Origin *url.URL
	// ImageBasePath is the path prefix of stored article images.
	// If empty, DefaultImageBasePath is used.
	ImageBasePath string
	// MemoSize bounds the number of remembered results. Zero means
	// DefaultMemoSize; a negative value disables memoization.
	MemoSize int
}

// A Processor runs the article pipeline and remembers the last result for
// each key. It is safe for concurrent use.
type Processor struct {
	origin     *url.URL
	normalizer *Normalizer
	memo       *lru.Cache[string, memoEntry]
}

type memoEntry struct {
	raw    string
	result Result
}

// NewProcessor returns a Processor configured by opts.
func NewProcessor(opts Options) *Processor {
	p := &Processor{
		origin:     opts.Origin,
		normalizer: NewNormalizer(DefaultRules(opts.ImageBasePath)...),
	}
	size := opts.MemoSize
	if size == 0 {
		size = DefaultMemoSize
	}
	if size > 0 {
		p.memo = lru.New[string, memoEntry](size)
	}
	return p
}

// Process returns the rendered form of the article body raw. key
// identifies the article; when the body stored for key is unchanged
// since the last call, the remembered result is returned. The result is
// the same either way.
func (p *Processor) Process(key, raw string) Result {
	if p.memo != nil {
		if e, ok := p.memo.Get(key); ok && e.raw == raw {
			return e.result.clone()
		}
	}
	r := p.process(raw)
	if p.memo != nil {
		p.memo.Put(key, memoEntry{raw: raw, result: r})
	}
	return r.clone()
}

// Forget drops the remembered result for key.
func (p *Processor) Forget(key string) {
	if p.memo != nil {
		p.memo.Delete(key)
	}
}

// MemoStats reports the memo cache counters. It returns the zero value
// when memoization is disabled.
func (p *Processor) MemoStats() lru.Stats {
	if p.memo == nil {
		return lru.Stats{}
	}
	return p.memo.Stats()
}

func (p *Processor) process(raw string) Result {
	s := p.normalizer.Normalize(raw)
	s = sanitizer.Sanitize(s, p.origin)
	s = stripTextFences(s)
	s, toc := ExtractTOC(s)
	return Result{HTML: gate(s), TOC: toc}
}

// Process runs the article pipeline on raw with the default image base
// path and no memoization.
func Process(raw string, origin *url.URL) Result {
	return NewProcessor(Options{Origin: origin, MemoSize: -1}).process(raw)
}
