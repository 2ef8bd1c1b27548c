// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trace starts OpenCensus spans. Sampled spans appear on the
// debug server's /tracez page.
package trace

import (
	"context"

	octrace "go.opencensus.io/trace"
)

// Span is an interface for a type that ends a span.
type Span interface {
	End()
}

// StartSpan starts a span with the given name, as a child of the span in
// ctx if there is one.
func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, s := octrace.StartSpan(ctx, name)
	return ctx, s
}

// SetSampleFraction sets the fraction of new traces that are sampled.
func SetSampleFraction(f float64) {
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.ProbabilitySampler(f)})
}
