// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stackdriverlogger

import (
	"context"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/presspage/presspage/internal/log"
)

func TestSeverity(t *testing.T) {
	for in, want := range map[log.Severity]logging.Severity{
		log.SeverityDefault:  logging.Default,
		log.SeverityDebug:    logging.Debug,
		log.SeverityInfo:     logging.Info,
		log.SeverityWarning:  logging.Warning,
		log.SeverityError:    logging.Error,
		log.SeverityCritical: logging.Critical,
	} {
		if got := Severity(in); got != want {
			t.Errorf("Severity(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNewContextWithLabel(t *testing.T) {
	ctx := NewContextWithLabel(context.Background(), "slug", "a")
	ctx2 := NewContextWithLabel(ctx, "route", "/articles/{slug}")
	got, _ := ctx2.Value(labelsKey{}).(map[string]string)
	want := map[string]string{"slug": "a", "route": "/articles/{slug}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	// The parent context's labels are unchanged.
	old, _ := ctx.Value(labelsKey{}).(map[string]string)
	if len(old) != 1 {
		t.Errorf("parent labels = %v, want one entry", old)
	}
}
