// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type entry struct {
	Severity Severity
	Payload  string
	TraceID  string
}

// recorder is a Logger that keeps every entry it receives.
type recorder struct {
	entries []entry
	flushed int
}

func (r *recorder) Log(ctx context.Context, s Severity, payload any) {
	r.entries = append(r.entries, entry{s, fmt.Sprint(payload), TraceID(ctx)})
}

func (r *recorder) Flush() { r.flushed++ }

// useRecorder installs a recorder at level and restores the previous
// logger and level when the test ends. Tests using it must not run in
// parallel.
func useRecorder(t *testing.T, level string) *recorder {
	t.Helper()
	oldLogger, oldLevel := logger, getLevel()
	t.Cleanup(func() {
		Use(oldLogger)
		mu.Lock()
		currentLevel = oldLevel
		mu.Unlock()
	})
	r := &recorder{}
	Use(r)
	SetLevel(level)
	return r
}

// Level names come from PRESSPAGE_LOG_LEVEL, so they are matched without
// regard to case.
func TestSetLevel(t *testing.T) {
	useRecorder(t, "")
	for _, test := range []struct {
		env  string
		want Severity
	}{
		{"", SeverityDefault},
		{"verbose", SeverityDefault},
		{"debug", SeverityDebug},
		{"INFO", SeverityInfo},
		{"Warning", SeverityWarning},
		{"error", SeverityError},
		{"fatal", SeverityCritical},
		{"critical", SeverityDefault},
	} {
		SetLevel(test.env)
		if got := getLevel(); got != test.want {
			t.Errorf("PRESSPAGE_LOG_LEVEL=%q: level = %s, want %s", test.env, got, test.want)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		level string
		want  []entry
	}{
		{
			level: "",
			want: []entry{
				{SeverityDebug, "memo miss for welcome", ""},
				{SeverityInfo, "serving article welcome", ""},
				{SeverityWarning, "page cache unavailable", ""},
				{SeverityError, "GetArticle(welcome): connection refused", ""},
			},
		},
		{
			level: "warning",
			want: []entry{
				{SeverityWarning, "page cache unavailable", ""},
				{SeverityError, "GetArticle(welcome): connection refused", ""},
			},
		},
		{
			level: "error",
			want: []entry{
				{SeverityError, "GetArticle(welcome): connection refused", ""},
			},
		},
	} {
		t.Run(fmt.Sprintf("level=%q", test.level), func(t *testing.T) {
			r := useRecorder(t, test.level)
			Debugf(ctx, "memo miss for %s", "welcome")
			Info(ctx, "serving article welcome")
			Warning(ctx, "page cache unavailable")
			Errorf(ctx, "GetArticle(%s): %v", "welcome", "connection refused")
			if diff := cmp.Diff(test.want, r.entries); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTraceIDReachesLogger(t *testing.T) {
	r := useRecorder(t, "info")
	ctx := context.Background()
	if got := TraceID(ctx); got != "" {
		t.Errorf("TraceID(background) = %q, want empty", got)
	}
	ctx = NewContextWithTraceID(ctx, "105445aa7843bc8bf206b12000100000/1")
	Infof(ctx, "GET %s", "/articles/welcome")
	want := []entry{{SeverityInfo, "GET /articles/welcome", "105445aa7843bc8bf206b12000100000/1"}}
	if diff := cmp.Diff(want, r.entries); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSeverityString(t *testing.T) {
	for s, want := range map[Severity]string{
		SeverityDefault:  "Default",
		SeverityWarning:  "Warning",
		SeverityCritical: "Critical",
		Severity(42):     "Severity(42)",
	} {
		if got := s.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
