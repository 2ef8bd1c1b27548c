// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/log"
)

// QueryLoggingDisabled stops logging of queries when true.
// For use in tests only: not concurrency-safe.
var QueryLoggingDisabled bool

var queryCounter atomic.Int64 // per-process counter for unique query IDs

type queryEndLogEntry struct {
	ID              string
	Query           string
	Args            string
	DurationSeconds float64
	Error           string `json:",omitempty"`
}

const (
	maxQueryLen = 300 // maximum length of displayed query
	maxArgs     = 20
	maxArgLen   = 50
)

// compactQuery replaces newlines with spaces, collapses adjacent whitespace
// and truncates the result.
func compactQuery(query string) string {
	var r []rune
	for _, c := range query {
		if c == '\n' {
			c = ' '
		}
		if len(r) == 0 || !unicode.IsSpace(r[len(r)-1]) || !unicode.IsSpace(c) {
			r = append(r, c)
		}
	}
	query = strings.TrimSpace(string(r))
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen] + "..."
	}
	return query
}

// argString constructs a short string of the args.
func argString(args []any) string {
	var argStrings []string
	for i := 0; i < len(args) && i < maxArgs; i++ {
		s := fmt.Sprint(args[i])
		if len(s) > maxArgLen {
			s = s[:maxArgLen] + "..."
		}
		argStrings = append(argStrings, s)
	}
	if len(args) > maxArgs {
		argStrings = append(argStrings, "...")
	}
	return strings.Join(argStrings, ", ")
}

func logQuery(ctx context.Context, query string, args []any, instanceID string) func(*error) {
	if QueryLoggingDisabled {
		return func(*error) {}
	}
	query = compactQuery(query)
	uid := generateLoggingID(instanceID)
	as := argString(args)

	log.Debugf(ctx, "%s %s args=%s", uid, query, as)
	start := time.Now()
	return func(errp *error) {
		dur := time.Since(start)
		if errp == nil { // happens with QueryRow
			log.Debugf(ctx, "%s done", uid)
			return
		}
		derrors.Wrap(errp, "DB running query %s", uid)
		entry := queryEndLogEntry{
			ID:              uid,
			Query:           query,
			Args:            as,
			DurationSeconds: dur.Seconds(),
		}
		if *errp == nil {
			log.Debug(ctx, entry)
			return
		}
		entry.Error = (*errp).Error()
		// Requests that go away cancel their queries. Those are not errors
		// worth reporting.
		logf := log.Error
		if errors.Is(ctx.Err(), context.Canceled) ||
			strings.Contains(entry.Error, "pq: canceling statement due to user request") {
			logf = log.Debug
		}
		logf(ctx, entry)
	}
}

func generateLoggingID(instanceID string) string {
	if instanceID == "" {
		instanceID = "local"
	} else if len(instanceID) > 4 {
		// Instance IDs are long strings. The low-order part seems quite random, so
		// shortening the ID will still likely result in something unique.
		instanceID = instanceID[len(instanceID)-4:]
	}
	return fmt.Sprintf("%s-%d", instanceID, queryCounter.Add(1))
}
