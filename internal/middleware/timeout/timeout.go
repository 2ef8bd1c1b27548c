// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timeout bounds the time spent serving a request.
package timeout

import (
	"context"
	"net/http"
	"time"
)

// Timeout returns a new Middleware that cancels the context of each request
// after the given duration. Data source reads observe the cancellation and
// fail, which the frontend reports as an error page. A non-positive duration
// leaves requests unbounded.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if d <= 0 {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
