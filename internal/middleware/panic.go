// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/presspage/presspage/internal/log"
)

// Panic returns a middleware that executes panicHandler on any panic
// originating from the delegate handler. http.ErrAbortHandler is
// re-raised so the server can abort the response.
func Panic(panicHandler http.Handler) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				e := recover()
				if e == nil {
					return
				}
				if e == http.ErrAbortHandler {
					panic(e)
				}
				log.Errorf(r.Context(), "middleware.Panic: %v\n%s", e, debug.Stack())
				panicHandler.ServeHTTP(w, r)
			}()
			h.ServeHTTP(w, r)
		})
	}
}
