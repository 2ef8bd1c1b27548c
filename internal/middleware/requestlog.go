// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/logging"
	"github.com/google/uuid"
	"github.com/presspage/presspage/internal/log"
)

// Logger is the interface used to write request logs to Cloud Logging.
// *logging.Logger implements it.
type Logger interface {
	Log(logging.Entry)
}

// LocalLogger is a logger that can be used when running locally (i.e.: not on
// GCP)
type LocalLogger struct{}

// Log implements the Logger interface via our internal log package.
func (l LocalLogger) Log(entry logging.Entry) {
	var msg strings.Builder
	if entry.HTTPRequest != nil {
		if entry.HTTPRequest.Status != 0 {
			msg.WriteString(strconv.Itoa(entry.HTTPRequest.Status) + " ")
		}
		if entry.HTTPRequest.Request != nil {
			msg.WriteString(entry.HTTPRequest.Request.Method + " " + entry.HTTPRequest.Request.URL.Path + " ")
		}
		if entry.HTTPRequest.Latency != 0 {
			msg.WriteString(entry.HTTPRequest.Latency.Round(time.Millisecond).String() + " ")
		}
	}
	msg.WriteString(fmt.Sprint(entry.Payload))
	log.Debug(context.Background(), msg.String())
}

// traceHeader carries the trace ID set by the Cloud Run front end.
const traceHeader = "X-Cloud-Trace-Context"

// RequestLog returns a middleware that logs the start and end of each
// incoming request using the given logger. The trace ID of the request is
// added to the request context so that log lines written while serving it
// can be correlated. Requests arriving without one are given a fresh ID.
func RequestLog(lg Logger) Middleware {
	return func(h http.Handler) http.Handler {
		return &handler{delegate: h, logger: lg}
	}
}

type handler struct {
	delegate http.Handler
	logger   Logger
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	traceID := r.Header.Get(traceHeader)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	severity := logging.Info
	if r.Method == http.MethodGet && r.URL.Path == "/healthz" {
		severity = logging.Debug
	}
	h.logger.Log(logging.Entry{
		HTTPRequest: &logging.HTTPRequest{Request: r},
		Payload: map[string]string{
			"requestType": "request start",
		},
		Severity: severity,
		Trace:    traceID,
	})
	w2 := &responseWriter{ResponseWriter: w}
	h.delegate.ServeHTTP(w2, r.WithContext(log.NewContextWithTraceID(r.Context(), traceID)))
	s := severity
	if w2.status == http.StatusServiceUnavailable {
		// An unreachable backend is a warning, not an error.
		s = logging.Warning
	} else if w2.status >= 500 {
		s = logging.Error
	}
	h.logger.Log(logging.Entry{
		HTTPRequest: &logging.HTTPRequest{
			Request: r,
			Status:  translateStatus(w2.status),
			Latency: time.Since(start),
		},
		Payload: map[string]any{
			"requestType": "request end",
			"isRobot":     isRobot(r.Header.Get("User-Agent")),
		},
		Severity: s,
		Trace:    traceID,
	})
}

var browserAgentPrefixes = []string{
	"MobileSafari/",
	"Mozilla/",
	"Opera/",
	"Safari/",
}

func isRobot(userAgent string) bool {
	if strings.Contains(strings.ToLower(userAgent), "bot/") || strings.Contains(userAgent, "robot") {
		return true
	}
	for _, b := range browserAgentPrefixes {
		if strings.HasPrefix(userAgent, b) {
			return false
		}
	}
	return true
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func translateStatus(code int) int {
	if code == 0 {
		return http.StatusOK
	}
	return code
}
