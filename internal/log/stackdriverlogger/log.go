// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stackdriverlogger forwards leveled logs to Cloud Logging.
package stackdriverlogger

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"sync"

	"cloud.google.com/go/logging"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/log"
)

func init() {
	// Cloud Run treats stderr lines as errors.
	if os.Getenv("K_SERVICE") != "" {
		stdlog.SetOutput(os.Stdout)
	}
}

type labelsKey struct{}

// NewContextWithLabel creates a new context from ctx that adds a label that will
// appear in the log entry.
func NewContextWithLabel(ctx context.Context, key, value string) context.Context {
	oldLabels, _ := ctx.Value(labelsKey{}).(map[string]string)
	newLabels := map[string]string{}
	for k, v := range oldLabels {
		newLabels[k] = v
	}
	newLabels[key] = value
	return context.WithValue(ctx, labelsKey{}, newLabels)
}

type logger struct {
	sdlogger *logging.Logger
}

// Severity converts a log.Severity to its Cloud Logging counterpart.
func Severity(s log.Severity) logging.Severity {
	switch s {
	case log.SeverityDefault:
		return logging.Default
	case log.SeverityDebug:
		return logging.Debug
	case log.SeverityInfo:
		return logging.Info
	case log.SeverityWarning:
		return logging.Warning
	case log.SeverityError:
		return logging.Error
	case log.SeverityCritical:
		return logging.Critical
	default:
		panic(fmt.Errorf("unknown severity: %v", s))
	}
}

func (l *logger) Log(ctx context.Context, s log.Severity, payload any) {
	// Convert errors to strings, or they may serialize as the empty JSON object.
	if err, ok := payload.(error); ok {
		payload = err.Error()
	}
	labels, _ := ctx.Value(labelsKey{}).(map[string]string)
	l.sdlogger.Log(logging.Entry{
		Severity: Severity(s),
		Labels:   labels,
		Payload:  payload,
		Trace:    log.TraceID(ctx),
	})
}

func (l *logger) Flush() {
	l.sdlogger.Flush()
}

var (
	mu            sync.Mutex
	alreadyCalled bool
)

// New creates a Logger that writes to Cloud Logging, and a parent
// *logging.Logger for request start and end entries. Pass the first to
// log.Use; the pair groups a request's logs under its request entry.
//
// New can only be called once. If it is called a second time, it returns an error.
func New(ctx context.Context, logName, projectID string, opts []logging.LoggerOption) (_ log.Logger, _ *logging.Logger, err error) {
	defer derrors.Wrap(&err, "New(ctx, %q)", logName)
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	parent := client.Logger(logName, opts...)
	child := client.Logger(logName+"-child", opts...)
	mu.Lock()
	defer mu.Unlock()
	if alreadyCalled {
		return nil, nil, errors.New("already called once")
	}
	alreadyCalled = true
	return &logger{child}, parent, nil
}
