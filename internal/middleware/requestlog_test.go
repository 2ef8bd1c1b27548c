// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/presspage/presspage/internal/log"
)

func TestRequestLog(t *testing.T) {
	tests := []struct {
		label   string
		handler http.HandlerFunc
		trace   string
		want    logState
	}{
		{
			label: "writes status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(400)
			},
			trace: "t1",
			want:  logState{Status: 400, Severity: logging.Info, Traces: []string{"t1", "t1"}, ContextTrace: "t1"},
		},
		{
			label:   "translates 200s",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			trace:   "t2",
			want:    logState{Status: 200, Severity: logging.Info, Traces: []string{"t2", "t2"}, ContextTrace: "t2"},
		},
		{
			label: "server errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			trace: "t3",
			want:  logState{Status: 500, Severity: logging.Error, Traces: []string{"t3", "t3"}, ContextTrace: "t3"},
		},
		{
			label: "unavailable is a warning",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			trace: "t4",
			want:  logState{Status: 503, Severity: logging.Warning, Traces: []string{"t4", "t4"}, ContextTrace: "t4"},
		},
	}

	for _, test := range tests {
		t.Run(test.label, func(t *testing.T) {
			lg := &fakeLog{}
			h := func(w http.ResponseWriter, r *http.Request) {
				lg.setContextTrace(log.TraceID(r.Context()))
				test.handler(w, r)
			}
			ts := httptest.NewServer(RequestLog(lg)(http.HandlerFunc(h)))
			defer ts.Close()
			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			if err != nil {
				t.Fatal(err)
			}
			req.Header.Set(traceHeader, test.trace)
			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatalf("GET returned error %v", err)
			}
			resp.Body.Close()
			if diff := cmp.Diff(test.want, lg.snapshot()); diff != "" {
				t.Errorf("mismatching log state (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestLogGeneratesTrace(t *testing.T) {
	lg := &fakeLog{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lg.setContextTrace(log.TraceID(r.Context()))
	})
	RequestLog(lg)(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	got := lg.snapshot()
	if got.ContextTrace == "" {
		t.Fatal("no trace ID in request context")
	}
	if len(got.Traces) != 2 || got.Traces[0] != got.ContextTrace || got.Traces[1] != got.ContextTrace {
		t.Errorf("entry traces = %v, want both %q", got.Traces, got.ContextTrace)
	}
}

type logState struct {
	Status       int
	Severity     logging.Severity
	Traces       []string
	ContextTrace string
}

type fakeLog struct {
	mu    sync.Mutex
	state logState
}

func (l *fakeLog) Log(entry logging.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.HTTPRequest != nil {
		l.state.Status = entry.HTTPRequest.Status
	}
	l.state.Severity = entry.Severity
	l.state.Traces = append(l.state.Traces, entry.Trace)
}

func (l *fakeLog) setContextTrace(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.ContextTrace = id
}

func (l *fakeLog) snapshot() logState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func TestIsRobot(t *testing.T) {
	for _, test := range []string{
		"AHC/2.1",
		"Apache-HttpClient/4.5.12 (Java/1.8.0_201)",
		"CCBot/2.0 (https://commoncrawl.org/faq/)",
		"Go-http-client/2.0",
		"Googlebot-Video/1.0",
		"Mozilla/5.0 (compatible; AhrefsBot/6.1; +http://ahrefs.com/robot/)",
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)",
		"Twitterbot/1.0",
		"Wget/1.20.3 (linux-gnu)",
		"curl/7.69.1",
		"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
		"python-requests/2.10.0",
	} {
		if !isRobot(test) {
			t.Errorf("isRobot(%q) = false; want true", test)
		}
	}
	for _, test := range []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/86.0.4240.80 Safari/537.36",
		"Safari/15609.1.20.111.8 CFNetwork/1125.2 Darwin/19.4.0 (x86_64)",
		"MobileSafari/604.1 CFNetwork/1126 Darwin/19.5.0",
	} {
		if isRobot(test) {
			t.Errorf("isRobot(%q) = true; want = false", test)
		}
	}
}
