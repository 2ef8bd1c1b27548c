// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dcensus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/presspage/presspage/internal/config"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
)

func TestRouter(t *testing.T) {
	if err := Init(ServerResponseCount); err != nil {
		t.Fatal(err)
	}
	defer view.Unregister(ServerResponseCount)
	handler := func(w http.ResponseWriter, r *http.Request) {}
	tagger := func(route string, r *http.Request) string {
		tag := strings.Trim(route, "/")
		if addon := r.FormValue("tag"); addon != "" {
			tag += "-" + addon
		}
		return tag
	}
	router := NewRouter(tagger)
	router.HandleFunc("/A/", handler)
	router.HandleFunc("/B/", handler)
	ts := httptest.NewServer(router)
	defer ts.Close()

	requests := []string{"/A/B/C", "/B/A/C", "/A/", "/A/B?tag=special"}
	for _, request := range requests {
		url := ts.URL + request
		resp, err := ts.Client().Get(url)
		if err != nil {
			t.Fatalf("GET %s got error %v, want nil", url, err)
		}
		resp.Body.Close()
	}
	rows, err := view.RetrieveData(ServerResponseCount.Name)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int64{"A": 2, "B": 1, "A-special": 1}
	got := make(map[string]int64)
	for _, row := range rows {
		found := false
		for _, tag := range row.Tags {
			if tag.Key == ochttp.KeyServerRoute {
				found = true
				got[tag.Value] = row.Data.(*view.CountData).Value
				break
			}
		}
		if !found {
			t.Fatalf("missing route tag from %v", row)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected route tag counts (-want +got):\n%s", diff)
	}
}

func TestDebugServer(t *testing.T) {
	h, err := NewServer()
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(h)
	defer ts.Close()
	for _, test := range []struct {
		path, want string
	}{
		{"/", "/statsz"},
		{"/statsz", ""},
	} {
		resp, err := ts.Client().Get(ts.URL + test.path)
		if err != nil {
			t.Fatal(err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", test.path, resp.StatusCode)
		}
		if !strings.Contains(string(body), test.want) {
			t.Errorf("GET %s: body does not contain %q", test.path, test.want)
		}
	}
}

func TestExportToStackdriverWithoutProject(t *testing.T) {
	if err := ExportToStackdriver(&config.Config{ServiceID: "frontend"}); err != nil {
		t.Errorf("ExportToStackdriver with no project: %v", err)
	}
}
