// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// github.com/alicebob/miniredis/v2 pulls in
// github.com/yuin/gopher-lua which uses a non
// build-tag-guarded use of the syscall package.
//go:build !plan9

package cache

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestCache(t *testing.T, namespace string) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return New(redis.NewClient(&redis.Options{Addr: s.Addr()}), namespace), s
}

func TestBasics(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache(t, "page")
	must(t, c.Ping(ctx))

	val := []byte("value")
	must(t, c.Put(ctx, "/articles/a", val, time.Minute))
	got, err := c.Get(ctx, "/articles/a")
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, val) {
		t.Fatalf("got %v, want %v", got, val)
	}
	if !s.Exists("page:/articles/a") {
		t.Error("key not stored under namespace")
	}

	s.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "/articles/a")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("after ttl: got %v, want nil", got)
	}

	must(t, c.Put(ctx, "k", val, 0))
	n, err := c.Delete(ctx, "k", "absent")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Delete: got %d, want 1", n)
	}
	if n, err := c.Delete(ctx); n != 0 || err != nil {
		t.Errorf("Delete(): got (%d, %v), want (0, nil)", n, err)
	}
	got, err = c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache(t, "page")
	// A key outside the namespace is never touched.
	must(t, s.Set("other:a", "x"))

	check := func(want []string) {
		t.Helper()
		got, err := c.client.Keys(ctx, "*").Result()
		if err != nil {
			t.Fatal(err)
		}
		sort.Strings(want)
		sort.Strings(got)
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
	}

	for _, k := range []string{"a", "b", "c", "a@x", "a/x"} {
		must(t, c.Put(ctx, k, []byte("value"), 0))
	}
	check([]string{"other:a", "page:a", "page:b", "page:c", "page:a@x", "page:a/x"})

	defer func(old int) { scanCount = old }(scanCount)
	scanCount = 1
	n, err := c.DeletePrefix(ctx, "a")
	must(t, err)
	if n != 3 {
		t.Errorf("DeletePrefix deleted %d keys, want 3", n)
	}
	check([]string{"other:a", "page:b", "page:c"})

	// Pattern characters in the prefix match only themselves.
	must(t, c.Put(ctx, "/p?x=1", []byte("value"), 0))
	must(t, c.Put(ctx, "/pax", []byte("value"), 0))
	n, err = c.DeletePrefix(ctx, "/p?")
	must(t, err)
	if n != 1 {
		t.Errorf("DeletePrefix(/p?) deleted %d keys, want 1", n)
	}
	check([]string{"other:a", "page:b", "page:c", "page:/pax"})

	must(t, c.Clear(ctx))
	check([]string{"other:a"})
}

func TestEscapeGlob(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"/a?b=1", `/a\?b=1`},
		{"*[x]", `\*\[x\]`},
		{`back\slash`, `back\\slash`},
	} {
		if got := escapeGlob(test.in); got != test.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache(t, "page")
	s.Close()
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping succeeded with server closed")
	}
	if _, err := c.Get(ctx, "k"); err == nil {
		t.Error("Get succeeded with server closed")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
