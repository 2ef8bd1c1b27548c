// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fakedatasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/derrors"
)

func TestFakeDataSource(t *testing.T) {
	ctx := context.Background()
	ds := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slug := range []string{"first", "second", "third"} {
		ds.MustInsertArticle(&internal.Article{
			ArticleSummary: internal.ArticleSummary{Slug: slug, Title: slug, PublishedAt: t0.Add(time.Duration(i) * time.Hour)},
			Content:        "<p>" + slug + "</p>",
		})
	}

	a, err := ds.GetArticle(ctx, "second")
	if err != nil {
		t.Fatal(err)
	}
	if a.Content != "<p>second</p>" {
		t.Errorf("Content = %q", a.Content)
	}
	// Modifying the result does not change the stored article.
	a.Content = "changed"
	if b, _ := ds.GetArticle(ctx, "second"); b.Content != "<p>second</p>" {
		t.Errorf("stored article was modified: %q", b.Content)
	}
	if got := ds.GetArticleCalls("second"); got != 2 {
		t.Errorf("GetArticleCalls = %d, want 2", got)
	}

	if _, err := ds.GetArticle(ctx, "missing"); !errors.Is(err, derrors.NotFound) {
		t.Errorf("got %v, want NotFound", err)
	}

	ss, err := ds.ListArticles(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	var slugs []string
	for _, s := range ss {
		slugs = append(slugs, s.Slug)
	}
	if diff := cmp.Diff([]string{"third", "second"}, slugs); diff != "" {
		t.Errorf("ListArticles mismatch (-want, +got):\n%s", diff)
	}

	ds.MustInsertComment(&internal.Comment{ArticleID: a.ID, Body: "later", CreatedAt: t0.Add(time.Hour)})
	ds.MustInsertComment(&internal.Comment{ArticleID: a.ID, Body: "earlier", CreatedAt: t0})
	cs, err := ds.GetComments(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 2 || cs[0].Body != "earlier" || cs[1].Body != "later" {
		t.Errorf("comments out of order: %+v", cs)
	}

	boom := errors.New("boom")
	ds.SetError(boom)
	if _, err := ds.ListArticles(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}
