// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedatasource provides a fake implementation of the internal.DataSource interface.
package fakedatasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/derrors"
)

// FakeDataSource provides a fake implementation of the internal.DataSource interface.
// It is safe for concurrent use.
type FakeDataSource struct {
	mu       sync.Mutex
	articles map[string]*internal.Article // by slug
	comments map[uuid.UUID][]*internal.Comment
	calls    map[string]int // GetArticle calls, by slug
	err      error
}

var _ internal.DataSource = (*FakeDataSource)(nil)

// New returns an initialized FakeDataSource.
func New() *FakeDataSource {
	return &FakeDataSource{
		articles: make(map[string]*internal.Article),
		comments: make(map[uuid.UUID][]*internal.Comment),
		calls:    make(map[string]int),
	}
}

// MustInsertArticle adds the article to the FakeDataSource, replacing any
// article with the same slug. It panics if the article has no slug. An
// article without an ID is given one.
func (ds *FakeDataSource) MustInsertArticle(a *internal.Article) {
	if a.Slug == "" {
		panic("MustInsertArticle: article has no slug")
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	c := *a
	ds.articles[a.Slug] = &c
}

// MustInsertComment adds the comment to the FakeDataSource.
func (ds *FakeDataSource) MustInsertComment(c *internal.Comment) {
	if c.ArticleID == uuid.Nil {
		panic("MustInsertComment: comment has no article")
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cc := *c
	ds.comments[c.ArticleID] = append(ds.comments[c.ArticleID], &cc)
}

// SetError makes every subsequent call return err. A nil err restores normal
// operation.
func (ds *FakeDataSource) SetError(err error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.err = err
}

// GetArticleCalls returns the number of GetArticle calls made for slug.
func (ds *FakeDataSource) GetArticleCalls(slug string) int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.calls[slug]
}

// GetArticle returns a copy of the article with the given slug.
func (ds *FakeDataSource) GetArticle(ctx context.Context, slug string) (*internal.Article, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.calls[slug]++
	if ds.err != nil {
		return nil, ds.err
	}
	if !internal.ValidSlug(slug) {
		return nil, fmt.Errorf("%w: bad slug", derrors.InvalidArgument)
	}
	a, ok := ds.articles[slug]
	if !ok {
		return nil, fmt.Errorf("%q: %w", slug, derrors.NotFound)
	}
	c := *a
	return &c, nil
}

// GetComments returns the comments on the article, oldest first.
func (ds *FakeDataSource) GetComments(ctx context.Context, articleID uuid.UUID) ([]*internal.Comment, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.err != nil {
		return nil, ds.err
	}
	var cs []*internal.Comment
	for _, c := range ds.comments[articleID] {
		cc := *c
		cs = append(cs, &cc)
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].CreatedAt.Before(cs[j].CreatedAt) })
	return cs, nil
}

// ListArticles returns up to limit articles, most recently published first.
func (ds *FakeDataSource) ListArticles(ctx context.Context, limit int) ([]*internal.ArticleSummary, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.err != nil {
		return nil, ds.err
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", derrors.InvalidArgument)
	}
	var ss []*internal.ArticleSummary
	for _, a := range ds.articles {
		s := a.ArticleSummary
		ss = append(ss, &s)
	}
	sort.Slice(ss, func(i, j int) bool {
		if !ss[i].PublishedAt.Equal(ss[j].PublishedAt) {
			return ss[i].PublishedAt.After(ss[j].PublishedAt)
		}
		return ss[i].Slug < ss[j].Slug
	})
	if len(ss) > limit {
		ss = ss[:limit]
	}
	return ss, nil
}
