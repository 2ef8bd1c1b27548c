// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frontend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/safehtml"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/content"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/trace"
)

// loadTimeout bounds a shared article load, which outlives the request
// that started it.
const loadTimeout = 30 * time.Second

// renderedArticle is an article with its body processed and its comments
// rendered. It is shared between concurrent requests and must not be
// modified.
type renderedArticle struct {
	*internal.Article
	content.Result
	Comments []*renderedComment
}

type renderedComment struct {
	Author    string
	Body      safehtml.HTML
	CreatedAt time.Time
}

// articlePage contains data for the article page template.
type articlePage struct {
	basePage
	*renderedArticle
	Body safehtml.HTML
}

func slugFromRequest(r *http.Request) (string, error) {
	slug := r.PathValue("slug")
	if !internal.ValidSlug(slug) {
		return "", fmt.Errorf("%w: bad slug %q", derrors.InvalidArgument, slug)
	}
	return slug, nil
}

// loadArticle fetches the article with the given slug and renders it.
// Concurrent loads of one slug share a single fetch.
func (s *Server) loadArticle(ctx context.Context, slug string) (*renderedArticle, error) {
	v, err, _ := s.loads.Do(slug, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.renderArticle(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return v.(*renderedArticle), nil
}

func (s *Server) renderArticle(ctx context.Context, slug string) (_ *renderedArticle, err error) {
	defer derrors.Wrap(&err, "renderArticle(ctx, %q)", slug)
	ctx, span := trace.StartSpan(ctx, "frontend.renderArticle")
	defer span.End()
	a, err := s.ds.GetArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.ds.GetComments(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	_, pspan := trace.StartSpan(ctx, "content.Process")
	ra := &renderedArticle{
		Article: a,
		Result:  s.processor.Process(a.MemoKey(), a.Content),
	}
	pspan.End()
	for _, c := range comments {
		ra.Comments = append(ra.Comments, &renderedComment{
			Author:    c.Author,
			Body:      s.processor.RenderComment(c.Body),
			CreatedAt: c.CreatedAt,
		})
	}
	return ra, nil
}

// serveArticle serves the page for the article at /articles/{slug}.
func (s *Server) serveArticle(w http.ResponseWriter, r *http.Request) error {
	slug, err := slugFromRequest(r)
	if err != nil {
		return err
	}
	ra, err := s.loadArticle(r.Context(), slug)
	if err != nil {
		return err
	}
	s.servePage(r.Context(), w, "article", articlePage{
		basePage:        s.newBasePage(ra.Title),
		renderedArticle: ra,
		Body:            ra.HTML,
	})
	return nil
}

// ArticleResponse is the JSON form of a processed article.
type ArticleResponse struct {
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	PublishedAt time.Time         `json:"published_at"`
	HTML        string            `json:"html"`
	TOC         []content.Heading `json:"toc"`
}

// serveArticleJSON serves the processed article at /api/articles/{slug}.
// The toc is an empty list when the article has no headings.
func (s *Server) serveArticleJSON(w http.ResponseWriter, r *http.Request) error {
	slug, err := slugFromRequest(r)
	if err != nil {
		return err
	}
	ra, err := s.loadArticle(r.Context(), slug)
	if err != nil {
		return err
	}
	toc := ra.TOC
	if toc == nil {
		toc = []content.Heading{}
	}
	serveJSON(w, r, http.StatusOK, ArticleResponse{
		Slug:        ra.Slug,
		Title:       ra.Title,
		Author:      ra.Author,
		PublishedAt: ra.PublishedAt,
		HTML:        ra.HTML.String(),
		TOC:         toc,
	})
	return nil
}
