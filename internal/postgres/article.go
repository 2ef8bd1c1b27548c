// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/database"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/trace"
)

var summaryColumns = []string{
	"a.id",
	"a.slug",
	"a.title",
	"a.excerpt",
	"a.author_name",
	"a.category",
	"a.published_at",
}

func articleQuery(slug string) squirrel.SelectBuilder {
	cols := append(append([]string{}, summaryColumns...), "a.content", "a.updated_at")
	return psql.Select(cols...).
		From("articles a").
		Where(squirrel.Eq{"a.slug": slug, "a.published": true})
}

// GetArticle returns the published article with the given slug.
// The content of an article with a NULL body is the empty string.
func (db *DB) GetArticle(ctx context.Context, slug string) (_ *internal.Article, err error) {
	defer derrors.Wrap(&err, "GetArticle(ctx, %q)", slug)
	ctx, span := trace.StartSpan(ctx, "postgres.GetArticle")
	defer span.End()
	if !internal.ValidSlug(slug) {
		return nil, fmt.Errorf("%w: bad slug", derrors.InvalidArgument)
	}
	row, err := db.db.SelectRow(ctx, articleQuery(slug))
	if err != nil {
		return nil, err
	}
	var a internal.Article
	dest := append(summaryScanArgs(&a.ArticleSummary),
		database.NullIsEmpty(&a.Content), &a.UpdatedAt)
	switch err := row.Scan(dest...); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, derrors.NotFound
	case err != nil:
		return nil, err
	}
	return &a, nil
}

func summaryScanArgs(s *internal.ArticleSummary) []any {
	return []any{
		&s.ID,
		&s.Slug,
		&s.Title,
		database.NullIsEmpty(&s.Excerpt),
		&s.Author,
		database.NullIsEmpty(&s.Category),
		&s.PublishedAt,
	}
}

func listQuery(limit int) squirrel.SelectBuilder {
	return psql.Select(summaryColumns...).
		From("articles a").
		Where(squirrel.Eq{"a.published": true}).
		OrderBy("a.published_at DESC", "a.slug").
		Limit(uint64(limit))
}

// ListArticles returns up to limit published articles, most recent first.
func (db *DB) ListArticles(ctx context.Context, limit int) (_ []*internal.ArticleSummary, err error) {
	defer derrors.Wrap(&err, "ListArticles(ctx, %d)", limit)
	ctx, span := trace.StartSpan(ctx, "postgres.ListArticles")
	defer span.End()
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", derrors.InvalidArgument)
	}
	var summaries []*internal.ArticleSummary
	err = db.db.RunSelect(ctx, listQuery(limit), func(rows *sql.Rows) error {
		var s internal.ArticleSummary
		if err := rows.Scan(summaryScanArgs(&s)...); err != nil {
			return err
		}
		summaries = append(summaries, &s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
