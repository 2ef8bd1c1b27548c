// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postgres

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/trace"
)

func commentsQuery(articleID uuid.UUID) squirrel.SelectBuilder {
	return psql.Select("c.id", "c.article_id", "c.author_name", "c.body", "c.created_at").
		From("comments c").
		Where(squirrel.Eq{"c.article_id": articleID.String(), "c.approved": true}).
		OrderBy("c.created_at", "c.id")
}

// GetComments returns the approved comments on the article, oldest first.
func (db *DB) GetComments(ctx context.Context, articleID uuid.UUID) (_ []*internal.Comment, err error) {
	defer derrors.Wrap(&err, "GetComments(ctx, %s)", articleID)
	ctx, span := trace.StartSpan(ctx, "postgres.GetComments")
	defer span.End()
	var comments []*internal.Comment
	err = db.db.RunSelect(ctx, commentsQuery(articleID), func(rows *sql.Rows) error {
		var c internal.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return err
		}
		comments = append(comments, &c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
