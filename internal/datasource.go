// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"context"

	"github.com/google/uuid"
)

// DataSource is the interface used by the frontend to read published
// content. Implementations are read-only.
type DataSource interface {
	// See the internal/postgres package for further documentation of these
	// methods, particularly as they pertain to the main postgres implementation.

	// GetArticle returns the published article with the given slug. It
	// returns an error wrapping derrors.NotFound if there is none.
	GetArticle(ctx context.Context, slug string) (*Article, error)
	// GetComments returns the approved comments on the article with the
	// given id, oldest first.
	GetComments(ctx context.Context, articleID uuid.UUID) ([]*Comment, error)
	// ListArticles returns up to limit published articles, most recently
	// published first.
	ListArticles(ctx context.Context, limit int) ([]*ArticleSummary, error)
}
