// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package internal contains the data types shared by the frontend and the
// data sources.
package internal

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ArticleSummary holds the fields of an article shown in listings.
type ArticleSummary struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Excerpt     string
	Author      string
	Category    string
	PublishedAt time.Time
}

// Article is a published article. Content is the raw HTML body as stored
// by the authoring tools; it must be processed by the content package
// before it is rendered.
type Article struct {
	ArticleSummary
	Content   string
	UpdatedAt time.Time
}

// Comment is an approved reader comment. Body is Markdown.
type Comment struct {
	ID        uuid.UUID
	ArticleID uuid.UUID
	Author    string
	Body      string
	CreatedAt time.Time
}

// MaxSlugLength is the longest slug accepted in a URL.
const MaxSlugLength = 200

var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well-formed article slug: lowercase
// letters and digits in groups separated by single hyphens.
func ValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugRegexp.MatchString(s)
}

// MemoKey returns the key under which the processed body of a is
// remembered.
func (a *Article) MemoKey() string {
	return a.ID.String()
}
