// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package postgres implements internal.DataSource over the presspage
// Postgres schema.
//
// The schema is owned by the publishing application. This package only
// reads from it:
//
//	articles(id uuid, slug text, title text, excerpt text, content text,
//	         author_name text, category text, published bool,
//	         published_at timestamptz, updated_at timestamptz)
//	comments(id uuid, article_id uuid, author_name text, body text,
//	         created_at timestamptz, approved bool)
package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/database"
)

// DB is a read-only data source backed by Postgres.
type DB struct {
	db *database.DB
}

var _ internal.DataSource = (*DB)(nil)

// New returns a new postgres DB.
func New(db *database.DB) *DB {
	return &DB{db: db}
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.db.Close()
}

// Underlying returns the *database.DB inside db.
func (db *DB) Underlying() *database.DB {
	return db.db
}

// psql builds statements with Postgres placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
