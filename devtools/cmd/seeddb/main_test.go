// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/presspage/presspage/internal/database"
	"github.com/presspage/presspage/internal/derrors"
)

func TestReadSeedFile(t *testing.T) {
	seeds, err := readSeedFile(t.Context(), "seed.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(seeds), 3; got != want {
		t.Fatalf("got %d articles, want %d", got, want)
	}
	a := seeds[0]
	if a.Slug != "welcome" || len(a.Comments) != 2 || !a.Comments[1].Pending {
		t.Errorf("unexpected first article: %+v", a)
	}
	if want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC); !a.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", a.PublishedAt, want)
	}
	if !seeds[2].Draft {
		t.Error("third article should be a draft")
	}
}

func TestReadSeedFileErrors(t *testing.T) {
	for _, test := range []struct {
		name, data string
	}{
		{"no slug", "articles:\n  - title: x\n"},
		{"duplicate", "articles:\n  - slug: a\n  - slug: a\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			f := filepath.Join(t.TempDir(), "seed.yaml")
			if err := os.WriteFile(f, []byte(test.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := readSeedFile(t.Context(), f)
			if !errors.Is(err, derrors.InvalidArgument) {
				t.Errorf("got %v, want InvalidArgument", err)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	sdb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sdb.Close()
	database.QueryLoggingDisabled = true
	defer func() { database.QueryLoggingDisabled = false }()
	db := database.New(sdb, "")

	id := uuid.MustParse("6f1d4b9e-3b1c-4f7a-9d2e-1a2b3c4d5e6f")
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &seedArticle{
		Slug:   "welcome",
		Title:  "Welcome",
		Author: "team",
		Comments: []*seedComment{
			{Author: "r", Body: "hi", CreatedAt: created},
		},
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE article_id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO comments")).
		WithArgs(sqlmock.AnyArg(), id.String(), "r", "hi", created, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := seed(t.Context(), db, a); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestArticleInsert(t *testing.T) {
	id := uuid.MustParse("6f1d4b9e-3b1c-4f7a-9d2e-1a2b3c4d5e6f")
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, args, err := articleInsert(&seedArticle{Slug: "s", Draft: true}, id, now).ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(args), 10; got != want {
		t.Fatalf("got %d args, want %d", got, want)
	}
	if args[0] != id.String() || args[1] != "s" || args[7] != false || args[9] != now {
		t.Errorf("unexpected args %v", args)
	}
}
