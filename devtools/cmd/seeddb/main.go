// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The seeddb command populates a development database with the articles
// and comments listed in a seed file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver
	"github.com/presspage/presspage/internal/config/serverconfig"
	"github.com/presspage/presspage/internal/database"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	seedfile     = flag.String("seed", "devtools/cmd/seeddb/seed.yaml", "filename containing articles for seeding the database")
	createSchema = flag.Bool("create_schema", false, "create the articles and comments tables if they do not exist")
)

func main() {
	flag.Parse()

	ctx := context.Background()
	cfg, err := serverconfig.Init(ctx)
	if err != nil {
		log.Fatal(ctx, err)
	}

	db, err := database.Open("postgres", cfg.DBConnInfo(), "seeddb")
	if err != nil {
		log.Fatalf(ctx, "database.Open for host %s failed with %v", cfg.DBHost, err)
	}
	defer db.Close()

	if *createSchema {
		if _, err := db.Exec(ctx, schema); err != nil {
			log.Fatal(ctx, err)
		}
	}
	seeds, err := readSeedFile(ctx, *seedfile)
	if err != nil {
		log.Fatal(ctx, err)
	}
	if err := run(ctx, db, seeds); err != nil {
		log.Fatal(ctx, err)
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id uuid PRIMARY KEY,
	slug text NOT NULL UNIQUE,
	title text NOT NULL,
	excerpt text,
	content text,
	author_name text NOT NULL,
	category text,
	published boolean NOT NULL DEFAULT false,
	published_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS comments (
	id uuid PRIMARY KEY,
	article_id uuid NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	author_name text NOT NULL,
	body text NOT NULL,
	created_at timestamptz NOT NULL,
	approved boolean NOT NULL DEFAULT false
);`

type seedFile struct {
	Articles []*seedArticle `yaml:"articles"`
}

type seedArticle struct {
	Slug        string         `yaml:"slug"`
	Title       string         `yaml:"title"`
	Excerpt     string         `yaml:"excerpt"`
	Author      string         `yaml:"author"`
	Category    string         `yaml:"category"`
	Draft       bool           `yaml:"draft"`
	PublishedAt time.Time      `yaml:"published_at"`
	Content     string         `yaml:"content"`
	Comments    []*seedComment `yaml:"comments"`
}

type seedComment struct {
	Author    string    `yaml:"author"`
	Body      string    `yaml:"body"`
	CreatedAt time.Time `yaml:"created_at"`
	Pending   bool      `yaml:"pending"`
}

// readSeedFile reads the YAML file of articles to insert.
func readSeedFile(ctx context.Context, filename string) (_ []*seedArticle, err error) {
	defer derrors.Wrap(&err, "readSeedFile %q", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, a := range sf.Articles {
		if a.Slug == "" {
			return nil, fmt.Errorf("%w: article %q has no slug", derrors.InvalidArgument, a.Title)
		}
		if seen[a.Slug] {
			return nil, fmt.Errorf("%w: duplicate slug %q", derrors.InvalidArgument, a.Slug)
		}
		seen[a.Slug] = true
	}
	log.Infof(ctx, "read %d articles from %s", len(sf.Articles), filename)
	return sf.Articles, nil
}

// maxConcurrentSeeds bounds the number of articles written at once.
const maxConcurrentSeeds = 4

func run(ctx context.Context, db *database.DB, seeds []*seedArticle) error {
	start := time.Now()
	var r results
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSeeds)
	for _, a := range seeds {
		g.Go(func() error {
			t := time.Now()
			if err := seed(gctx, db, a); err != nil {
				return err
			}
			r.add(a.Slug, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Infof(ctx, "Successfully seeded all articles: %v", time.Since(start))
	for _, line := range r.lines() {
		log.Info(ctx, line)
	}
	return nil
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func articleInsert(a *seedArticle, id uuid.UUID, now time.Time) squirrel.InsertBuilder {
	return psql.Insert("articles").
		Columns("id", "slug", "title", "excerpt", "content", "author_name",
			"category", "published", "published_at", "updated_at").
		Values(id.String(), a.Slug, a.Title, a.Excerpt, a.Content, a.Author,
			a.Category, !a.Draft, a.PublishedAt, now).
		Suffix(`ON CONFLICT (slug) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			content = excluded.content,
			author_name = excluded.author_name,
			category = excluded.category,
			published = excluded.published,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
		RETURNING id`)
}

func commentsInsert(articleID uuid.UUID, comments []*seedComment) squirrel.InsertBuilder {
	b := psql.Insert("comments").
		Columns("id", "article_id", "author_name", "body", "created_at", "approved")
	for _, c := range comments {
		b = b.Values(uuid.NewString(), articleID.String(), c.Author, c.Body, c.CreatedAt, !c.Pending)
	}
	return b
}

// seed upserts a and replaces its comments.
func seed(ctx context.Context, db *database.DB, a *seedArticle) (err error) {
	defer derrors.Wrap(&err, "seed(ctx, db, %q)", a.Slug)

	var id uuid.UUID
	row, err := db.SelectRow(ctx, articleInsert(a, uuid.New(), time.Now().UTC()))
	if err != nil {
		return err
	}
	if err := row.Scan(&id); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, `DELETE FROM comments WHERE article_id = $1`, id.String()); err != nil {
		return err
	}
	if len(a.Comments) == 0 {
		return nil
	}
	q, args, err := commentsInsert(id, a.Comments).ToSql()
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, q, args...)
	return err
}

type results struct {
	mu    sync.Mutex
	slugs map[string]time.Duration
}

func (r *results) add(slug string, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugs == nil {
		r.slugs = map[string]time.Duration{}
	}
	r.slugs[slug] = time.Since(start)
}

func (r *results) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for k := range r.slugs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s | %v", k, r.slugs[k]))
	}
	return lines
}
