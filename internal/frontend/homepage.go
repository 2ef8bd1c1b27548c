// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frontend

import (
	"net/http"

	"github.com/presspage/presspage/internal"
)

// homepageArticles is the number of articles listed on the homepage.
const homepageArticles = 20

// homepage contains data for the homepage template.
type homepage struct {
	basePage
	Articles []*internal.ArticleSummary
}

func (s *Server) serveHomepage(w http.ResponseWriter, r *http.Request) error {
	articles, err := s.ds.ListArticles(r.Context(), homepageArticles)
	if err != nil {
		return err
	}
	s.servePage(r.Context(), w, "homepage", homepage{
		basePage: s.newBasePage(""),
		Articles: articles,
	})
	return nil
}
