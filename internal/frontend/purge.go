// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frontend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/presspage/presspage/internal/config"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/log"
)

// PurgeResponse is the JSON response to a purge.
type PurgeResponse struct {
	Slug string `json:"slug"`
	// Deleted is the number of cached pages removed.
	Deleted int `json:"deleted"`
}

func (s *Server) authorized(r *http.Request) bool {
	v := r.Header.Get(config.BypassCacheAuthHeader)
	if v == "" {
		return false
	}
	for _, a := range s.authValues {
		if v == a {
			return true
		}
	}
	return false
}

// servePurge handles POST /purge/{slug}. It removes the cached pages of the
// article and the homepage, and drops the memoized body of the article.
// The request must carry one of the server's auth values.
func (s *Server) servePurge(w http.ResponseWriter, r *http.Request) error {
	if !s.authorized(r) {
		return derrors.Unauthorized
	}
	slug, err := slugFromRequest(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	a, err := s.ds.GetArticle(ctx, slug)
	switch {
	case err == nil:
		s.processor.Forget(a.MemoKey())
	case errors.Is(err, derrors.NotFound):
		// The article was unpublished. Its pages may still be cached.
	default:
		return err
	}
	resp := PurgeResponse{Slug: slug}
	if s.pageCache != nil {
		path := "/articles/" + slug
		n, err := s.pageCache.DeletePrefix(ctx, path+"?")
		if err != nil {
			return fmt.Errorf("%w: %v", derrors.Unavailable, err)
		}
		m, err := s.pageCache.Delete(ctx, path, "/")
		if err != nil {
			return fmt.Errorf("%w: %v", derrors.Unavailable, err)
		}
		resp.Deleted = n + m
	}
	log.Infof(ctx, "purged %q", slug)
	serveJSON(w, r, http.StatusOK, resp)
	return nil
}
