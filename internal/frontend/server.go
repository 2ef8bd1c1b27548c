// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frontend provides functionality for running the presspage site.
package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/google/safehtml/template"
	"github.com/presspage/presspage/internal"
	"github.com/presspage/presspage/internal/cache"
	"github.com/presspage/presspage/internal/content"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/frontend/templates"
	"github.com/presspage/presspage/internal/log"
	"github.com/presspage/presspage/internal/middleware"
	"golang.org/x/sync/singleflight"
)

// Server can be installed to serve the presspage frontend.
type Server struct {
	ds              internal.DataSource
	processor       *content.Processor
	pageCache       *cache.Cache
	authValues      []string
	staticFS        fs.FS
	siteName        string
	appVersionLabel string
	templates       map[string]*template.Template
	errorPage       []byte

	// loads collapses concurrent loads of the same article.
	loads singleflight.Group
}

// ServerConfig contains everything needed by a Server.
type ServerConfig struct {
	// DataSource is used by every handler. It must be goroutine-safe.
	DataSource internal.DataSource
	// Processor turns stored article bodies into safe HTML.
	Processor *content.Processor
	// TemplateFS holds the page templates.
	TemplateFS template.TrustedFS
	// StaticFS is served under /static/.
	StaticFS fs.FS
	// PageCache, if non-nil, caches rendered pages.
	PageCache *cache.Cache
	// AuthValues are the values of the auth header that allow bypassing
	// the page cache and purging it.
	AuthValues      []string
	SiteName        string
	AppVersionLabel string
}

// NewServer creates a new Server with the given configuration.
func NewServer(scfg ServerConfig) (_ *Server, err error) {
	defer derrors.Wrap(&err, "NewServer(...)")
	if scfg.DataSource == nil {
		return nil, fmt.Errorf("%w: no data source", derrors.InvalidArgument)
	}
	if scfg.Processor == nil {
		scfg.Processor = content.NewProcessor(content.Options{})
	}
	if scfg.SiteName == "" {
		scfg.SiteName = "presspage"
	}
	ts, err := templates.ParsePageTemplates(scfg.TemplateFS)
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %v", err)
	}
	s := &Server{
		ds:              scfg.DataSource,
		processor:       scfg.Processor,
		pageCache:       scfg.PageCache,
		authValues:      scfg.AuthValues,
		staticFS:        scfg.StaticFS,
		siteName:        scfg.SiteName,
		appVersionLabel: scfg.AppVersionLabel,
		templates:       ts,
	}
	s.errorPage, err = s.renderErrorPage(context.Background(), http.StatusInternalServerError, "")
	if err != nil {
		return nil, fmt.Errorf("s.renderErrorPage(http.StatusInternalServerError, nil): %v", err)
	}
	return s, nil
}

const (
	// articleTTL bounds how long an edit takes to appear without a purge.
	articleTTL = 10 * time.Minute
	// homepageTTL is shorter, since new articles appear on the homepage.
	homepageTTL = 2 * time.Minute
)

// Install registers server routes using the given handler registration func.
// Page routes are cached when the server has a page cache.
func (s *Server) Install(handle func(string, http.Handler)) {
	var (
		articleHandler  http.Handler = s.errorHandler(s.serveArticle)
		homepageHandler http.Handler = s.errorHandler(s.serveHomepage)
	)
	if s.pageCache != nil {
		cacher := middleware.NewCacher(s.pageCache)
		articleHandler = cacher.Cache("article", middleware.TTL(articleTTL), s.authValues)(articleHandler)
		homepageHandler = cacher.Cache("homepage", middleware.TTL(homepageTTL), s.authValues)(homepageHandler)
	}
	handle("GET /{$}", homepageHandler)
	handle("GET /articles/{slug}", articleHandler)
	handle("GET /api/articles/{slug}", s.apiErrorHandler(s.serveArticleJSON))
	handle("POST /purge/{slug}", s.apiErrorHandler(s.servePurge))
	handle("GET /healthz", http.HandlerFunc(s.serveHealthz))
	if s.staticFS != nil {
		handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFS))))
	}
	handle("/", s.errorHandler(func(w http.ResponseWriter, r *http.Request) error {
		return derrors.NotFound
	}))
}

// TagRoute categorizes incoming requests to the frontend for use in
// monitoring. The tag is the route pattern without its method, so it has
// bounded cardinality.
func TagRoute(route string, r *http.Request) string {
	if _, pattern, ok := strings.Cut(route, " "); ok {
		route = pattern
	}
	return strings.Trim(route, "/")
}

func (s *Server) serveHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

// basePage contains fields shared by all pages when rendering templates.
type basePage struct {
	// HTMLTitle is the value to use in the page’s <title> tag.
	HTMLTitle string

	SiteName string

	// AppVersionLabel contains the current version of the app.
	AppVersionLabel string
}

func (s *Server) newBasePage(title string) basePage {
	return basePage{
		HTMLTitle:       title,
		SiteName:        s.siteName,
		AppVersionLabel: s.appVersionLabel,
	}
}

// errorPage contains fields for rendering a HTTP error page.
type errorPage struct {
	basePage
	StatusText string
	Message    string
}

// PanicHandler returns an http.HandlerFunc that can be used in HTTP
// middleware. It returns an error if something goes wrong pre-rendering the
// error template.
func (s *Server) PanicHandler() (_ http.HandlerFunc, err error) {
	defer derrors.Wrap(&err, "PanicHandler")
	status := http.StatusInternalServerError
	buf, err := s.renderErrorPage(context.Background(), status, "")
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if _, err := io.Copy(w, bytes.NewReader(buf)); err != nil {
			log.Errorf(r.Context(), "Error copying panic template to ResponseWriter: %v", err)
		}
	}, nil
}

func (s *Server) errorHandler(f func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			s.serveError(w, r, err)
		}
	}
}

func logError(ctx context.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error(ctx, err)
	} else {
		log.Infof(ctx, "returning %d (%s) for error %v", status, http.StatusText(status), err)
	}
}

func (s *Server) serveError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := derrors.ToStatus(err)
	logError(ctx, status, err)
	var msg string
	switch status {
	case http.StatusNotFound:
		msg = "There is no article at this address."
	case http.StatusBadRequest:
		msg = "The address is not valid."
	}
	buf, err := s.renderErrorPage(ctx, status, msg)
	if err != nil {
		log.Errorf(ctx, "s.renderErrorPage(%d): %v", status, err)
		buf = s.errorPage
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.Copy(w, bytes.NewReader(buf)); err != nil {
		log.Errorf(ctx, "Error copying error page to ResponseWriter: %v", err)
	}
}

// renderErrorPage executes the error template for the given status.
func (s *Server) renderErrorPage(ctx context.Context, status int, msg string) ([]byte, error) {
	statusInfo := fmt.Sprintf("%d %s", status, http.StatusText(status))
	page := errorPage{
		basePage:   s.newBasePage(statusInfo),
		StatusText: statusInfo,
		Message:    msg,
	}
	return s.renderPage(ctx, "error", page)
}

// apiErrorHandler is like errorHandler, but reports errors as JSON.
func (s *Server) apiErrorHandler(f func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			status := derrors.ToStatus(err)
			logError(r.Context(), status, err)
			serveJSON(w, r, status, map[string]string{"error": http.StatusText(status)})
		}
	}
}

func serveJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf(r.Context(), "json.Marshal: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Errorf(r.Context(), "Error writing JSON response: %v", err)
	}
}

// servePage is used to execute all templates for a *Server.
func (s *Server) servePage(ctx context.Context, w http.ResponseWriter, templateName string, page any) {
	buf, err := s.renderPage(ctx, templateName, page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		log.Errorf(ctx, "s.renderPage(%q, %+v): %v", templateName, page, err)
		w.WriteHeader(http.StatusInternalServerError)
		buf = s.errorPage
	}
	if _, err := io.Copy(w, bytes.NewReader(buf)); err != nil {
		log.Errorf(ctx, "Error copying template %q buffer to ResponseWriter: %v", templateName, err)
	}
}

// renderPage executes the given templateName with page.
func (s *Server) renderPage(ctx context.Context, templateName string, page any) ([]byte, error) {
	tmpl := s.templates[templateName]
	if tmpl == nil {
		return nil, fmt.Errorf("BUG: s.templates[%q] not found", templateName)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		log.Errorf(ctx, "Error executing page template %q: %v", templateName, err)
		return nil, err
	}
	return buf.Bytes(), nil
}
