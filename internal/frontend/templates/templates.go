// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package templates parses the page templates of the frontend.
package templates

import (
	"fmt"
	"path"
	"time"

	"github.com/google/safehtml/template"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var templateFuncs = template.FuncMap{
	"pluralize": func(i int, s string) string {
		if i == 1 {
			return s
		}
		return s + "s"
	},
	"capitalize": cases.Title(language.Und).String,
	"date":       formatDate,
	"isodate":    isoDate,
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("January 2, 2006")
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Pages are the names of the page templates returned by
// ParsePageTemplates.
var Pages = []string{"article", "error", "homepage"}

// ParsePageTemplates parses html templates contained in the given filesystem in
// order to generate a map of Name->*template.Template.
//
// Every page is parsed together with the base layout in frontend/*.tmpl and
// the helper templates in shared/.
func ParsePageTemplates(fsys template.TrustedFS) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	for _, page := range Pages {
		t, err := template.New("frontend.tmpl").Funcs(templateFuncs).ParseFS(fsys, "frontend/*.tmpl")
		if err != nil {
			return nil, fmt.Errorf("ParseFS: %v", err)
		}
		helperGlob := "shared/*.tmpl"
		if _, err := t.ParseFS(fsys, helperGlob); err != nil {
			return nil, fmt.Errorf("ParseFS(%q): %v", helperGlob, err)
		}
		if _, err := t.ParseFS(fsys, path.Join("frontend", page, "*.tmpl")); err != nil {
			return nil, fmt.Errorf("ParseFS(%v): %v", page, err)
		}
		templates[page] = t
	}
	return templates, nil
}
