// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynconfig reads configuration overrides for presspage services.
// Overrides are read from a file at startup, so that selected settings can
// be changed without rebuilding the service.
package dynconfig

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/log"
	"gopkg.in/yaml.v3"
)

// Overrides holds settings that replace environment-derived values.
// Zero values are not applied.
type Overrides struct {
	// Fields can be added at any time, but removing or changing a field
	// requires careful coordination with the file contents.

	DBHost        string `yaml:"DBHost"`
	DBName        string `yaml:"DBName"`
	SiteOrigin    string `yaml:"SiteOrigin"`
	ImageBasePath string `yaml:"ImageBasePath"`
	MemoSize      int    `yaml:"MemoSize"`
	LogLevel      string `yaml:"LogLevel"`
}

// Read reads overrides from the given location.
// Location may be of the form gs://bucket/object, denoting a GCS bucket.
// Otherwise it is interpreted as a filename.
func Read(ctx context.Context, location string) (_ *Overrides, err error) {
	defer derrors.Wrap(&err, "dynconfig.Read(%q)", location)

	log.Debugf(ctx, "reading config overrides from %s", location)
	var r io.ReadCloser
	if strings.HasPrefix(location, "gs://") {
		bucket, object, found := strings.Cut(location[5:], "/")
		if !found || bucket == "" || object == "" {
			return nil, errors.New("bad GCS URL")
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		r, err = client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		r, err = os.Open(location)
		if err != nil {
			return nil, err
		}
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses yamlData as a YAML description of Overrides.
func Parse(yamlData []byte) (_ *Overrides, err error) {
	defer derrors.Wrap(&err, "dynconfig.Parse(data)")

	var o Overrides
	if err := yaml.Unmarshal(yamlData, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
