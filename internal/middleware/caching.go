// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/presspage/presspage/internal/cache"
	"github.com/presspage/presspage/internal/config"
	"github.com/presspage/presspage/internal/log"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	keyCacheHit  = tag.MustNewKey("cache.hit")
	keyCacheName = tag.MustNewKey("cache.name")
	keyCacheOp   = tag.MustNewKey("cache.operation")
	cacheResults = stats.Int64(
		"presspage/cache_result_count",
		"The result of a cache request.",
		stats.UnitDimensionless,
	)
	cacheErrors = stats.Int64(
		"presspage/cache_errors",
		"Errors retrieving from cache.",
		stats.UnitDimensionless,
	)

	// CacheResultCount is a counter of cache results, by cache name and hit success.
	CacheResultCount = &view.View{
		Name:        "presspage/cache/result_count",
		Measure:     cacheResults,
		Aggregation: view.Count(),
		Description: "cache results, by cache name and whether it was a hit",
		TagKeys:     []tag.Key{keyCacheHit, keyCacheName},
	}
	// CacheErrorCount is a counter of cache errors, by cache name.
	CacheErrorCount = &view.View{
		Name:        "presspage/cache/errors",
		Measure:     cacheErrors,
		Aggregation: view.Count(),
		Description: "cache errors, by cache name",
		TagKeys:     []tag.Key{keyCacheName, keyCacheOp},
	}

	// To avoid test flakiness, when TestMode is true, cache writes are
	// synchronous.
	TestMode = false
)

func recordCacheResult(ctx context.Context, name string, hit bool) {
	stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(keyCacheName, name),
		tag.Upsert(keyCacheHit, strconv.FormatBool(hit)),
	}, cacheResults.M(1))
}

func recordCacheError(ctx context.Context, name, op string) {
	stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(keyCacheName, name),
		tag.Upsert(keyCacheOp, op),
	}, cacheErrors.M(1))
}

// An Expirer computes the TTL that should be used when caching a page.
type Expirer func(r *http.Request) time.Duration

// TTL returns an Expirer that expires all pages after the given TTL.
func TTL(ttl time.Duration) Expirer {
	return func(r *http.Request) time.Duration {
		return ttl
	}
}

// A Cacher caches rendered pages in a cache.Cache.
type Cacher struct {
	cache *cache.Cache
}

// NewCacher returns a new Cacher backed by c.
func NewCacher(c *cache.Cache) *Cacher {
	return &Cacher{cache: c}
}

// Key returns the cache key for a request to the given path and query.
func Key(r *http.Request) string {
	return r.URL.RequestURI()
}

// Cache returns a new Middleware that caches every successful GET response.
// The name of the cache is used only for metrics.
// The expirer is a func that is used to map a new request to its TTL.
// authHeader is the header key used by the cache to know that a
// request should bypass the cache.
// authValues is the set of values that could be set on the authHeader in
// order to bypass the cache.
func (c *Cacher) Cache(name string, expirer Expirer, authValues []string) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !cacheRequest(r, authValues) {
				h.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			key := Key(r)
			if reader, ok := c.get(ctx, name, key); ok {
				if _, err := reader.WriteTo(w); err != nil {
					log.Errorf(ctx, "WriteTo: %v", err)
				}
				return
			}
			rec := newRecorder(w)
			h.ServeHTTP(rec, r)
			if rec.bufErr == nil && (rec.statusCode == 0 || rec.statusCode == http.StatusOK) {
				ttl := expirer(r)
				if TestMode {
					c.put(ctx, name, key, rec, ttl)
				} else {
					go c.put(ctx, name, key, rec, ttl)
				}
			}
		})
	}
}

func (c *Cacher) get(ctx context.Context, name, key string) (*bytes.Reader, bool) {
	// Set a short timeout for redis requests, so that we can quickly
	// fall back to un-cached serving if redis is unavailable.
	getCtx, cancelGet := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancelGet()
	data, err := c.cache.Get(getCtx, key)
	if err != nil {
		log.Errorf(ctx, "cache get %q: %v", key, err)
		recordCacheError(ctx, name, "GET")
		return nil, false
	}
	if data == nil {
		recordCacheResult(ctx, name, false)
		return nil, false
	}
	recordCacheResult(ctx, name, true)
	return bytes.NewReader(data), true
}

func (c *Cacher) put(ctx context.Context, name, key string, rec *cacheRecorder, ttl time.Duration) {
	setCtx, cancelSet := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	defer cancelSet()
	log.Debugf(ctx, "caching response of length %d for %s", rec.buf.Len(), key)
	if err := c.cache.Put(setCtx, key, rec.buf.Bytes(), ttl); err != nil {
		recordCacheError(ctx, name, "SET")
		log.Warningf(ctx, "cache set %q: %v", key, err)
	}
}

func cacheRequest(r *http.Request, authValues []string) bool {
	if v := r.Header.Get(config.BypassCacheAuthHeader); v != "" {
		for _, a := range authValues {
			if v == a {
				return false
			}
		}
	}
	return true
}

// cacheRecorder is an http.ResponseWriter that collects http bytes for later
// writing to the cache. Along the way it collects any error, along with the
// resulting HTTP status code. We only cache 200 OK responses.
type cacheRecorder struct {
	http.ResponseWriter
	statusCode int

	bufErr error
	buf    bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *cacheRecorder {
	return &cacheRecorder{ResponseWriter: w}
}

func (r *cacheRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	if err == nil {
		_, bufErr := r.buf.Write(b)
		if bufErr != nil {
			r.bufErr = bufErr
		}
	} else {
		r.bufErr = fmt.Errorf("ResponseWriter.Write failed: %v", err)
	}
	return n, err
}

func (r *cacheRecorder) WriteHeader(statusCode int) {
	if statusCode > r.statusCode {
		// Take the largest status code that's written, so if any
		// middleware thinks the response is not OK, we will capture this.
		r.statusCode = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}
