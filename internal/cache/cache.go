// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cache implements a redis-based page cache
// for presspage.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/presspage/presspage/internal/derrors"
)

// Cache is a Redis-based cache. All of its keys share a namespace prefix,
// so several caches can use one Redis database.
type Cache struct {
	client    *redis.Client
	namespace string
}

// New creates a new Cache using the given Redis client. Keys are stored
// under namespace + ":".
func New(client *redis.Client, namespace string) *Cache {
	return &Cache{client: client, namespace: namespace}
}

func (c *Cache) key(k string) string {
	return c.namespace + ":" + k
}

// Ping reports whether the Redis server is reachable.
func (c *Cache) Ping(ctx context.Context) (err error) {
	defer derrors.Wrap(&err, "Ping()")
	return c.client.Ping(ctx).Err()
}

// Get returns the value for key, or nil if the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (value []byte, err error) {
	defer derrors.Wrap(&err, "Get(%q)", key)
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil { // not found
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Put inserts the key with the given data and time-to-live.
func (c *Cache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) (err error) {
	defer derrors.Wrap(&err, "Put(%q, data, %s)", key, ttl)
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete deletes the given keys and returns the number of keys that
// existed. It does not return an error if a key does not exist.
func (c *Cache) Delete(ctx context.Context, keys ...string) (n int, err error) {
	defer derrors.Wrap(&err, "Delete(%q)", keys)
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	m, err := c.client.Unlink(ctx, full...).Result() // faster, asynchronous delete
	return int(m), err
}

// DeletePrefix deletes all keys beginning with prefix and returns the
// number of keys deleted.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (n int, err error) {
	defer derrors.Wrap(&err, "DeletePrefix(%q)", prefix)
	iter := c.client.Scan(ctx, 0, escapeGlob(c.key(prefix))+"*", int64(scanCount)).Iterator()
	var keys []string
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
			return err
		}
		n += len(keys)
		keys = keys[:0]
		return nil
	}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanCount {
			if err := flush(); err != nil {
				return n, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return n, err
	}
	return n, flush()
}

// escapeGlob quotes the characters that are special in Redis match
// patterns.
func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}

var globReplacer = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Clear deletes every key in the cache's namespace.
func (c *Cache) Clear(ctx context.Context) (err error) {
	defer derrors.Wrap(&err, "Clear()")
	_, err = c.DeletePrefix(ctx, "")
	return err
}

// The "count" argument to the Redis SCAN command, which is a hint for how much
// work to perform.
// Also used as the batch size for deletes in DeletePrefix.
// var for testing.
var scanCount = 100
