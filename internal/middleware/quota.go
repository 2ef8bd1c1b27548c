// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	rrate "github.com/go-redis/redis_rate/v9"
	"github.com/presspage/presspage/internal/config"
	"github.com/presspage/presspage/internal/log"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	keyQuotaBlocked = tag.MustNewKey("quota.blocked")
	quotaResults    = stats.Int64(
		"presspage/quota_result_count",
		"The result of a quota check.",
		stats.UnitDimensionless,
	)
	// QuotaResultCount is a counter of quota results, by whether the request was blocked or not.
	QuotaResultCount = &view.View{
		Name:        "presspage/quota/result_count",
		Measure:     quotaResults,
		Aggregation: view.Count(),
		Description: "quota results, by blocked or allowed",
		TagKeys:     []tag.Key{keyQuotaBlocked},
	}
)

func recordQuotaMetric(ctx context.Context, blocked string) {
	stats.RecordWithTags(ctx, []tag.Mutator{
		tag.Upsert(keyQuotaBlocked, blocked),
	}, quotaResults.M(1))
}

// ipKey returns the address group of the originating client in the
// X-Forwarded-For header value s, or "" if s has no parseable address.
func ipKey(s string) string {
	origin, _, _ := strings.Cut(s, ",")
	ip := net.ParseIP(strings.TrimSpace(origin))
	if ip == nil {
		return ""
	}
	// Addresses that differ only in the low-order byte share a quota.
	ip[len(ip)-1] = 0
	return ip.String()
}

// limiterTimeout bounds a Redis round trip on the request path.
const limiterTimeout = 15 * time.Millisecond

// Quota implements an IP-based rate limiter. Each set of incoming IP
// addresses with the same low-order byte gets settings.QPS requests per
// second. State is kept in Redis. Requests are always allowed when the
// client address is unknown or Redis fails.
//
// If a request is disallowed, a 429 (TooManyRequests) will be served,
// unless settings.RecordOnly is set.
func Quota(settings config.QuotaSettings, client *redis.Client) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !settings.Enable || client == nil {
				recordQuotaMetric(ctx, "disabled")
				h.ServeHTTP(w, r)
				return
			}
			if authVal := r.Header.Get(config.BypassQuotaAuthHeader); authVal != "" && slices.Contains(settings.AuthValues, authVal) {
				recordQuotaMetric(ctx, "bypassed")
				h.ServeHTTP(w, r)
				return
			}
			blocked, reason := enforceQuota(ctx, client, settings.QPS, r.Header.Get("X-Forwarded-For"), settings.HMACKey)
			recordQuotaMetric(ctx, reason)
			if blocked && !settings.RecordOnly {
				const tmr = http.StatusTooManyRequests
				http.Error(w, http.StatusText(tmr), tmr)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}

func enforceQuota(ctx context.Context, client *redis.Client, qps int, header string, hmacKey []byte) (blocked bool, reason string) {
	if header == "" {
		return false, "no header"
	}
	key := ipKey(header)
	if key == "" {
		return false, "bad header"
	}
	mac := hmac.New(sha256.New, hmacKey)
	io.WriteString(mac, key)
	res, err := rrate.NewLimiter(client.WithTimeout(limiterTimeout)).Allow(ctx, string(mac.Sum(nil)), rrate.PerSecond(qps))
	if err != nil {
		var nerr *net.OpError
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			log.Warningf(ctx, "quota: redis limiter: %v", err)
			return false, "timeout"
		}
		log.Errorf(ctx, "quota: redis limiter: %v", err)
		return false, "error"
	}
	if res.Allowed > 0 {
		return false, "allowed"
	}
	return true, "blocked"
}
