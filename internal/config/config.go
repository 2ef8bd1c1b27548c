// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the configuration of presspage services.
// Values are resolved from the environment by the serverconfig package.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// BypassCacheAuthHeader is the header that, with a valid auth value,
// bypasses the page cache and allows cache purges.
const BypassCacheAuthHeader = "X-Presspage-Bypass-Cache"

// BypassQuotaAuthHeader is the header that, with a valid auth value,
// exempts a request from the request quota.
const BypassQuotaAuthHeader = "X-Presspage-Bypass-Quota"

// Config holds shared configuration values used in instantiating our server
// components.
type Config struct {
	// AuthValues is the set of values that may be sent in
	// BypassCacheAuthHeader.
	AuthValues []string `json:"-"`

	// Port and DebugPort are the ports on which to serve the site and the
	// debug pages.
	Port, DebugPort string

	// Identifiers of the running instance.
	ProjectID, ServiceID, VersionID, InstanceID string

	// SiteOrigin is the public origin of the site, for example
	// https://example.com. Links to other hosts are external.
	SiteOrigin string

	// ImageBasePath is the path prefix of stored article images.
	ImageBasePath string

	// MemoSize is the number of processed article bodies kept in memory.
	MemoSize int

	// Database settings.
	DBHost, DBPort, DBUser, DBName, DBSSL string
	DBPassword                            string `json:"-"`
	// DBSecret, if set, names the Secret Manager secret holding the
	// database password.
	DBSecret string

	// Quota configures per-client rate limiting.
	Quota QuotaSettings

	// Redis settings. The page cache is disabled if RedisHost is empty.
	RedisHost, RedisPort string

	// LogLevel is the minimum severity logged.
	LogLevel string

	// UseProfiler starts Cloud Profiler when running on GCP.
	UseProfiler bool

	// OverrideLocation is where a YAML file of selected overrides is read
	// from: gs://bucket/object or a local file name.
	OverrideLocation string

	// MonitoredResource is the resource for the current instance, used in
	// Cloud Logging entries.
	MonitoredResource *MonitoredResource
}

// QuotaSettings holds settings for the Redis-based request quota.
type QuotaSettings struct {
	Enable bool
	// QPS is the number of requests per second allowed to each group of
	// client addresses.
	QPS int
	// RecordOnly, if true, records quota decisions without enforcing them.
	RecordOnly bool
	// HMACKey hashes client addresses before they are stored in Redis.
	HMACKey []byte `json:"-"`
	// AuthValues are the values of BypassQuotaAuthHeader that exempt a
	// request.
	AuthValues []string `json:"-"`
}

// MonitoredResource represents the resource that is running the current
// binary. It is a copy of the Cloud Logging type, so that this package
// does not depend on it.
type MonitoredResource struct {
	Type   string            `json:"type,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// HostAddr returns the network on which to serve the primary HTTP service.
func (c *Config) HostAddr(dflt string) string {
	if c.Port != "" {
		return fmt.Sprintf(":%s", c.Port)
	}
	return dflt
}

// DebugAddr returns the network address on which to serve debugging
// information.
func (c *Config) DebugAddr(dflt string) string {
	if c.DebugPort != "" {
		return fmt.Sprintf(":%s", c.DebugPort)
	}
	return dflt
}

// DBConnInfo returns a PostgreSQL connection string constructed from
// environment variables, using the primary database host.
func (c *Config) DBConnInfo() string {
	// For the connection string syntax, see
	// https://www.postgresql.org/docs/current/libpq-connect.html#LIBPQ-CONNSTRING.
	// Quote values in case they contain special characters.
	return fmt.Sprintf("user='%s' password='%s' host='%s' port=%s dbname='%s' sslmode='%s'",
		quote(c.DBUser), quote(c.DBPassword), quote(c.DBHost), c.DBPort, quote(c.DBName), quote(c.DBSSL))
}

func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// RedisAddr returns the address of the Redis page cache, or the empty
// string if none is configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// Origin parses SiteOrigin. It returns nil if SiteOrigin is empty.
func (c *Config) Origin() (*url.URL, error) {
	if c.SiteOrigin == "" {
		return nil, nil
	}
	u, err := url.Parse(c.SiteOrigin)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("site origin %q has no host", c.SiteOrigin)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// Dump outputs the current config information to the given Writer.
func (c *Config) Dump(w io.Writer) error {
	fmt.Fprint(w, "config: ")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}
