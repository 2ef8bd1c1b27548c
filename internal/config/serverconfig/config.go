// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package serverconfig resolves shared configuration for presspage services.
package serverconfig

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/presspage/presspage/internal/config"
	"github.com/presspage/presspage/internal/config/dynconfig"
	"github.com/presspage/presspage/internal/content"
	"github.com/presspage/presspage/internal/derrors"
	"github.com/presspage/presspage/internal/log"
	"github.com/presspage/presspage/internal/secrets"
)

// GetEnv looks up the given key from the environment, returning its value if
// it exists, and otherwise returning the given fallback value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt looks up the given key from the environment and expects an integer,
// returning the integer value if it exists, and otherwise returning the given
// fallback value.
// If the environment variable has a value but it can't be parsed as an integer,
// GetEnvInt terminates the program.
func GetEnvInt(ctx context.Context, key string, fallback int) int {
	if s, ok := os.LookupEnv(key); ok {
		v, err := strconv.Atoi(s)
		if err != nil {
			log.Fatalf(ctx, "bad value %q for %s: %v", s, key, err)
		}
		return v
	}
	return fallback
}

// onCloudRun reports whether the current process is running on Cloud Run.
func onCloudRun() bool {
	// Use the presence of the environment variables provided by Cloud Run.
	// See https://cloud.google.com/run/docs/reference/container-contract.
	for _, ev := range []string{"K_SERVICE", "K_REVISION", "K_CONFIGURATION"} {
		if os.Getenv(ev) == "" {
			return false
		}
	}
	return true
}

// OnGCP reports whether the current process is running on Google Cloud
// Platform.
func OnGCP() bool {
	return onCloudRun()
}

// Init resolves all configuration values provided by the config package. It
// must be called before any configuration values are used.
func Init(ctx context.Context) (_ *config.Config, err error) {
	defer derrors.Add(&err, "serverconfig.Init(ctx)")
	cfg := &config.Config{
		AuthValues: parseCommaList(os.Getenv("PRESSPAGE_AUTH_VALUES")),
		Port:       os.Getenv("PORT"),
		DebugPort:  os.Getenv("DEBUG_PORT"),
		ProjectID:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		ServiceID:  GetEnv("K_SERVICE", os.Getenv("PRESSPAGE_SERVICE")),
		VersionID:  GetEnv("K_REVISION", os.Getenv("PRESSPAGE_VERSION")),
		InstanceID: os.Getenv("PRESSPAGE_INSTANCE"),

		SiteOrigin:    os.Getenv("PRESSPAGE_SITE_ORIGIN"),
		ImageBasePath: GetEnv("PRESSPAGE_IMAGE_BASE_PATH", content.DefaultImageBasePath),
		MemoSize:      GetEnvInt(ctx, "PRESSPAGE_MEMO_SIZE", content.DefaultMemoSize),

		DBHost:     GetEnv("PRESSPAGE_DATABASE_HOST", "localhost"),
		DBPort:     GetEnv("PRESSPAGE_DATABASE_PORT", "5432"),
		DBUser:     GetEnv("PRESSPAGE_DATABASE_USER", "postgres"),
		DBPassword: os.Getenv("PRESSPAGE_DATABASE_PASSWORD"),
		DBName:     GetEnv("PRESSPAGE_DATABASE_NAME", "presspage"),
		DBSSL:      GetEnv("PRESSPAGE_DATABASE_SSL", "disable"),
		DBSecret:   os.Getenv("PRESSPAGE_DATABASE_SECRET"),
		RedisHost:  os.Getenv("PRESSPAGE_REDIS_HOST"),
		RedisPort:  GetEnv("PRESSPAGE_REDIS_PORT", "6379"),
		Quota: config.QuotaSettings{
			Enable:     os.Getenv("PRESSPAGE_ENABLE_QUOTA") == "true",
			QPS:        GetEnvInt(ctx, "PRESSPAGE_QUOTA_QPS", 10),
			RecordOnly: os.Getenv("PRESSPAGE_QUOTA_RECORD_ONLY") != "false",
			AuthValues: parseCommaList(os.Getenv("PRESSPAGE_AUTH_VALUES")),
		},
		LogLevel:    os.Getenv("PRESSPAGE_LOG_LEVEL"),
		UseProfiler: os.Getenv("PRESSPAGE_USE_PROFILER") == "true",
	}

	bucket := os.Getenv("PRESSPAGE_CONFIG_BUCKET")
	override := os.Getenv("PRESSPAGE_CONFIG_OVERRIDE")
	if bucket != "" && override != "" {
		cfg.OverrideLocation = fmt.Sprintf("gs://%s/%s", bucket, override)
	} else {
		cfg.OverrideLocation = override
	}

	if OnGCP() {
		cfg.MonitoredResource = &config.MonitoredResource{
			Type: "cloud_run_revision",
			Labels: map[string]string{
				"project_id":         cfg.ProjectID,
				"service_name":       cfg.ServiceID,
				"revision_name":      cfg.VersionID,
				"configuration_name": os.Getenv("K_CONFIGURATION"),
			},
		}
	} else { // running locally, perhaps
		cfg.MonitoredResource = &config.MonitoredResource{
			Type:   "global",
			Labels: map[string]string{"project_id": cfg.ProjectID},
		}
	}

	// An override file lets an operator fix a setting quickly without
	// redeploying. A missing or unreadable file is logged and ignored.
	if cfg.OverrideLocation != "" {
		ov, err := dynconfig.Read(ctx, cfg.OverrideLocation)
		if err != nil {
			log.Error(ctx, err)
		} else {
			log.Infof(ctx, "processing overrides from %s", cfg.OverrideLocation)
			processOverrides(ctx, cfg, ov)
		}
	}
	log.SetLevel(cfg.LogLevel)

	if cfg.DBSecret != "" {
		cfg.DBPassword, err = secrets.Get(ctx, cfg.ProjectID, cfg.DBSecret)
		if err != nil {
			return nil, fmt.Errorf("could not get database password secret: %v", err)
		}
	}
	if cfg.Quota.Enable {
		s := os.Getenv("PRESSPAGE_QUOTA_HMAC_KEY")
		if s == "" {
			s, err = secrets.Get(ctx, cfg.ProjectID, "quota-hmac-key")
			if err != nil {
				return nil, err
			}
		}
		cfg.Quota.HMACKey, err = parseHMACKey(s)
		if err != nil {
			return nil, err
		}
		log.Debugf(ctx, "quota enforcement enabled: qps=%d record-only=%t", cfg.Quota.QPS, cfg.Quota.RecordOnly)
	} else {
		log.Debugf(ctx, "quota enforcement disabled")
	}

	if _, err := cfg.Origin(); err != nil {
		return nil, fmt.Errorf("PRESSPAGE_SITE_ORIGIN: %w", err)
	}
	if cfg.MemoSize < -1 {
		return nil, fmt.Errorf("PRESSPAGE_MEMO_SIZE must be -1 or more, got %d", cfg.MemoSize)
	}
	return cfg, nil
}

func processOverrides(ctx context.Context, cfg *config.Config, ov *dynconfig.Overrides) {
	override(ctx, "DBHost", &cfg.DBHost, ov.DBHost)
	override(ctx, "DBName", &cfg.DBName, ov.DBName)
	override(ctx, "SiteOrigin", &cfg.SiteOrigin, ov.SiteOrigin)
	override(ctx, "ImageBasePath", &cfg.ImageBasePath, ov.ImageBasePath)
	override(ctx, "MemoSize", &cfg.MemoSize, ov.MemoSize)
	override(ctx, "LogLevel", &cfg.LogLevel, ov.LogLevel)
}

func override[T comparable](ctx context.Context, name string, field *T, val T) {
	var zero T
	if val != zero {
		*field = val
		log.Infof(ctx, "overriding %s with %v", name, val)
	}
}

// parseHMACKey decodes a hex-encoded key of at least 16 bytes.
func parseHMACKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) < 16 {
		return nil, errors.New("HMAC secret must be at least 16 bytes")
	}
	return key, nil
}

func parseCommaList(s string) []string {
	var a []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			a = append(a, p)
		}
	}
	return a
}
