// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmdconfig contains functions for configuring commands.
package cmdconfig

import (
	"context"
	"fmt"

	"cloud.google.com/go/errorreporting"
	"cloud.google.com/go/logging"
	"contrib.go.opencensus.io/integrations/ocsql"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq" // postgres driver
	"github.com/presspage/presspage/internal/config"
	"github.com/presspage/presspage/internal/config/serverconfig"
	"github.com/presspage/presspage/internal/database"
	"github.com/presspage/presspage/internal/log"
	"github.com/presspage/presspage/internal/log/stackdriverlogger"
	"github.com/presspage/presspage/internal/middleware"
	"github.com/presspage/presspage/internal/postgres"
	mrpb "google.golang.org/genproto/googleapis/api/monitoredres"
)

// Logger configures a middleware.Logger. On GCP it also routes the log
// package to Cloud Logging.
func Logger(ctx context.Context, cfg *config.Config, logName string) middleware.Logger {
	if serverconfig.OnGCP() {
		var opts []logging.LoggerOption
		if mr := cfg.MonitoredResource; mr != nil {
			opts = append(opts, logging.CommonResource(&mrpb.MonitoredResource{
				Type:   mr.Type,
				Labels: mr.Labels,
			}))
		}
		child, parent, err := stackdriverlogger.New(ctx, logName, cfg.ProjectID, opts)
		if err != nil {
			log.Fatal(ctx, err)
		}
		log.Use(child)
		return parent
	}
	return middleware.LocalLogger{}
}

// ReportingClient configures an Error Reporting client. It returns nil
// when not running on GCP.
func ReportingClient(ctx context.Context, cfg *config.Config) *errorreporting.Client {
	if !serverconfig.OnGCP() {
		return nil
	}
	reporter, err := errorreporting.NewClient(ctx, cfg.ProjectID, errorreporting.Config{
		ServiceName:    cfg.ServiceID,
		ServiceVersion: cfg.VersionID,
		OnError: func(err error) {
			log.Errorf(ctx, "Error reporting failed: %v", err)
		},
	})
	if err != nil {
		log.Fatal(ctx, err)
	}
	return reporter
}

// OpenDB opens the article database described by cfg. Queries are traced
// through an OpenCensus-instrumented wrapper of the postgres driver.
func OpenDB(ctx context.Context, cfg *config.Config) (_ *postgres.DB, err error) {
	log.Infof(ctx, "opening database %q on %s:%s", cfg.DBName, cfg.DBHost, cfg.DBPort)
	driverName, err := ocsql.Register("postgres", ocsql.WithAllTraceOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to register the ocsql driver: %v", err)
	}
	ddb, err := database.Open(driverName, cfg.DBConnInfo(), cfg.InstanceID)
	if err != nil {
		return nil, err
	}
	return postgres.New(ddb), nil
}

// RedisClient connects to the Redis instance used for the page cache and
// the request quota. It returns nil if none is configured. An unreachable
// instance is logged but still returned, so that the site recovers when
// Redis comes back.
func RedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorf(ctx, "redis at %s: %v", addr, err)
	} else {
		log.Infof(ctx, "connected to redis at %s", addr)
	}
	return client
}
