// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The frontend runs a service to serve user-facing traffic.
package main

import (
	"context"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/profiler"
	"github.com/google/safehtml/template"
	"github.com/presspage/presspage/cmd/internal/cmdconfig"
	"github.com/presspage/presspage/internal/cache"
	"github.com/presspage/presspage/internal/config/serverconfig"
	"github.com/presspage/presspage/internal/content"
	"github.com/presspage/presspage/internal/dcensus"
	"github.com/presspage/presspage/internal/frontend"
	"github.com/presspage/presspage/internal/log"
	"github.com/presspage/presspage/internal/middleware"
	"github.com/presspage/presspage/internal/middleware/timeout"
	"github.com/presspage/presspage/internal/trace"
	"github.com/presspage/presspage/static"
	"golang.org/x/sync/errgroup"
)

var (
	hostAddr  = flag.String("host", "localhost:8080", "Host address for the server")
	debugAddr = flag.String("debug", "localhost:8081", "Host address for the debug server")
	siteName  = flag.String("site_name", "presspage", "name shown in page titles")
	traceFrac = flag.Float64("trace_fraction", 0.01, "fraction of requests traced; sampled spans appear on the debug server")
)

func main() {
	flag.Parse()
	ctx := context.Background()
	cfg, err := serverconfig.Init(ctx)
	if err != nil {
		log.Fatal(ctx, err)
	}
	cfg.Dump(os.Stderr)
	if cfg.UseProfiler && serverconfig.OnGCP() {
		if err := profiler.Start(profiler.Config{
			Service:        cfg.ServiceID,
			ServiceVersion: cfg.VersionID,
			ProjectID:      cfg.ProjectID,
		}); err != nil {
			log.Fatalf(ctx, "profiler.Start: %v", err)
		}
	}
	trace.SetSampleFraction(*traceFrac)

	requestLogger := cmdconfig.Logger(ctx, cfg, "frontend-log")

	db, err := cmdconfig.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatalf(ctx, "%v", err)
	}
	defer db.Close()

	origin, err := cfg.Origin()
	if err != nil {
		log.Fatal(ctx, err)
	}
	processor := content.NewProcessor(content.Options{
		Origin:        origin,
		ImageBasePath: cfg.ImageBasePath,
		MemoSize:      cfg.MemoSize,
	})

	var pageCache *cache.Cache
	redisClient := cmdconfig.RedisClient(ctx, cfg)
	if redisClient != nil {
		pageCache = cache.New(redisClient, "page")
	} else if cfg.Quota.Enable {
		log.Warningf(ctx, "quota enabled but no redis configured; requests will not be limited")
	}

	publicFS, err := fs.Sub(static.FS, "public")
	if err != nil {
		log.Fatal(ctx, err)
	}
	server, err := frontend.NewServer(frontend.ServerConfig{
		DataSource:      db,
		Processor:       processor,
		TemplateFS:      template.TrustedFSFromEmbed(static.FS),
		StaticFS:        publicFS,
		PageCache:       pageCache,
		AuthValues:      cfg.AuthValues,
		SiteName:        *siteName,
		AppVersionLabel: cfg.VersionID,
	})
	if err != nil {
		log.Fatalf(ctx, "frontend.NewServer: %v", err)
	}

	router := dcensus.NewRouter(frontend.TagRoute)
	server.Install(router.Handle)
	views := append(dcensus.ServerViews,
		middleware.CacheResultCount,
		middleware.CacheErrorCount,
		middleware.QuotaResultCount,
	)
	if err := dcensus.Init(views...); err != nil {
		log.Fatal(ctx, err)
	}
	if serverconfig.OnGCP() {
		if err := dcensus.ExportToStackdriver(cfg); err != nil {
			log.Fatal(ctx, err)
		}
	}
	dcensusServer, err := dcensus.NewServer()
	if err != nil {
		log.Fatal(ctx, err)
	}
	panicHandler, err := server.PanicHandler()
	if err != nil {
		log.Fatal(ctx, err)
	}
	ermw := middleware.Identity()
	if rc := cmdconfig.ReportingClient(ctx, cfg); rc != nil {
		ermw = middleware.ErrorReporting(rc.Report)
	}
	mw := middleware.Chain(
		middleware.RequestLog(requestLogger),
		middleware.AcceptRequests(http.MethodGet, http.MethodPost, http.MethodHead), // accept only GETs, POSTs and HEADs
		middleware.Quota(cfg.Quota, redisClient),
		middleware.SecureHeaders(),
		middleware.Panic(panicHandler),
		ermw,
		timeout.Timeout(54*time.Second),
	)

	var g errgroup.Group
	g.Go(func() error {
		addr := cfg.DebugAddr(*debugAddr)
		log.Infof(ctx, "Debug server listening on addr %s", addr)
		return http.ListenAndServe(addr, dcensusServer)
	})
	g.Go(func() error {
		addr := cfg.HostAddr(*hostAddr)
		log.Infof(ctx, "Listening on addr %s", addr)
		return http.ListenAndServe(addr, mw(router))
	})
	log.Fatal(ctx, g.Wait())
}
