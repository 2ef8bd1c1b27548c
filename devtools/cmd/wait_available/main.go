// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

// wait_available waits until every given address accepts TCP connections,
// then optionally replaces itself with a command:
//
//	wait_available [-timeout d] HOST:PORT... [-- COMMAND ARGS...]
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"os/exec"
	"slices"
	"syscall"
	"time"

	"github.com/presspage/presspage/internal/log"
)

var timeout = flag.Duration("timeout", 15*time.Second, "timeout duration")

func main() {
	flag.Parse()
	ctx := context.Background()

	addrs, command, err := splitArgs(flag.Args())
	if err != nil {
		log.Fatal(ctx, err)
	}
	wctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	if err := waitFor(wctx, addrs, time.Second); err != nil {
		log.Fatal(ctx, err)
	}
	if len(command) == 0 {
		return
	}
	binpath, err := exec.LookPath(command[0])
	if err != nil {
		log.Fatalf(ctx, "looking up %q: %v", command[0], err)
	}
	if err := syscall.Exec(binpath, command, os.Environ()); err != nil {
		log.Fatalf(ctx, "exec-ing binary: %v", err)
	}
}

// splitArgs separates the addresses from the command following "--".
func splitArgs(args []string) (addrs, command []string, err error) {
	if i := slices.Index(args, "--"); i >= 0 {
		addrs, command = args[:i], args[i+1:]
	} else {
		addrs = args
	}
	if len(addrs) == 0 {
		return nil, nil, errors.New("expected at least one HOST:PORT")
	}
	return addrs, command, nil
}

// waitFor dials each address until it answers or ctx is done.
func waitFor(ctx context.Context, addrs []string, interval time.Duration) error {
	var d net.Dialer
	for _, addr := range addrs {
		for {
			conn, err := d.DialContext(ctx, "tcp", addr)
			if err == nil {
				conn.Close()
				log.Infof(ctx, "%s is available", addr)
				break
			}
			select {
			case <-ctx.Done():
				return errors.Join(ctx.Err(), err)
			case <-time.After(interval):
			}
		}
	}
	return nil
}
