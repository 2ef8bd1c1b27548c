// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sanitize runs the article pipeline on an HTML file, or on standard
// input, and prints the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/presspage/presspage/internal/content"
)

var (
	origin    = flag.String("origin", "", "site origin; links to other hosts are marked external")
	imageBase = flag.String("image_base", content.DefaultImageBasePath, "path prefix of stored article images")
	asJSON    = flag.Bool("json", false, "print the HTML and table of contents as JSON")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [FILE]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	in := os.Stdin
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}
	var u *url.URL
	if *origin != "" {
		var err error
		u, err = url.Parse(*origin)
		if err != nil {
			log.Fatalf("-origin: %v", err)
		}
	}
	p := content.NewProcessor(content.Options{Origin: u, ImageBasePath: *imageBase, MemoSize: -1})
	if err := run(os.Stdout, in, p, *asJSON); err != nil {
		log.Fatal(err)
	}
}

type output struct {
	HTML string            `json:"html"`
	TOC  []content.Heading `json:"toc"`
}

func run(w io.Writer, r io.Reader, p *content.Processor, asJSON bool) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	res := p.Process("", string(raw))
	if !asJSON {
		_, err := fmt.Fprintln(w, res.HTML.String())
		return err
	}
	out := output{HTML: res.HTML.String(), TOC: res.TOC}
	if out.TOC == nil {
		out.TOC = []content.Heading{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
