// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package static holds the page templates and the public assets of the
// presspage frontend.
package static

import "embed"

//go:embed frontend/* frontend/*/* shared/* public/*/*
var FS embed.FS
