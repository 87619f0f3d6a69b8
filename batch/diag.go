// Copyright 2026 The Webgraph-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package batch

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// DiagBanner returns a one-line summary of the host CPU features relevant
// to the pipeline's comparison-heavy external sort, for cmd/graphconv to
// print to stderr before a large run. It never affects encoded output.
func DiagBanner() string {
	return fmt.Sprintf("cpu: %s, avx2=%v, logical cores=%d",
		cpuid.CPU.BrandName, cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.LogicalCores)
}
