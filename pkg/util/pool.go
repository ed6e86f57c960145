package util

import "runtime"

// GetOptimalPoolSize returns the pool size used for CPU-bound work such as
// parsing source files.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Reasoning:
//   - Minimum 4: some parallelism even on small machines
//   - 2x CPU cores: tree-sitter parsing runs in CGO, which blocks the thread
//   - Maximum 32: caps parser memory on large machines
//
// Used for the parser pool size and the scanner's file-loading workers; the
// two must match so workers never wait on a parser.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when it is positive and
// GetOptimalPoolSize() otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
