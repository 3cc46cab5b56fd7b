// Package parallel partitions kernel work across host goroutines.
//
// Work is always split into contiguous index ranges and each index is handled by
// exactly one goroutine, so a kernel that computes every output element
// sequentially produces identical results for any worker count.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of concurrent goroutines.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// WithWorkers returns a copy of cfg limited to n workers. n <= 1 disables parallelism.
func (cfg Config) WithWorkers(n int) Config {
	cfg.NumWorkers = n
	cfg.Enabled = n > 1
	return cfg
}

// ForRange calls f(start, end) on contiguous ranges covering [0, n).
// Falls back to a single call if parallelism is disabled or n is too small.
func ForRange(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	minChunk := max(cfg.MinChunkSize, 1)
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*minChunk {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, minChunk)
	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			f(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForBatch iterates the batch × rows grid used by batched matrix kernels.
func ForBatch(batch, rows int, f func(b, r int), cfg Config) {
	if rows == 0 {
		return
	}
	For(batch*rows, func(k int) {
		f(k/rows, k%rows)
	}, cfg)
}
