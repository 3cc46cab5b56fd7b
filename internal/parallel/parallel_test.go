package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkSize = 16

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForVisitsEachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 7, MinChunkSize: 3}
	n := 500
	hits := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, cfg)
	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestForRange(t *testing.T) {
	tests := []struct {
		name string
		n    int
		cfg  Config
	}{
		{"sequential", 100, Sequential()},
		{"parallel", 10000, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}},
		{"small", 5, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}},
		{"empty", 0, DefaultConfig()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var covered int64
			ForRange(tt.n, func(start, end int) {
				assert.LessOrEqual(t, start, end)
				atomic.AddInt64(&covered, int64(end-start))
			}, tt.cfg)
			assert.Equal(t, int64(tt.n), covered)
		})
	}
}

func TestForBatch(t *testing.T) {
	cfg := DefaultConfig().WithWorkers(3)
	cfg.MinChunkSize = 1

	batch, rows := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, rows)
	}

	ForBatch(batch, rows, func(b, r int) {
		results[b][r] = true
	}, cfg)

	for b := 0; b < batch; b++ {
		for r := 0; r < rows; r++ {
			assert.True(t, results[b][r], "missing result at [%d][%d]", b, r)
		}
	}
}

func TestWithWorkers(t *testing.T) {
	assert.False(t, DefaultConfig().WithWorkers(1).Enabled)
	cfg := DefaultConfig().WithWorkers(8)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 8, cfg.NumWorkers)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 100000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
