package tensor_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostStats(a *tensor.Arena) tensor.DeviceStats {
	return a.Stats()[0]
}

func TestArenaRefCounting(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	h := must.M1(arena.Allocate(tensor.HostDevice, 4))
	assert.Equal(t, 1, arena.RefCount(h))
	assert.Equal(t, int64(32), hostStats(arena).LiveBytes)

	require.NoError(t, arena.Retain(h))
	assert.Equal(t, 2, arena.RefCount(h))
	require.NoError(t, arena.Release(h))
	require.NoError(t, arena.Release(h))
	assert.Equal(t, 0, arena.RefCount(h))

	st := hostStats(arena)
	assert.Equal(t, 0, st.LiveBuffers)
	assert.Equal(t, int64(1), st.Allocations)
	assert.Equal(t, int64(1), st.Frees)

	assert.Error(t, arena.Release(h))
	_, err := arena.Allocate(tensor.AcceleratorDevice(0), 1)
	assert.ErrorIs(t, err, tensor.ErrInvalidDevice)
}

func TestArenaUploadDownload(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	h := must.M1(arena.Upload(tensor.HostDevice, []float64{1, 2, 3}))
	assert.Equal(t, []float64{1, 2, 3}, must.M1(arena.Download(h)))

	require.NoError(t, arena.WriteScalar(h, 1, 7))
	assert.Equal(t, 7.0, must.M1(arena.ReadScalar(h, 1)))
	_, err := arena.ReadScalar(h, 3)
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfBounds)
}

func TestForgottenTensorsAreReleased(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	func() {
		_ = must.M1(tensor.NewRaw(arena, tensor.HostDevice, tensor.Shape{16}))
	}()
	assert.Eventually(t, func() bool {
		runtime.GC()
		return hostStats(arena).LiveBuffers == 0
	}, 5*time.Second, 10*time.Millisecond)
}
