package collector

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcesses(t *testing.T) {
	var pc Processes
	pids, err := pc.Pids()
	require.NoError(t, err)
	assert.Contains(t, pids, int32(os.Getpid()))

	p, err := pc.Process(int32(os.Getpid()))
	require.NoError(t, err)
	assert.Equal(t, int32(os.Getpid()), p.Pid)
	assert.NotEmpty(t, p.Name)
	assert.NotEmpty(t, p.Path)
	assert.Equal(t, 1, p.OnDisk)
	assert.Equal(t, int32(os.Getppid()), p.Parent)
	assert.Greater(t, p.ResidentSize, uint64(1024*1024))
	assert.GreaterOrEqual(t, p.TotalSize, p.ResidentSize)
	assert.Positive(t, p.Threads)
	assert.Positive(t, p.StartTime)
	if runtime.GOOS != "windows" {
		assert.Equal(t, int64(os.Getuid()), p.UID)
		assert.Equal(t, int64(os.Getgid()), p.GID)
		assert.NotEqual(t, int64(-1), p.PGroup)
	}
}

func TestProcesses_NotFound(t *testing.T) {
	var pc Processes
	for _, pid := range []int32{-1, 0x7ffffff0} {
		_, err := pc.Process(pid)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}
