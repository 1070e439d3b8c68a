//go:build pprof

package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_WritesProfile(t *testing.T) {
	dir := t.TempDir()

	s := Start("cpu", dir, WithQuiet(true), WithShutdownHook(false))
	s.Stop()

	info, err := os.Stat(filepath.Join(dir, "cpu.pprof"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestModes(t *testing.T) {
	assert.Contains(t, Modes(), "cpu")
	assert.Contains(t, Modes(), "trace")
	assert.Len(t, Modes(), len(modes))
}
