package memstore

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherMarksDirty(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	var calls atomic.Int32
	w, err := NewWatcher(dir, func() { calls.Add(1) }, logger)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.json"), []byte("{}"), 0o644))

	assert.Eventually(t, func() bool {
		return calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	var calls atomic.Int32
	w, err := NewWatcher(dir, func() { calls.Add(1) }, logger)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.db"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.json.tmp"), []byte("x"), 0o644))

	time.Sleep(800 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	var calls atomic.Int32
	w, err := NewWatcher(dir, func() { calls.Add(1) }, logger)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "burst.json")
		require.NoError(t, os.WriteFile(name, []byte("{}"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcherMissingDir(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	_, err := NewWatcher("/does/not/exist", func() {}, logger)
	assert.Error(t, err)
}
