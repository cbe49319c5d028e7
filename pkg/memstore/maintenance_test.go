package memstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaintenance_InvalidSchedule(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	_, err := NewMaintenance(s, "not a schedule", logger)
	assert.Error(t, err)
}

func TestMaintenanceRunOnce(t *testing.T) {
	s, dir, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	keep, _, err := s.StoreMemory(ctx, StoreInput{Content: "keep me around", ProjectID: "p"})
	require.NoError(t, err)
	gone, _, err := s.StoreMemory(ctx, StoreInput{Content: "remove my file", ProjectID: "p"})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, artifactSubdir, gone+".json")))

	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	m, err := NewMaintenance(s, "@hourly", logger)
	require.NoError(t, err)

	m.runOnce()

	_, err = s.RetrieveMemory(ctx, keep)
	assert.NoError(t, err)
	_, err = s.RetrieveMemory(ctx, gone)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMaintenanceStartStop(t *testing.T) {
	s, _, cleanup := createTestStore(t)
	defer cleanup()

	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	m, err := NewMaintenance(s, "@hourly", logger)
	require.NoError(t, err)

	require.NoError(t, m.Start())
	m.Stop()
}
