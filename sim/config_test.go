package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 14, cfg.MaxAge())
	assert.Equal(t, DefaultAgingTable, cfg.AgingTable)

	// the table is copied, not shared
	cfg.AgingTable[0] = 99
	assert.Equal(t, 0.1, DefaultAgingTable[0])
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	// GIVEN a file that sets a few fields
	path := writeConfig(t, `
quantum: 25
processing_delay: 5ms
ready_capacity: 3
defaults:
  required_memory: 32
`)

	// WHEN it is loaded
	cfg, err := LoadConfig(path)

	// THEN set fields change and the rest keep their defaults
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Quantum)
	assert.Equal(t, 5*time.Millisecond, cfg.ProcessingDelay)
	assert.Equal(t, 3, cfg.ReadyCapacity)
	assert.Equal(t, 32, cfg.Defaults.RequiredMemory)
	assert.Equal(t, 200, cfg.Defaults.RequiredTime)
	assert.Equal(t, 1024, cfg.TotalMemory)
	assert.Equal(t, 10*time.Millisecond, cfg.ShortTermInterval)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "quantom: 25\n"},
		{"zero quantum", "quantum: 0\n"},
		{"decreasing aging table", "aging_table: [0.5, 0.2]\n"},
		{"empty aging table", "aging_table: []\n"},
		{"unknown scheduling mode", "scheduling_mode: fifo\n"},
		{"unknown pid mode", "pid_mode: shuffled\n"},
		{"negative capacity", "ready_capacity: -1\n"},
		{"default priority above max", "priority_max: 3\ndefaults:\n  priority: 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
