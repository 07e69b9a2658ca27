package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"DUEL_ADDR", "DUEL_ARENA", "DUEL_CODEC", "DUEL_MIN_SEGMENT", "DUEL_GRID_CELL",
	"DUEL_SEND_QUEUE", "DUEL_RECONNECT", "DUEL_MDNS", "DUEL_EXPORT_DIR", "LOG_LEVEL", "LOG_PRETTY",
}

// clearEnv blanks every key for the test; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8888", c.Addr)
	assert.Equal(t, "MAIN", c.Arena)
	assert.Equal(t, "json", c.Codec)
	assert.Equal(t, 6.0, c.MinSegmentLength)
	assert.Zero(t, c.GridCellSize)
	assert.Equal(t, 256, c.SendQueue)
	assert.Equal(t, time.Second, c.ReconnectDelay)
	assert.True(t, c.MDNS)
	assert.Equal(t, zerolog.InfoLevel, c.LogLevel)

	port, err := c.Port()
	require.NoError(t, err)
	assert.Equal(t, 8888, port)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DUEL_ARENA", "duel1")
	t.Setenv("DUEL_CODEC", "MSGPACK")
	t.Setenv("DUEL_GRID_CELL", "48")
	t.Setenv("DUEL_RECONNECT", "250ms")
	t.Setenv("DUEL_MDNS", "false")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "DUEL1", c.Arena)
	assert.Equal(t, "msgpack", c.Codec)
	assert.Equal(t, 48.0, c.GridCellSize)
	assert.Equal(t, 250*time.Millisecond, c.ReconnectDelay)
	assert.False(t, c.MDNS)
	assert.Equal(t, zerolog.DebugLevel, c.LogLevel)
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DUEL_MIN_SEGMENT": "abc",
		"DUEL_SEND_QUEUE":  "1.5",
		"DUEL_RECONNECT":   "soon",
		"DUEL_MDNS":        "maybe",
		"DUEL_CODEC":       "xml",
		"DUEL_GRID_CELL":   "-1",
		"LOG_LEVEL":        "loud",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestGridCellBounds(t *testing.T) {
	for _, v := range []string{"0.5", "1", "3.9"} {
		clearEnv(t)
		t.Setenv("DUEL_GRID_CELL", v)
		_, err := FromEnv()
		assert.Error(t, err, "cell %s", v)
	}
	for _, v := range []string{"0", "4", "32"} {
		clearEnv(t)
		t.Setenv("DUEL_GRID_CELL", v)
		_, err := FromEnv()
		assert.NoError(t, err, "cell %s", v)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	for _, k := range keys {
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DUEL_ARENA=FILE\nDUEL_ADDR=:9999\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FILE", c.Arena)
	assert.Equal(t, ":9999", c.Addr)
	for _, k := range []string{"DUEL_ARENA", "DUEL_ADDR"} {
		require.NoError(t, os.Unsetenv(k))
	}

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}
