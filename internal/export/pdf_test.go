package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LineDuel/internal/state"
)

func sampleRound() state.Snapshot {
	return state.Snapshot{
		Phase: state.PhaseActive,
		Score: state.Score{Wins: 2, Losses: 1},
		Local: []state.Segment{
			{P1: state.Point{X: 10, Y: 10}, P2: state.Point{X: 200, Y: 50}},
			{P1: state.Point{X: 200, Y: 50}, P2: state.Point{X: 400, Y: 300}},
		},
		Opponent: []state.Segment{
			{P1: state.Point{X: 1000, Y: 700}, P2: state.Point{X: 600, Y: 400}},
		},
	}
}

var when = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func TestWriteRound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRound(&buf, sampleRound(), when))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("%%EOF")))
}

func TestWriteEmptyRound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRound(&buf, state.Snapshot{}, when))
	assert.NotZero(t, buf.Len())
}

func TestSaveRound(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveRound(dir, sampleRound(), when)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lineduel-20261019-143000.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = SaveRound(filepath.Join(dir, "missing"), sampleRound(), when)
	assert.Error(t, err)
}

func TestCaption(t *testing.T) {
	got := caption(sampleRound(), when)
	assert.Contains(t, got, "phase: active")
	assert.Contains(t, got, "wins: 2")
	assert.Contains(t, got, "2 red / 1 blue")
}
